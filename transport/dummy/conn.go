// Package dummy provides an in-memory net.Conn for tests.
package dummy

import (
	"io"
	"net"
	"sync"
	"time"
)

var _ net.Conn = new(Conn)

// Conn returns its whole input on the first read and records everything written.
type Conn struct {
	mu       sync.Mutex
	input    []byte
	readErr  error
	written  []byte
	writeErr error
	closed   bool
	deadline time.Time
	remote   net.Addr
}

func NewConn(input []byte) *Conn {
	return &Conn{
		input:  input,
		remote: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321},
	}
}

// ReadError makes every read fail with err.
func (c *Conn) ReadError(err error) *Conn {
	c.readErr = err
	return c
}

// WriteError makes every write fail with err.
func (c *Conn) WriteError(err error) *Conn {
	c.writeErr = err
	return c
}

// NoRemote makes RemoteAddr return nil.
func (c *Conn) NoRemote() *Conn {
	c.remote = nil
	return c
}

func (c *Conn) Read(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.readErr != nil {
		return 0, c.readErr
	}

	if len(c.input) == 0 {
		return 0, io.EOF
	}

	n = copy(b, c.input)
	c.input = c.input[n:]

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.written = append(c.written, b...)

	return len(b), nil
}

// Written returns everything written so far.
func (c *Conn) Written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.written
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return nil
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// ReadDeadline returns the last deadline set by SetDeadline or SetReadDeadline.
func (c *Conn) ReadDeadline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.deadline
}

func (c *Conn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 80}
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.remote
}

func (c *Conn) SetDeadline(t time.Time) error {
	return c.SetReadDeadline(t)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deadline = t
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}
