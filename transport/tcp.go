package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/indigo-web/staticd/config"
	"github.com/indigo-web/staticd/internal/timer"
	"golang.org/x/time/rate"
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

type TCP struct {
	l      listener
	stop   *atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
}

func NewTCP() *TCP {
	tcp := newTCP(nil)
	return &tcp
}

func newTCP(l listener) TCP {
	ctx, cancel := context.WithCancel(context.Background())

	return TCP{
		l:      l,
		stop:   new(atomic.Bool),
		ctx:    ctx,
		cancel: cancel,
	}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) (err error) {
	t.l, err = bindTCP(addr)
	return err
}

// Listen runs the accept loop. The loop is interrupted every AcceptLoopInterruptPeriod
// in order to check whether it's time to stop. If AcceptRate is set, connections
// above the rate stay in the kernel backlog until the limiter lets them in.
func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	limiter := newLimiter(cfg)
	// admitted is set once a token is taken and reset by an accepted connection, so
	// interrupted Accept calls don't consume the rate.
	admitted := false

	for !t.stop.Load() {
		if limiter != nil && !admitted {
			if err := limiter.Wait(t.ctx); err != nil {
				if t.stop.Load() {
					return nil
				}

				return err
			}

			admitted = true
		}

		if err := t.l.SetDeadline(timer.Deadline(cfg.AcceptLoopInterruptPeriod)); err != nil {
			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			case t.stop.Load() && errors.Is(err, net.ErrClosed):
				return nil
			default:
				return err
			}
		}

		admitted = false
		cb(conn)
	}

	return nil
}

func newLimiter(cfg config.NET) *rate.Limiter {
	if cfg.AcceptRate <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Limit(cfg.AcceptRate), max(1, cfg.AcceptBurst))
}

// Stop makes Listen return. It doesn't close the listener.
func (t *TCP) Stop() {
	t.stop.Store(true)
	t.cancel()
}

func (t *TCP) Close() error {
	if t.l == nil {
		return nil
	}

	return t.l.Close()
}

func (t *TCP) Addr() net.Addr {
	if t.l == nil {
		return nil
	}

	return t.l.Addr()
}
