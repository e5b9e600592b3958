// Package transport accepts connections and feeds them into the worker pool.
package transport

import (
	"net"

	"github.com/indigo-web/staticd/config"
)

type Transport interface {
	Bind(addr string) error
	// Listen accepts connections and passes them to cb until Stop is called or an
	// unrecoverable error occurs. The callback owns the connection.
	Listen(cfg config.NET, cb func(conn net.Conn)) error
	Stop()
	Close() error
	Addr() net.Addr
}
