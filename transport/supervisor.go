package transport

import (
	"context"
	"errors"
	"net"
	"strconv"

	"github.com/indigo-web/staticd/config"
	"github.com/indigo-web/staticd/internal/pool"
	"github.com/indigo-web/staticd/metrics"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrNotBound is returned by Run if Bind wasn't called or failed.
var ErrNotBound = errors.New("transport: run before bind")

// Supervisor ties a transport to the worker pool: every accepted connection becomes
// a job, handled by the callback.
type Supervisor struct {
	cfg       *config.Config
	transport Transport
	cb        func(conn net.Conn)
	logger    *zap.Logger
	metrics   *metrics.Metrics
	bound     bool
}

func NewSupervisor(
	cfg *config.Config, transport Transport, cb func(net.Conn), logger *zap.Logger, m *metrics.Metrics,
) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Supervisor{
		cfg:       cfg,
		transport: transport,
		cb:        cb,
		logger:    logger,
		metrics:   m,
	}
}

// Address is the configured listen address, e.g. ":80".
func Address(cfg config.NET) string {
	return net.JoinHostPort(cfg.Address, strconv.FormatUint(uint64(cfg.Port), 10))
}

func (s *Supervisor) Bind() error {
	if err := s.transport.Bind(Address(s.cfg.NET)); err != nil {
		return err
	}

	s.bound = true
	return nil
}

// Addr returns the bound address, which differs from the configured one if the port
// was 0.
func (s *Supervisor) Addr() net.Addr {
	return s.transport.Addr()
}

// Run serves connections until the context is done or the transport fails. Before
// returning, the listener is closed and every worker finishes its current job.
func (s *Supervisor) Run(ctx context.Context) (err error) {
	if !s.bound {
		return ErrNotBound
	}

	workers := pool.New(
		s.cfg.Threads,
		pool.WithLogger(s.logger),
		pool.WithPanicHandler(s.metrics.JobPanicked),
	)

	s.logger.Info("listening",
		zap.Stringer("address", s.transport.Addr()),
		zap.Int("threads", workers.Size()),
		zap.String("root", s.cfg.Root),
	)

	errch := make(chan error, 1)
	go func() {
		errch <- s.transport.Listen(s.cfg.NET, func(conn net.Conn) {
			workers.Execute(func() {
				s.cb(conn)
			})
		})
	}()

	select {
	case err = <-errch:
		s.logger.Error("accept loop failed", zap.Error(err))
		err = multierr.Append(err, s.transport.Close())
	case <-ctx.Done():
		s.logger.Info("shutting down")
		s.transport.Stop()
		// closing the listener interrupts the pending Accept
		closeErr := s.transport.Close()
		err = multierr.Append(<-errch, closeErr)
	}

	workers.Close()

	return err
}
