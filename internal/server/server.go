// Package server handles a single accepted connection: reads the request, serves
// the file and closes the connection.
package server

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/indigo-web/staticd/config"
	"github.com/indigo-web/staticd/http"
	"github.com/indigo-web/staticd/http/mime"
	"github.com/indigo-web/staticd/http/proto"
	"github.com/indigo-web/staticd/http/status"
	"github.com/indigo-web/staticd/internal/parser"
	"github.com/indigo-web/staticd/internal/resolve"
	"github.com/indigo-web/staticd/internal/response"
	"github.com/indigo-web/staticd/metrics"
	"go.uber.org/zap"
)

// NotFoundPage is looked up in the served root if the requested file is missing.
const NotFoundPage = "404.html"

var serverErrorBody = []byte("500 Internal Server Error")

// Handler holds no per-connection state, therefore a single instance serves all the
// connections concurrently. The config must not be modified afterward.
type Handler struct {
	cfg      *config.Config
	parser   *parser.Parser
	resolver *resolve.Resolver
	policy   mime.Table
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New returns a handler. Both logger and metrics may be nil.
func New(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		cfg:      cfg,
		parser:   parser.New(cfg.Headers),
		resolver: resolve.New(cfg.Root),
		policy:   cfg.MimeTable(),
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// exchange carries everything known about the connection being served.
type exchange struct {
	conn     net.Conn
	logger   *zap.Logger
	start    time.Time
	withBody bool
	gzip     bool
}

// Serve handles the connection till the end and closes it. Every failure is handled
// here, one way or another resulting in a response.
func (h *Handler) Serve(conn net.Conn) {
	h.metrics.ConnectionStarted()
	defer h.metrics.ConnectionFinished()
	defer func() {
		_ = conn.Close()
	}()

	ex := &exchange{
		conn:     conn,
		logger:   h.logger.With(zap.String("conn", uuid.NewString())),
		start:    h.now(),
		withBody: true,
	}

	request, err := h.readRequest(conn)
	if err != nil {
		ex.logger.Warn("client sent malformed request",
			zap.String("address", remoteAddr(conn)), zap.Error(err),
		)
		h.respond(ex, status.CodeOf(err), nil, nil)
		return
	}

	ex.logger.Info("request received",
		zap.String("address", remoteAddr(conn)),
		zap.String("user-agent", request.UserAgent()),
		zap.String("method", request.Method),
		zap.String("path", request.Path),
		zap.String("protocol", request.Protocol),
	)

	if err = validate(request); err != nil {
		ex.logger.Warn("request rejected", zap.Error(err))
		h.respond(ex, status.CodeOf(err), nil, nil)
		return
	}

	ex.withBody = request.ParsedMethod().WithBody()
	ex.gzip = request.AcceptsEncoding("gzip")
	h.serveContent(ex, request.Path)
}

// readRequest reads the request with a single call, so anything beyond the buffer
// size is never seen.
func (h *Handler) readRequest(conn net.Conn) (*http.Request, error) {
	if timeout := h.cfg.NET.ReadTimeout; timeout > 0 {
		if err := conn.SetReadDeadline(h.now().Add(timeout)); err != nil {
			return nil, errors.Join(status.ErrBadRequest, err)
		}
	}

	buff := make([]byte, h.cfg.NET.ReadBufferSize)
	n, err := conn.Read(buff)
	if err != nil && (n == 0 || !errors.Is(err, io.EOF)) {
		return nil, errors.Join(status.ErrBadRequest, err)
	}

	return h.parser.Parse(buff[:n])
}

// validate checks the protocol first and the method afterward.
func validate(request *http.Request) error {
	if request.Proto() != proto.HTTP11 {
		return status.ErrHTTPVersionNotSupported
	}

	if !request.ParsedMethod().Allowed() {
		return status.ErrMethodNotAllowed
	}

	return nil
}

// serveContent responds with the requested file. If it can't be found, the 404 page
// is served instead. If the 404 page is missing as well, or any of the files can't
// be read, a plain-text 500 is sent.
func (h *Handler) serveContent(ex *exchange, path string) {
	code := status.OK
	content, found := h.resolver.Resolve(path)
	if !found {
		code = status.NotFound
		content, found = h.resolver.Resolve(NotFoundPage)
	}

	if !found {
		ex.logger.Error("requested file and the not found page are both missing",
			zap.String("path", path),
		)
		h.serverError(ex)
		return
	}

	payload, err := h.resolver.Read(content)
	if err != nil {
		ex.logger.Error("could not read file", zap.String("file", content.Path), zap.Error(err))
		h.serverError(ex)
		return
	}

	policy := h.policy.ForPath(content.Path)
	h.respond(ex, code, payload, &policy)
}

func (h *Handler) serverError(ex *exchange) {
	ex.gzip = false
	h.respond(ex, status.InternalServerError, serverErrorBody, &mime.ServerError)
}

// respond builds the response and writes it. Content headers are set only if the
// policy is passed, which happens whenever there is some content to deliver.
func (h *Handler) respond(ex *exchange, code status.Code, payload []byte, policy *mime.Policy) {
	resp := response.New(code, payload).SetDefaultHeaders(h.now())
	gzipped := false

	if policy != nil {
		resp.SetContentHeaders(*policy)

		if ex.gzip && policy.Compressible {
			if err := resp.CompressGzip(); err != nil {
				ex.logger.Error("could not compress file", zap.Error(err))
				h.metrics.CompressionFailed()
			} else {
				gzipped = true
			}
		}
	}

	serializer := response.NewSerializer(ex.conn, h.cfg.NET.WriteBufferSize)
	if err := serializer.Write(resp, ex.withBody); err != nil {
		ex.logger.Error("could not send a response", zap.Error(err))
	}

	took := h.now().Sub(ex.start)
	sent := 0
	if ex.withBody {
		sent = len(resp.Payload)
	}

	h.metrics.ObserveResponse(code, took, sent, gzipped)
	ex.logger.Debug("response sent",
		zap.Stringer("status", code),
		zap.Int("payload", len(resp.Payload)),
		zap.Bool("gzip", gzipped),
		zap.Duration("took", took),
	)
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}

	return "Unknown"
}
