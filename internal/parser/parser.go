// Package parser turns the raw bytes of a request into http.Request.
package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/indigo-web/staticd/config"
	"github.com/indigo-web/staticd/http"
	"github.com/indigo-web/staticd/http/headers"
	"github.com/indigo-web/staticd/http/status"
	"github.com/indigo-web/utils/uf"
	"golang.org/x/text/encoding/unicode"
)

const crlf = "\r\n"

// Parser is stateless and therefore safe for concurrent use.
type Parser struct {
	headersPrealloc int
	caseInsensitive bool
}

func New(cfg config.Headers) *Parser {
	return &Parser{
		headersPrealloc: cfg.Prealloc,
		caseInsensitive: cfg.CaseInsensitive,
	}
}

// Parse parses the request line and the headers. Everything past the protocol token
// is split into CRLF-separated lines and every line having a colon is treated as a
// header, so no explicit headers terminator is required. However, at least a single
// CRLF after the protocol must be presented, otherwise the request is considered
// incomplete.
//
// Valid UTF-8 input is referenced by the returned request without copying, so the
// data must not be modified as long as the request is in use. Invalid byte sequences
// are replaced by U+FFFD.
func (p *Parser) Parse(data []byte) (*http.Request, error) {
	text := decode(data)

	requestLine := strings.SplitN(text, " ", 3)
	if len(requestLine) < 3 {
		return nil, status.ErrBadRequest
	}

	lines := strings.Split(requestLine[2], crlf)
	if len(lines) < 2 {
		return nil, status.ErrBadRequest
	}

	hdrs := headers.New(p.headersPrealloc, p.caseInsensitive)

	for _, line := range lines[1:] {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		hdrs.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	return http.NewRequest(requestLine[0], requestLine[1], lines[0], hdrs), nil
}

var defaultParser = New(config.Default().Headers)

// Parse parses the data using the default headers settings.
func Parse(data []byte) (*http.Request, error) {
	return defaultParser.Parse(data)
}

func decode(data []byte) string {
	if utf8.Valid(data) {
		return uf.B2S(data)
	}

	decoded, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}

	return uf.B2S(decoded)
}
