package http

import (
	"strings"

	"github.com/indigo-web/staticd/http/headers"
	"github.com/indigo-web/staticd/http/method"
	"github.com/indigo-web/staticd/http/proto"
)

// Request represents a parsed HTTP request. It is never modified after being parsed
// and lives as long as the connection it came from.
type Request struct {
	// Method is the method token as received.
	Method string
	// Path is the request target as received, including the leading slash. It is neither
	// decoded nor normalized.
	Path string
	// Protocol is the protocol token as received, e.g. "HTTP/1.1".
	Protocol string
	// Headers holds header pairs with their names as received.
	Headers *headers.Headers
}

func NewRequest(m, path, protocol string, hdrs *headers.Headers) *Request {
	return &Request{
		Method:   m,
		Path:     path,
		Protocol: protocol,
		Headers:  hdrs,
	}
}

// ParsedMethod returns the method enum. Unrecognized tokens are method.Unknown.
func (r *Request) ParsedMethod() method.Method {
	return method.Parse(r.Method)
}

// Proto returns the protocol enum. Anything but an exact known token is proto.Unknown.
func (r *Request) Proto() proto.Proto {
	return proto.FromString(r.Protocol)
}

// UserAgent returns the User-Agent header or "Unknown".
func (r *Request) UserAgent() string {
	return r.Headers.ValueOr("User-Agent", "Unknown")
}

// AcceptsEncoding reports whether any of the comma-separated Accept-Encoding tokens,
// with leading whitespace trimmed, starts with the coding. Quality values aren't
// interpreted, so "gzip;q=0" still counts.
func (r *Request) AcceptsEncoding(coding string) bool {
	value, found := r.Headers.Value("Accept-Encoding")
	if !found {
		return false
	}

	for token := range strings.SplitSeq(value, ",") {
		if strings.HasPrefix(strings.TrimLeft(token, " \t\r\n\v\f"), coding) {
			return true
		}
	}

	return false
}
