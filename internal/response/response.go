// Package response builds and serializes responses.
package response

import (
	"fmt"
	"strconv"
	"time"

	"github.com/indigo-web/staticd/http/mime"
	"github.com/indigo-web/staticd/http/proto"
	"github.com/indigo-web/staticd/http/status"
	"github.com/indigo-web/staticd/internal/codec"
)

// DateLayout is the RFC 1123 layout with the zone fixed to GMT. The time must be
// converted to UTC before formatting.
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

var gzipCodec = codec.NewGZIP()

// Response is filled incrementally and isn't safe for concurrent use. It must not
// be modified after Send was called.
type Response struct {
	Code     status.Code
	Protocol string
	Headers  map[string]string
	Payload  []byte
}

func New(code status.Code, payload []byte) *Response {
	return &Response{
		Code:     code,
		Protocol: proto.HTTP11Token,
		Headers:  make(map[string]string, 10),
		Payload:  payload,
	}
}

// Header returns the header value, if set.
func (r *Response) Header(key string) (string, bool) {
	value, found := r.Headers[key]
	return value, found
}

// SetHeader overrides the header value.
func (r *Response) SetHeader(key, value string) *Response {
	r.Headers[key] = value
	return r
}

// SetDefaultHeaders sets headers presented in every response.
func (r *Response) SetDefaultHeaders(now time.Time) *Response {
	r.Headers["Connection"] = "close"
	r.Headers["Date"] = now.UTC().Format(DateLayout)
	r.Headers["Permissions-Policy"] = "interest-cohort=()"
	return r.setContentLength()
}

// SetContentHeaders sets headers describing the payload.
func (r *Response) SetContentHeaders(policy mime.Policy) *Response {
	r.Headers["Content-Type"] = policy.ContentType
	r.Headers["Cache-Control"] = "max-age=" + strconv.FormatUint(uint64(policy.CacheAge), 10)
	return r
}

// CompressGzip compresses the payload in place using gzip with the default level.
func (r *Response) CompressGzip() error {
	return r.Compress(gzipCodec)
}

// Compress replaces the payload by its encoded form and updates the headers
// accordingly. On error the response is left untouched.
func (r *Response) Compress(c codec.Codec) error {
	encoded, err := c.Encode(r.Payload)
	if err != nil {
		return fmt.Errorf("compress %s: %w", c.Token(), err)
	}

	r.Payload = encoded
	r.Headers["Content-Encoding"] = c.Token()
	r.Headers["Vary"] = "Accept-Encoding"
	return r.setContentLength()
}

func (r *Response) setContentLength() *Response {
	r.Headers["Content-Length"] = strconv.Itoa(len(r.Payload))
	return r
}
