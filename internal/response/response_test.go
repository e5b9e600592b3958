package response

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/staticd/http/mime"
	"github.com/indigo-web/staticd/http/status"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func readResponse(t *testing.T, data []byte, method string) *stdhttp.Response {
	request, err := stdhttp.NewRequest(method, "/", nil)
	require.NoError(t, err)
	resp, err := stdhttp.ReadResponse(bufio.NewReader(bytes.NewReader(data)), request)
	require.NoError(t, err)

	return resp
}

func readBody(t *testing.T, resp *stdhttp.Response) []byte {
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return body
}

func gunzip(t *testing.T, data []byte) []byte {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	out, err := io.ReadAll(reader)
	require.NoError(t, err)

	return out
}

var fixedTime = time.Date(2024, time.March, 5, 7, 8, 9, 0, time.FixedZone("CET", 3600))

func TestResponse_Headers(t *testing.T) {
	t.Run("default headers", func(t *testing.T) {
		r := New(status.OK, []byte("hello")).SetDefaultHeaders(fixedTime)
		require.Equal(t, map[string]string{
			"Connection":         "close",
			"Content-Length":     "5",
			"Date":               "Tue, 05 Mar 2024 06:08:09 GMT",
			"Permissions-Policy": "interest-cohort=()",
		}, r.Headers)
		require.Equal(t, "HTTP/1.1", r.Protocol)
	})

	t.Run("content headers", func(t *testing.T) {
		r := New(status.OK, nil).SetContentHeaders(mime.Lookup("css"))
		contentType, _ := r.Header("Content-Type")
		cacheControl, _ := r.Header("Cache-Control")
		require.Equal(t, "text/css; charset=UTF-8", contentType)
		require.Equal(t, "max-age=259200", cacheControl)
	})

	t.Run("server error policy", func(t *testing.T) {
		r := New(status.InternalServerError, nil).SetContentHeaders(mime.ServerError)
		require.Equal(t, "max-age=0", r.Headers["Cache-Control"])
		require.Equal(t, "text/plain", r.Headers["Content-Type"])
	})
}

func TestResponse_CompressGzip(t *testing.T) {
	payload := []byte(strings.Repeat("<h1>compress me</h1>", 50))
	r := New(status.OK, payload).SetDefaultHeaders(time.Now())
	require.NoError(t, r.CompressGzip())

	require.Equal(t, "gzip", r.Headers["Content-Encoding"])
	require.Equal(t, "Accept-Encoding", r.Headers["Vary"])
	require.NotEqual(t, "1000", r.Headers["Content-Length"])
	require.Equal(t, payload, gunzip(t, r.Payload))
}

type failingCodec struct{}

func (failingCodec) Token() string { return "broken" }

func (failingCodec) Encode([]byte) ([]byte, error) {
	return nil, errors.New("cannot finalize stream")
}

func TestResponse_CompressFailure(t *testing.T) {
	r := New(status.OK, []byte("payload")).SetDefaultHeaders(time.Now())
	err := r.Compress(failingCodec{})
	require.ErrorContains(t, err, "cannot finalize stream")
	require.Equal(t, "payload", string(r.Payload))
	require.Equal(t, "7", r.Headers["Content-Length"])
	require.NotContains(t, r.Headers, "Content-Encoding")
	require.NotContains(t, r.Headers, "Vary")
}

func TestResponse_Send(t *testing.T) {
	t.Run("with body", func(t *testing.T) {
		r := New(status.OK, []byte("Hello, world!")).
			SetDefaultHeaders(time.Now()).
			SetContentHeaders(mime.Lookup("txt"))
		var buff bytes.Buffer
		require.NoError(t, r.Send(&buff, true))

		require.True(t, strings.HasPrefix(buff.String(), "HTTP/1.1 200 OK\r\n"))
		resp := readResponse(t, buff.Bytes(), stdhttp.MethodGet)
		require.Equal(t, 200, resp.StatusCode)
		require.Equal(t, "text/plain; charset=UTF-8", resp.Header.Get("Content-Type"))
		require.Equal(t, "max-age=60", resp.Header.Get("Cache-Control"))
		require.Equal(t, "interest-cohort=()", resp.Header.Get("Permissions-Policy"))
		require.True(t, resp.Close)
		require.Equal(t, int64(13), resp.ContentLength)
		require.Equal(t, "Hello, world!", string(readBody(t, resp)))
	})

	t.Run("without body", func(t *testing.T) {
		r := New(status.OK, []byte("Hello, world!")).SetDefaultHeaders(time.Now())
		var buff bytes.Buffer
		require.NoError(t, r.Send(&buff, false))

		require.True(t, strings.HasSuffix(buff.String(), "\r\n\r\n"))
		resp := readResponse(t, buff.Bytes(), stdhttp.MethodHead)
		require.Equal(t, int64(13), resp.ContentLength)
		require.Empty(t, readBody(t, resp))
	})

	t.Run("empty response", func(t *testing.T) {
		r := New(status.MethodNotAllowed, nil).SetDefaultHeaders(time.Now())
		var buff bytes.Buffer
		require.NoError(t, r.Send(&buff, true))

		resp := readResponse(t, buff.Bytes(), stdhttp.MethodGet)
		require.Equal(t, 405, resp.StatusCode)
		require.Equal(t, int64(0), resp.ContentLength)
		require.Empty(t, resp.Header.Get("Content-Type"))
	})

	t.Run("every status", func(t *testing.T) {
		for _, code := range status.KnownCodes {
			var buff bytes.Buffer
			require.NoError(t, New(code, nil).SetDefaultHeaders(time.Now()).Send(&buff, true))
			resp := readResponse(t, buff.Bytes(), stdhttp.MethodGet)
			require.Equal(t, int(code), resp.StatusCode)
		}
	})
}

type chunkRecorder struct {
	chunks [][]byte
}

func (c *chunkRecorder) Write(b []byte) (int, error) {
	c.chunks = append(c.chunks, append([]byte(nil), b...))
	return len(b), nil
}

func TestSerializer_BoundedBuffer(t *testing.T) {
	const bufferSize = 64
	payload := bytes.Repeat([]byte("0123456789"), 100)
	r := New(status.OK, payload).SetDefaultHeaders(time.Now())
	recorder := new(chunkRecorder)
	require.NoError(t, NewSerializer(recorder, bufferSize).Write(r, true))

	require.Greater(t, len(recorder.chunks), len(payload)/bufferSize)
	var joined []byte
	for _, chunk := range recorder.chunks {
		require.LessOrEqual(t, len(chunk), bufferSize)
		joined = append(joined, chunk...)
	}

	resp := readResponse(t, joined, stdhttp.MethodGet)
	require.Equal(t, payload, readBody(t, resp))
}

type brokenWriter struct {
	writes int
	failAt int
}

func (b *brokenWriter) Write(p []byte) (int, error) {
	b.writes++
	if b.writes >= b.failAt {
		return 0, io.ErrClosedPipe
	}

	return len(p), nil
}

func TestSerializer_WriteError(t *testing.T) {
	r := New(status.OK, bytes.Repeat([]byte("x"), 1000)).SetDefaultHeaders(time.Now())

	t.Run("on flush", func(t *testing.T) {
		w := &brokenWriter{failAt: 1}
		require.ErrorIs(t, r.Send(w, true), io.ErrClosedPipe)
		require.Equal(t, 1, w.writes)
	})

	t.Run("mid-payload", func(t *testing.T) {
		w := &brokenWriter{failAt: 3}
		require.ErrorIs(t, NewSerializer(w, 128).Write(r, true), io.ErrClosedPipe)
		require.Equal(t, 3, w.writes, "must not retry")
	})
}

func BenchmarkSerializer(b *testing.B) {
	r := New(status.OK, bytes.Repeat([]byte("a"), 4096)).
		SetDefaultHeaders(time.Now()).
		SetContentHeaders(mime.Lookup("html"))
	s := NewSerializer(io.Discard, 4096)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = s.Write(r, true)
	}
}
