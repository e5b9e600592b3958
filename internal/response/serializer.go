package response

import (
	"io"
	"maps"
	"slices"

	"github.com/indigo-web/staticd/http/status"
)

const crlf = "\r\n"

// Serializer writes responses through a bounded buffer. A single serializer must
// not be used concurrently.
type Serializer struct {
	buff []byte
	w    io.Writer
}

// NewSerializer returns a serializer buffering at most bufferSize bytes before
// writing them into w.
func NewSerializer(w io.Writer, bufferSize int) *Serializer {
	return &Serializer{
		buff: make([]byte, 0, max(bufferSize, 1)),
		w:    w,
	}
}

// Send serializes the response. The payload is written only if withBody is set, the
// headers stay the same either way. Headers are emitted sorted by name. Any write
// error is returned as is, the serializer doesn't retry.
func (r *Response) Send(w io.Writer, withBody bool) error {
	return NewSerializer(w, defaultBufferSize).Write(r, withBody)
}

const defaultBufferSize = 4096

func (s *Serializer) Write(r *Response, withBody bool) error {
	s.buff = s.buff[:0]

	if err := s.safeAppendString(r.Protocol); err != nil {
		return err
	}

	if err := s.safeAppendString(" " + status.Line(r.Code) + crlf); err != nil {
		return err
	}

	for _, key := range slices.Sorted(maps.Keys(r.Headers)) {
		if err := s.appendHeader(key, r.Headers[key]); err != nil {
			return err
		}
	}

	if err := s.safeAppendString(crlf); err != nil {
		return err
	}

	if withBody {
		if err := s.safeAppend(r.Payload); err != nil {
			return err
		}
	}

	return s.flush()
}

func (s *Serializer) appendHeader(key, value string) error {
	if err := s.safeAppendString(key); err != nil {
		return err
	}

	if err := s.safeAppendString(": "); err != nil {
		return err
	}

	if err := s.safeAppendString(value); err != nil {
		return err
	}

	return s.safeAppendString(crlf)
}

// safeAppend appends data into the limited capacity buffer. If the data is longer
// than free space left in the buffer, the buffer is filled till full and flushed,
// leaving thereby free space for the rest of the data.
func (s *Serializer) safeAppend(data []byte) error {
	for len(data) > 0 {
		freeSpace := cap(s.buff) - len(s.buff)

		if len(data) <= freeSpace {
			s.buff = append(s.buff, data...)
			return nil
		}

		s.buff = append(s.buff, data[:freeSpace]...)
		if err := s.flush(); err != nil {
			return err
		}

		data = data[freeSpace:]
	}

	return nil
}

func (s *Serializer) safeAppendString(str string) error {
	for len(str) > 0 {
		freeSpace := cap(s.buff) - len(s.buff)

		if len(str) <= freeSpace {
			s.buff = append(s.buff, str...)
			return nil
		}

		s.buff = append(s.buff, str[:freeSpace]...)
		if err := s.flush(); err != nil {
			return err
		}

		str = str[freeSpace:]
	}

	return nil
}

func (s *Serializer) flush() (err error) {
	if len(s.buff) > 0 {
		_, err = s.w.Write(s.buff)
		s.buff = s.buff[:0]
	}

	return err
}
