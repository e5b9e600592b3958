package codec

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/gzip"
)

type GZIP struct {
	writers sync.Pool
}

// NewGZIP returns a gzip codec with the default compression level. Writers are
// reused across calls, so a single instance is meant to be shared.
func NewGZIP() *GZIP {
	return &GZIP{
		writers: sync.Pool{
			New: func() any {
				return gzip.NewWriter(nil)
			},
		},
	}
}

func (g *GZIP) Token() string {
	return "gzip"
}

func (g *GZIP) Encode(input []byte) ([]byte, error) {
	// compressed text is usually several times smaller
	out := bytes.NewBuffer(make([]byte, 0, len(input)/2+64))
	writer := g.writers.Get().(*gzip.Writer)
	writer.Reset(out)
	defer g.writers.Put(writer)

	if _, err := writer.Write(input); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
