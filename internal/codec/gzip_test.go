package codec

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func gunzip(t *testing.T, data []byte) []byte {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	out, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())

	return out
}

func TestGZIP(t *testing.T) {
	g := NewGZIP()
	require.Equal(t, "gzip", g.Token())

	t.Run("round trip", func(t *testing.T) {
		input := []byte(strings.Repeat("<p>Hello, world!</p>\n", 100))
		encoded, err := g.Encode(input)
		require.NoError(t, err)
		require.Less(t, len(encoded), len(input))
		require.Equal(t, input, gunzip(t, encoded))
	})

	t.Run("empty", func(t *testing.T) {
		encoded, err := g.Encode(nil)
		require.NoError(t, err)
		require.NotEmpty(t, encoded)
		require.Empty(t, gunzip(t, encoded))
	})

	t.Run("writer reuse", func(t *testing.T) {
		first, err := g.Encode([]byte("first"))
		require.NoError(t, err)
		second, err := g.Encode([]byte("second"))
		require.NoError(t, err)
		require.Equal(t, "first", string(gunzip(t, first)))
		require.Equal(t, "second", string(gunzip(t, second)))
	})

	t.Run("concurrent", func(t *testing.T) {
		const workers = 16
		inputs, outputs, errs := make([][]byte, workers), make([][]byte, workers), make([]error, workers)
		var wg sync.WaitGroup

		for i := range workers {
			inputs[i] = []byte(uniuri.NewLen(4096))
			wg.Add(1)
			go func() {
				defer wg.Done()
				outputs[i], errs[i] = g.Encode(inputs[i])
			}()
		}

		wg.Wait()

		for i := range workers {
			require.NoError(t, errs[i])
			require.Equal(t, inputs[i], gunzip(t, outputs[i]))
		}
	})
}

func BenchmarkGZIP(b *testing.B) {
	g := NewGZIP()
	input := []byte(strings.Repeat("<div class=\"row\">lorem ipsum</div>\n", 1000))
	b.SetBytes(int64(len(input)))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = g.Encode(input)
	}
}
