package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaders(t *testing.T) {
	t.Run("exact lookup", func(t *testing.T) {
		h := New(4, false).
			Add("Accept-Encoding", "gzip").
			Add("Host", "localhost")

		value, found := h.Value("Accept-Encoding")
		require.True(t, found)
		require.Equal(t, "gzip", value)

		_, found = h.Value("accept-encoding")
		require.False(t, found)
		require.Equal(t, "Unknown", h.ValueOr("user-agent", "Unknown"))
		require.Equal(t, 2, h.Len())
	})

	t.Run("folded lookup", func(t *testing.T) {
		h := New(4, true).Add("accept-encoding", "br, gzip")

		value, found := h.Value("Accept-Encoding")
		require.True(t, found)
		require.Equal(t, "br, gzip", value)
		require.True(t, h.Has("ACCEPT-ENCODING"))
		require.False(t, h.Has("Accept"))
	})

	t.Run("repeated key overrides", func(t *testing.T) {
		h := New(0, false).Add("Host", "a").Add("Host", "b")
		require.Equal(t, "b", h.ValueOr("Host", ""))
		require.Equal(t, 1, h.Len())
	})

	t.Run("pairs", func(t *testing.T) {
		h := New(0, false).Add("A", "1").Add("B", "2")
		collected := make(map[string]string)
		for k, v := range h.Pairs() {
			collected[k] = v
		}

		require.Equal(t, map[string]string{"A": "1", "B": "2"}, collected)
	})
}
