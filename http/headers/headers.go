package headers

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
)

// Headers maps request header names to their values. Names are stored exactly as
// received. A repeated name overrides the previous value.
//
// Lookups are exact-match by default, so "accept-encoding" won't find a header sent
// as "Accept-Encoding". Folded lookups must be enabled explicitly.
type Headers struct {
	m    map[string]string
	fold bool
}

func New(prealloc int, caseInsensitive bool) *Headers {
	return &Headers{
		m:    make(map[string]string, prealloc),
		fold: caseInsensitive,
	}
}

// Add stores the pair, replacing any value stored under exactly the same name.
func (h *Headers) Add(key, value string) *Headers {
	h.m[key] = value
	return h
}

// Value returns the value of the header, if presented.
func (h *Headers) Value(key string) (string, bool) {
	if value, found := h.m[key]; found || !h.fold {
		return value, found
	}

	for k, v := range h.m {
		if strcomp.EqualFold(k, key) {
			return v, true
		}
	}

	return "", false
}

// ValueOr returns the header value or the fallback if the header isn't presented.
func (h *Headers) ValueOr(key, or string) string {
	if value, found := h.Value(key); found {
		return value
	}

	return or
}

func (h *Headers) Has(key string) bool {
	_, found := h.Value(key)
	return found
}

func (h *Headers) Len() int {
	return len(h.m)
}

// CaseInsensitive reports whether lookups fold the case.
func (h *Headers) CaseInsensitive() bool {
	return h.fold
}

// Pairs iterates over all the stored headers in no particular order.
func (h *Headers) Pairs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for k, v := range h.m {
			if !yield(k, v) {
				return
			}
		}
	}
}
