package chat

import "strings"

// Filter masks disallowed words in outgoing messages.
type Filter struct {
	words []string
}

// NewFilter builds a filter over a lowercase word list.
func NewFilter(words []string) *Filter {
	return &Filter{words: words}
}

// Apply masks every occurrence of a filtered word, preserving length.
func (f *Filter) Apply(text string) string {
	if len(f.words) == 0 {
		return text
	}
	lower := strings.ToLower(text)
	out := []byte(text)
	for _, w := range f.words {
		for start := 0; ; {
			i := strings.Index(lower[start:], w)
			if i < 0 {
				break
			}
			i += start
			for j := i; j < i+len(w); j++ {
				out[j] = '*'
			}
			start = i + len(w)
		}
	}
	return string(out)
}
