package parser

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \t\n\n  \n", ""},
		{"nul bytes", "ab\x00c\x00", "abc"},
		{"collapse runs", "one   two\tthree", "one two three"},
		{"drop blank lines", "first\n\n\n  second  \n", "first\nsecond"},
		{"carriage returns", "line one\r\nline two\r\n", "line one\nline two"},
		{"nul between spaces", "a \x00 b", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	alphabet := []rune{'a', 'b', 'é', ' ', ' ', '\t', '\n', '\n', '\r', '\x00', '.', ' '}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		var b strings.Builder
		for j := 0; j < rng.Intn(80); j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		once := Normalize(b.String())
		assert.Equal(t, once, Normalize(once), "input %q", b.String())
		assert.NotContains(t, once, "\x00")
		assert.NotContains(t, once, "  ")
		assert.NotContains(t, once, "\n\n")
	}
}
