package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a/b/c.txt", "a/b/c.txt"},
		{"/a/b/c.txt", "a/b/c.txt"},
		{"a//b///c.txt", "a/b/c.txt"},
		{`a\b\c.txt`, "a/b/c.txt"},
		{"", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKey(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeDir(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"docs", "docs/"},
		{"docs/", "docs/"},
		{"/docs/sub//", "docs/sub/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDir(tt.in), "input %q", tt.in)
	}
}
