package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		lastPattern []string
		want        Tier
	}{
		{
			name: "plain file",
			key:  "assets/a.txt",
			want: TierDefault,
		},
		{
			name: "html file",
			key:  "index.html",
			want: TierHTML,
		},
		{
			name: "htm file uppercase",
			key:  "docs/INDEX.HTM",
			want: TierHTML,
		},
		{
			name: "xml file",
			key:  "feed.xml",
			want: TierHTML,
		},
		{
			name: "html-ish extension is not markup",
			key:  "notes.html.bak",
			want: TierDefault,
		},
		{
			name:        "filename pattern",
			key:         "manifest.json",
			lastPattern: []string{"manifest.json"},
			want:        TierLast,
		},
		{
			name:        "filename pattern case-insensitive",
			key:         "MANIFEST.JSON",
			lastPattern: []string{"manifest.json"},
			want:        TierLast,
		},
		{
			name:        "nested filename pattern",
			key:         "build/sub/manifest.json",
			lastPattern: []string{"manifest.json"},
			want:        TierLast,
		},
		{
			name:        "path suffix pattern",
			key:         "release/latest/hashes.txt",
			lastPattern: []string{"latest/hashes.txt"},
			want:        TierLast,
		},
		{
			name:        "pattern must match a whole segment",
			key:         "manifest.json.gz",
			lastPattern: []string{"manifest.json"},
			want:        TierDefault,
		},
		{
			name:        "last pattern wins over markup rule",
			key:         "index.html",
			lastPattern: []string{"index.html"},
			want:        TierLast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.key, TierRules(tt.lastPattern))
			assert.Equal(t, tt.want, got)
		})
	}
}
