package checksum

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855",
		},
		{
			name:  "known vector",
			input: "Hello, World!",
			want:  "DFFD6021BB2BD5B0AF676290809EC3A53191DD81C7F70A4B28688A362182986F",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sum(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSumLargerThanBuffer(t *testing.T) {
	// Input spanning multiple read buffers.
	input := strings.Repeat("a", bufferSize*2+17)

	got, err := Sum(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "C5E33FAEDB41ECC23507197AF1D853212FF36641279638EBC1288C90F417404F", got)
}

func TestFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/data.txt", []byte("Hello, World!"), 0o644))

	got, err := File(fsys, "/data.txt")
	require.NoError(t, err)
	assert.Equal(t, "DFFD6021BB2BD5B0AF676290809EC3A53191DD81C7F70A4B28688A362182986F", got)
}

func TestFileMissing(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := File(fsys, "/nope.txt")
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("ABCD", "abcd"))
	assert.True(t, Equal("abcd", "abcd"))
	assert.False(t, Equal("ABCD", "ABCE"))
	assert.True(t, Equal("", ""))
}
