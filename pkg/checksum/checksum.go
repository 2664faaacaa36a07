// Package checksum computes the uppercase hex SHA-256 digests the storage
// API verifies uploads against.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

const bufferSize = 64 * 1024 // 64KB buffer

// File computes the digest of the file at path.
func File(fsys afero.Fs, path string) (string, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return Sum(file)
}

// Sum computes the digest of everything readable from r.
func Sum(r io.Reader) (string, error) {
	hash := sha256.New()
	buffer := make([]byte, bufferSize)

	for {
		n, err := r.Read(buffer)
		if n > 0 {
			if _, err := hash.Write(buffer[:n]); err != nil {
				return "", fmt.Errorf("write to hash: %w", err)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read: %w", err)
		}
	}

	return strings.ToUpper(hex.EncodeToString(hash.Sum(nil))), nil
}

// Equal compares two hex digests, ignoring case. Either side may come from
// a backend that reports lowercase hex.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}
