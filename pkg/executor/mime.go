package executor

import (
	"mime"
	"path/filepath"
)

// guessContentType maps the file extension to a MIME type. Files without
// an extension, and extensions the platform tables do not know, yield ""
// and the storage client then omits the Content-Type header.
func guessContentType(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}

	return mime.TypeByExtension(ext)
}
