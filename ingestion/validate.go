package ingestion

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxDocumentSize bounds uploaded documents at 10 MiB.
const maxDocumentSize = 10 * 1024 * 1024

var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// ValidateDocument checks a document before ingestion: supported extension,
// non-empty content, and the size limit.
func ValidateDocument(filename string, content []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if len(content) == 0 {
		return ErrEmptyDocument
	}
	if len(content) > maxDocumentSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrDocumentTooLarge, len(content), maxDocumentSize)
	}
	return nil
}
