package ingestion

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrVectorizerRequired is returned when a vectorizer is not provided.
	ErrVectorizerRequired = errors.New("vectorizer required")

	// ErrConfigRequired is returned when a configuration is not provided.
	ErrConfigRequired = errors.New("config required")

	// ErrUnsupportedFileType is returned for file extensions the pipeline
	// cannot parse.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrEmptyDocument is returned when a document has no content.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrDocumentTooLarge is returned when a document exceeds the size limit.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size")

	// ErrNoChunks is returned when splitting produced no chunks.
	ErrNoChunks = errors.New("no chunks produced from document")
)
