// Package ingestion provides pipeline orchestration for loading documents
// into the chunk index.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Validating uploaded files
//   - Splitting text into overlapping chunks
//   - Computing feature vectors concurrently
//   - Storing chunk batches atomically and recording document metadata
//
// Vectorization is performed concurrently using a worker pool, but a
// document's chunks always become visible to queries as a single batch.
package ingestion
