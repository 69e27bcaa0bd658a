// Package storage defines the persistence contracts for the retrieval
// engine: the chunk repository (the similarity index and document registry)
// and the chat-history repository, plus the binary serialization used by
// implementations. Concrete backends live in sub-packages; storage/badger is
// the default, supporting both on-disk and in-memory operation behind the
// same contract.
package storage
