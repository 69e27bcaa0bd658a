package core

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DocumentIDFromContent generates a deterministic document ID from the
// filename and raw content using BLAKE2b hashing. Re-ingesting the same file
// produces the same ID.
func DocumentIDFromContent(filename string, content []byte) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(filename))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// ChunkID builds the chunk identifier for the i-th chunk of a document.
func ChunkID(docID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", docID, index)
}

// Well-known chunk metadata keys.
const (
	MetaSource           = "source"
	MetaDocID            = "doc_id"
	MetaChunkIndex       = "chunk_index"
	MetaTotalChunks      = "total_chunks"
	MetaHasVisualContext = "has_visual_context"
)

// Chunk is the smallest unit of retrievable document text.
// Chunks are immutable after creation; the vector is computed once at
// ingestion time and never recomputed in place.
type Chunk struct {
	ID       string
	Text     string
	Metadata map[string]string
	Vector   []float32
	Seq      uint64 // insertion sequence, assigned by storage
}

// Source returns the source filename from metadata, or "Unknown".
func (c *Chunk) Source() string {
	if s, ok := c.Metadata[MetaSource]; ok && s != "" {
		return s
	}
	return "Unknown"
}

// DocID returns the owning document ID from metadata.
func (c *Chunk) DocID() string {
	return c.Metadata[MetaDocID]
}

// RetrievalMethod identifies which strategy produced a match.
type RetrievalMethod int

const (
	// MethodVector marks a match produced by vector similarity search.
	MethodVector RetrievalMethod = iota + 1
	// MethodKeyword marks a match produced by the keyword fallback scan.
	MethodKeyword
)

func (m RetrievalMethod) String() string {
	switch m {
	case MethodVector:
		return "vector"
	case MethodKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// ScoredMatch is a per-query retrieval result. Score is in (0,1], higher
// means more relevant.
type ScoredMatch struct {
	Chunk  *Chunk
	Score  float64
	Method RetrievalMethod
}

// IntentClass is the broad response strategy a query calls for.
type IntentClass int

const (
	// IntentDefault is a focused question with no special breadth needs.
	IntentDefault IntentClass = iota + 1
	// IntentSummary asks for an overview of the corpus.
	IntentSummary
	// IntentDetail asks for comprehensive, in-depth coverage.
	IntentDetail
)

func (c IntentClass) String() string {
	switch c {
	case IntentSummary:
		return "summary"
	case IntentDetail:
		return "detail"
	default:
		return "default"
	}
}

// QueryIntent is the classification of a single query. Computed fresh per
// query and never persisted.
type QueryIntent struct {
	Class               IntentClass
	IsNameQuery         bool
	IsVisualQuery       bool
	ReferencesPriorTurn bool
}

// Role identifies the author of a chat message.
type Role int

const (
	// RoleUser represents the human asking questions.
	RoleUser Role = iota + 1
	// RoleAssistant represents generated answers.
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Title returns the capitalized role name used in conversation context lines.
func (r Role) Title() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	default:
		return "Unknown"
	}
}

// Message is a single turn in a chat session.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
	Sources   []string
}

// DocumentInfo describes an ingested document.
type DocumentInfo struct {
	ID               string
	Filename         string
	ChunkCount       int
	HasVisualContent bool
	UploadedAt       time.Time
}

// IndexStats reports the current state of the chunk index.
type IndexStats struct {
	ChunkCount    int
	DocumentCount int
	Status        string
}

// RetrievalResult is what the retrieval core hands to the generation step:
// ranked matches with their scores, the assembled grounding context, source
// attribution and an overall confidence estimate.
type RetrievalResult struct {
	Matches []*ScoredMatch
	Scores  []float64
	Intent  QueryIntent

	// Context is the assembled, budget-bounded grounding text.
	Context string
	// ConversationContext carries prior turns when the query references
	// them; empty otherwise.
	ConversationContext string

	Sources    []string
	Confidence float64
	HasContext bool
}
