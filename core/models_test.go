package core

import (
	"testing"
)

func TestDocumentIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{
			name:     "same inputs produce same ID",
			filename: "notes.md",
			content:  "test content",
		},
		{
			name:     "empty content",
			filename: "empty.txt",
			content:  "",
		},
		{
			name:     "long content",
			filename: "handover.md",
			content:  "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := DocumentIDFromContent(tt.filename, []byte(tt.content))
			id2 := DocumentIDFromContent(tt.filename, []byte(tt.content))

			if id1 != id2 {
				t.Errorf("DocumentIDFromContent() produced different IDs for same input: %s vs %s", id1, id2)
			}
			if len(id1) != 16 {
				t.Errorf("DocumentIDFromContent() = %q, want 16 hex characters", id1)
			}
		})
	}
}

func TestDocumentIDFromContent_Different(t *testing.T) {
	id1 := DocumentIDFromContent("a.txt", []byte("content"))
	id2 := DocumentIDFromContent("b.txt", []byte("content"))

	if id1 == id2 {
		t.Errorf("DocumentIDFromContent() produced same ID for different filenames")
	}
}

func TestChunkID(t *testing.T) {
	got := ChunkID("abcd1234", 3)
	want := "abcd1234_chunk_3"
	if got != want {
		t.Errorf("ChunkID() = %q, want %q", got, want)
	}
}

func TestChunk_Source(t *testing.T) {
	tests := []struct {
		name  string
		chunk Chunk
		want  string
	}{
		{
			name:  "source present",
			chunk: Chunk{Metadata: map[string]string{MetaSource: "handover.md"}},
			want:  "handover.md",
		},
		{
			name:  "source missing",
			chunk: Chunk{Metadata: map[string]string{}},
			want:  "Unknown",
		},
		{
			name:  "nil metadata",
			chunk: Chunk{},
			want:  "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chunk.Source(); got != tt.want {
				t.Errorf("Source() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetrievalMethod_String(t *testing.T) {
	if MethodVector.String() != "vector" {
		t.Errorf("MethodVector.String() = %q", MethodVector.String())
	}
	if MethodKeyword.String() != "keyword" {
		t.Errorf("MethodKeyword.String() = %q", MethodKeyword.String())
	}
	if RetrievalMethod(0).String() != "unknown" {
		t.Errorf("zero method String() = %q", RetrievalMethod(0).String())
	}
}

func TestIntentClass_String(t *testing.T) {
	tests := []struct {
		class IntentClass
		want  string
	}{
		{IntentSummary, "summary"},
		{IntentDetail, "detail"},
		{IntentDefault, "default"},
		{IntentClass(0), "default"},
	}

	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("IntentClass(%d).String() = %q, want %q", tt.class, got, tt.want)
		}
	}
}

func TestRole_Title(t *testing.T) {
	if RoleUser.Title() != "User" {
		t.Errorf("RoleUser.Title() = %q", RoleUser.Title())
	}
	if RoleAssistant.Title() != "Assistant" {
		t.Errorf("RoleAssistant.Title() = %q", RoleAssistant.Title())
	}
}
