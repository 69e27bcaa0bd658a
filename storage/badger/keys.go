package badger

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Key prefixes for different data types. Prefixes always end with ':' so a
// prefix scan over one record type never picks up another.
const (
	chunkPrefix    = "chunk"
	chunkSeqPrefix = "chunkseq"
	chunkDocPrefix = "chunkdoc"
	docInfoPrefix  = "docinfo"
	historyPrefix  = "hist"

	chunkSeqName   = "chunkseqctr"
	historySeqName = "histseqctr"
)

// makeChunkKey generates the primary key for a chunk.
func makeChunkKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", chunkPrefix, id))
}

// makeChunkSeqKey generates the insertion-order index key.
// Format: prefix:seq. seq is BigEndian so lexicographic order matches
// insertion order.
func makeChunkSeqKey(seq uint64) []byte {
	prefix := chunkSeqPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeChunkDocKey generates the document index key for a chunk.
// Format: prefix:docID:chunkID
func makeChunkDocKey(docID, chunkID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", chunkDocPrefix, docID, chunkID))
}

// makeChunkDocPrefix generates the prefix covering all chunks of a document.
func makeChunkDocPrefix(docID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkDocPrefix, docID))
}

// makeDocInfoKey generates the key for a document registry entry.
func makeDocInfoKey(docID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", docInfoPrefix, docID))
}

// makeHistoryKey generates a composite key for a chat message.
// Format: prefix:sessionID:seq. seq is BigEndian so messages iterate in
// append order. Session IDs must not contain ':'.
func makeHistoryKey(sessionID string, seq uint64) []byte {
	prefix := fmt.Sprintf("%s:%s:", historyPrefix, sessionID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeHistorySessionPrefix generates the prefix covering one session.
func makeHistorySessionPrefix(sessionID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", historyPrefix, sessionID))
}

// sessionIDFromKey extracts the session ID from a history key.
func sessionIDFromKey(key []byte) string {
	rest := strings.TrimPrefix(string(key), historyPrefix+":")
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		return rest[:i]
	}
	return rest
}

// chunkIDFromDocKey extracts the chunk ID from a document index key.
func chunkIDFromDocKey(key []byte, docID string) string {
	prefix := fmt.Sprintf("%s:%s:", chunkDocPrefix, docID)
	return strings.TrimPrefix(string(key), prefix)
}
