// Copyright 2025 Handoff Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/handoffhq/handoff/core"
)

// MUS serializers for the stored record types. Hand-written: the type set is
// three small records, and field order here is the wire format; append new
// fields at the end only.

var (
	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)
	metadataMUS = ord.NewMapSer[string, string](ord.String, ord.String)
	sourcesMUS  = ord.NewSliceSer[string](ord.String)
)

// ChunkMUS serializes core.Chunk values.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(c core.Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.ID, bs)
	n += ord.String.Marshal(c.Text, bs[n:])
	n += metadataMUS.Marshal(c.Metadata, bs[n:])
	n += vectorMUS.Marshal(c.Vector, bs[n:])
	n += varint.Uint64.Marshal(c.Seq, bs[n:])
	return
}

func (chunkMUS) Unmarshal(bs []byte) (c core.Chunk, n int, err error) {
	var n1 int
	c.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Seq, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	return
}

func (chunkMUS) Size(c core.Chunk) (size int) {
	size = ord.String.Size(c.ID)
	size += ord.String.Size(c.Text)
	size += metadataMUS.Size(c.Metadata)
	size += vectorMUS.Size(c.Vector)
	size += varint.Uint64.Size(c.Seq)
	return
}

// MessageMUS serializes core.Message values. Timestamps travel as Unix
// microseconds.
var MessageMUS = messageMUS{}

type messageMUS struct{}

func (messageMUS) Marshal(m core.Message, bs []byte) (n int) {
	n = varint.Int.Marshal(int(m.Role), bs)
	n += ord.String.Marshal(m.Content, bs[n:])
	n += varint.Int64.Marshal(m.Timestamp.UnixMicro(), bs[n:])
	n += sourcesMUS.Marshal(m.Sources, bs[n:])
	return
}

func (messageMUS) Unmarshal(bs []byte) (m core.Message, n int, err error) {
	var n1 int
	var role int
	role, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	m.Role = core.Role(role)
	m.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Timestamp = time.UnixMicro(micros).UTC()
	m.Sources, n1, err = sourcesMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (messageMUS) Size(m core.Message) (size int) {
	size = varint.Int.Size(int(m.Role))
	size += ord.String.Size(m.Content)
	size += varint.Int64.Size(m.Timestamp.UnixMicro())
	size += sourcesMUS.Size(m.Sources)
	return
}

// DocumentInfoMUS serializes core.DocumentInfo values.
var DocumentInfoMUS = documentInfoMUS{}

type documentInfoMUS struct{}

func (documentInfoMUS) Marshal(d core.DocumentInfo, bs []byte) (n int) {
	n = ord.String.Marshal(d.ID, bs)
	n += ord.String.Marshal(d.Filename, bs[n:])
	n += varint.Int.Marshal(d.ChunkCount, bs[n:])
	n += ord.Bool.Marshal(d.HasVisualContent, bs[n:])
	n += varint.Int64.Marshal(d.UploadedAt.UnixMicro(), bs[n:])
	return
}

func (documentInfoMUS) Unmarshal(bs []byte) (d core.DocumentInfo, n int, err error) {
	var n1 int
	d.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	d.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.HasVisualContent, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	d.UploadedAt = time.UnixMicro(micros).UTC()
	return
}

func (documentInfoMUS) Size(d core.DocumentInfo) (size int) {
	size = ord.String.Size(d.ID)
	size += ord.String.Size(d.Filename)
	size += varint.Int.Size(d.ChunkCount)
	size += ord.Bool.Size(d.HasVisualContent)
	size += varint.Int64.Size(d.UploadedAt.UnixMicro())
	return
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, ChunkMUS.Size(*chunk))
	ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalMessage serializes a Message to bytes.
func MarshalMessage(msg *core.Message) []byte {
	buf := make([]byte, MessageMUS.Size(*msg))
	MessageMUS.Marshal(*msg, buf)
	return buf
}

// UnmarshalMessage deserializes a Message from bytes.
func UnmarshalMessage(data []byte) (*core.Message, error) {
	msg, _, err := MessageMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarshalDocumentInfo serializes a DocumentInfo to bytes.
func MarshalDocumentInfo(info *core.DocumentInfo) []byte {
	buf := make([]byte, DocumentInfoMUS.Size(*info))
	DocumentInfoMUS.Marshal(*info, buf)
	return buf
}

// UnmarshalDocumentInfo deserializes a DocumentInfo from bytes.
func UnmarshalDocumentInfo(data []byte) (*core.DocumentInfo, error) {
	info, _, err := DocumentInfoMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
