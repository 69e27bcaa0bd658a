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

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/handoffhq/handoff/config"
	"github.com/handoffhq/handoff/core"
	"github.com/handoffhq/handoff/storage"
	"github.com/handoffhq/handoff/vectorizer"
)

// Pipeline orchestrates document ingestion: validation, splitting,
// vectorization and atomic storage.
type Pipeline struct {
	chunks         storage.ChunkRepository
	vectorizer     *vectorizer.Vectorizer
	splitter       textsplitter.RecursiveCharacter
	pool           *ants.Pool
	visualKeywords []string
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent vectorization.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunks storage.ChunkRepository,
	vec *vectorizer.Vectorizer,
	cfg *config.Config,
	opts ...Option,
) (*Pipeline, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if vec == nil {
		return nil, ErrVectorizerRequired
	}
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunks:     chunks,
		vectorizer: vec,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.Splitter.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.Splitter.ChunkOverlap),
		),
		pool:           pool,
		visualKeywords: cfg.Vectorizer.VisualKeywords,
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// IngestDocument validates, splits, vectorizes and stores a document.
// The document ID is derived from the filename and content, so re-ingesting
// the same file overwrites its chunks rather than duplicating them. The
// chunk batch is stored atomically.
func (p *Pipeline) IngestDocument(ctx context.Context, filename string, content []byte) (*core.DocumentInfo, error) {
	if err := ValidateDocument(filename, content); err != nil {
		return nil, err
	}

	docID := core.DocumentIDFromContent(filename, content)

	pieces, err := p.splitter.SplitText(string(content))
	if err != nil {
		return nil, fmt.Errorf("splitting document: %w", err)
	}
	if len(pieces) == 0 {
		return nil, ErrNoChunks
	}

	base := filepath.Base(filename)
	hasVisual := false
	chunks := make([]*core.Chunk, len(pieces))
	for i, text := range pieces {
		visual := p.hasVisualContext(text)
		hasVisual = hasVisual || visual
		chunks[i] = &core.Chunk{
			ID:   core.ChunkID(docID, i),
			Text: text,
			Metadata: map[string]string{
				core.MetaSource:           base,
				core.MetaDocID:            docID,
				core.MetaChunkIndex:       strconv.Itoa(i),
				core.MetaTotalChunks:      strconv.Itoa(len(pieces)),
				core.MetaHasVisualContext: strconv.FormatBool(visual),
			},
		}
	}

	p.vectorizeAll(chunks)

	if err := p.chunks.AddChunks(ctx, chunks...); err != nil {
		return nil, err
	}

	info := &core.DocumentInfo{
		ID:               docID,
		Filename:         base,
		ChunkCount:       len(chunks),
		HasVisualContent: hasVisual,
		UploadedAt:       time.Now().UTC(),
	}
	if err := p.chunks.RecordDocument(ctx, info); err != nil {
		return nil, err
	}

	p.logger.Info("ingested document", "filename", base, "doc_id", docID, "chunks", len(chunks))
	return info, nil
}

// IngestFile reads and ingests a single file from disk.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*core.DocumentInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.IngestDocument(ctx, path, content)
}

// IngestDir ingests every supported file in a directory, skipping files with
// unsupported extensions. Failures are collected per file; documents that
// ingest cleanly are kept even when others fail.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) ([]*core.DocumentInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var infos []*core.DocumentInfo
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			p.logger.Debug("skipping unsupported file", "filename", entry.Name())
			continue
		}

		info, err := p.IngestFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			p.logger.Error("error ingesting file", "filename", entry.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name(), err))
			continue
		}
		infos = append(infos, info)
	}

	return infos, errors.Join(errs...)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// vectorizeAll computes chunk vectors on the worker pool. Falls back to
// inline computation when a task cannot be submitted.
func (p *Pipeline) vectorizeAll(chunks []*core.Chunk) {
	var wg sync.WaitGroup
	for _, chunk := range chunks {
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			chunk.Vector = p.vectorizer.Vectorize(chunk.Text)
		}); err != nil {
			chunk.Vector = p.vectorizer.Vectorize(chunk.Text)
			wg.Done()
		}
	}
	wg.Wait()
}

func (p *Pipeline) hasVisualContext(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range p.visualKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
