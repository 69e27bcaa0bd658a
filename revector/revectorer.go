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

package revector

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/handoffhq/handoff/core"
	"github.com/handoffhq/handoff/storage"
	"github.com/handoffhq/handoff/vectorizer"
)

// Config holds configuration for the revectoring operation.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
	}
}

// Revectorer orchestrates recomputing the vectors of every stored chunk.
type Revectorer struct {
	repo       storage.ChunkRepository
	vectorizer *vectorizer.Vectorizer
	config     *Config
	progress   io.Writer
	iterator   *ChunkIterator
}

// NewRevectorer creates a new revectorer.
// progress: where to write progress output (typically os.Stderr). A nil
// progress writer runs silently.
func NewRevectorer(repo storage.ChunkRepository, vec *vectorizer.Vectorizer, config *Config, progress io.Writer) *Revectorer {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Revectorer{
		repo:       repo,
		vectorizer: vec,
		config:     config,
		progress:   progress,
		iterator:   NewChunkIterator(repo, config.BatchSize),
	}
}

// Run executes the revectoring operation. Every stored chunk gets a vector
// recomputed from its text with the current vectorizer configuration.
// Writing a chunk back under its existing ID preserves its insertion order.
// Progress is reported to the configured writer.
func (r *Revectorer) Run(ctx context.Context) error {
	stats, err := r.repo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to query index stats: %w", err)
	}

	total := stats.ChunkCount
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found in index (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting revectoring of %d chunks (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, func(chunks []*core.Chunk) error {
		for _, chunk := range chunks {
			chunk.Vector = r.vectorizer.Vectorize(chunk.Text)
		}

		if err := r.repo.AddChunks(ctx, chunks...); err != nil {
			return fmt.Errorf("failed to update batch: %w", err)
		}

		processed += len(chunks)
		tracker.Update(processed)
		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Revectoring complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
