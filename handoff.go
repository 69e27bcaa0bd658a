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

package handoff

import (
	"log/slog"

	"github.com/handoffhq/handoff/config"
	"github.com/handoffhq/handoff/ingestion"
	"github.com/handoffhq/handoff/retrieval"
	"github.com/handoffhq/handoff/storage"
	"github.com/handoffhq/handoff/storage/badger"
	"github.com/handoffhq/handoff/vectorizer"
)

// Store bundles the storage backend, repositories and vectorizer behind a
// single handle and acts as a factory for ingestion pipelines and
// retrievers.
type Store struct {
	cfg         *config.Config
	backend     *badger.Backend
	chunkRepo   storage.ChunkRepository
	historyRepo storage.HistoryRepository
	vectorizer  *vectorizer.Vectorizer
	logger      *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	cfg *config.Config
}

// WithConfig supplies a configuration.
// Default is config.Default().
func WithConfig(cfg *config.Config) StoreOption {
	return func(o *storeOptions) {
		if cfg != nil {
			o.cfg = cfg
		}
	}
}

// NewStore opens the backing store at filePath and wires up the
// repositories. An empty filePath falls back to the configured storage path,
// or to an in-memory store when the configuration asks for one.
func NewStore(filePath string, opts ...StoreOption) (*Store, error) {
	// Apply options
	options := &storeOptions{
		cfg: config.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	cfg := options.cfg

	if filePath == "" {
		filePath = cfg.Storage.Path
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, cfg.Storage.InMemory)
	if err != nil {
		return nil, err
	}

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create history repository
	historyRepo, err := badger.NewHistoryRepository(backend, cfg.History.MaxMessages)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Store{
		cfg:         cfg,
		backend:     backend,
		chunkRepo:   chunkRepo,
		historyRepo: historyRepo,
		vectorizer:  vectorizer.New(cfg),
		logger:      slog.Default(),
	}, nil
}

func (s *Store) Close() error {
	// Close repositories
	if err := s.historyRepo.Close(); err != nil {
		s.logger.Error("error closing history repository", "err", err)
		return err
	}
	if err := s.chunkRepo.Close(); err != nil {
		s.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	// Close backend
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *Store) Config() *config.Config {
	return s.cfg
}

func (s *Store) ChunkRepository() storage.ChunkRepository {
	return s.chunkRepo
}

func (s *Store) HistoryRepository() storage.HistoryRepository {
	return s.historyRepo
}

func (s *Store) Vectorizer() *vectorizer.Vectorizer {
	return s.vectorizer
}

func (s *Store) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.chunkRepo, s.vectorizer, s.cfg, opts...)
}

func (s *Store) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(s.chunkRepo, s.vectorizer, s.cfg, opts...)
}
