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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/handoffhq/handoff"
	"github.com/handoffhq/handoff/config"
	"github.com/handoffhq/handoff/core"
	"github.com/handoffhq/handoff/revector"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "handoff",
		Usage: "Deterministic retrieval over project knowledge-transfer documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest documents from files or a directory",
				ArgsUsage: "PATH [PATH...]",
				Action:    ingestCommand,
			},
			{
				Name:      "ask",
				Usage:     "Retrieve context for a question",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session ID for conversation history (generated if omitted)",
					},
					&cli.BoolFlag{
						Name:  "show-matches",
						Usage: "Print individual matches with scores",
					},
				},
			},
			{
				Name:   "history",
				Usage:  "Show conversation history for a session",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "session",
						Aliases:  []string{"s"},
						Usage:    "Session ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum messages to show",
						Value: 20,
					},
				},
			},
			{
				Name:   "revector",
				Usage:  "Recompute all chunk vectors with the current vocabulary",
				Action: revectorCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show index statistics and ingested documents",
				Action: statsCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and its chunks",
				ArgsUsage: "DOC_ID",
				Action:    deleteCommand,
			},
			{
				Name:   "clear",
				Usage:  "Clear the chunk index, or a session's history",
				Action: clearCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Clear only this session's history",
					},
					&cli.BoolFlag{
						Name:  "history",
						Usage: "Clear all conversation history instead of the index",
					},
				},
			},
		},
	}
}

func openStore(c *cli.Context) (*handoff.Store, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	store, err := handoff.NewStore(c.String("db"), handoff.WithConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file or directory is required")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline, err := store.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	ctx := context.Background()
	for _, path := range c.Args().Slice() {
		stat, err := os.Stat(path)
		if err != nil {
			return err
		}

		if stat.IsDir() {
			infos, err := pipeline.IngestDir(ctx, path)
			for _, info := range infos {
				fmt.Printf("ingested %s (%s): %d chunks\n", info.Filename, info.ID, info.ChunkCount)
			}
			if err != nil {
				return err
			}
			continue
		}

		info, err := pipeline.IngestFile(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("ingested %s (%s): %d chunks\n", info.Filename, info.ID, info.ChunkCount)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a question is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	retriever, err := store.NewRetriever()
	if err != nil {
		return err
	}

	sessionID := c.String("session")
	if sessionID == "" {
		sessionID = uuid.New().String()
		fmt.Printf("session: %s\n", sessionID)
	}

	ctx := context.Background()
	history, err := store.HistoryRepository().Recent(ctx, sessionID, store.Config().History.MaxMessages)
	if err != nil {
		return err
	}

	result, err := retriever.Retrieve(ctx, query, history)
	if err != nil {
		return err
	}

	if !result.HasContext {
		fmt.Println("no relevant context found")
	} else {
		fmt.Printf("intent: %s  confidence: %.2f  sources: %s\n\n",
			result.Intent.Class, result.Confidence, strings.Join(result.Sources, ", "))
		if result.ConversationContext != "" {
			fmt.Printf("conversation context:\n%s\n\n", result.ConversationContext)
		}
		fmt.Println(result.Context)
	}

	if c.Bool("show-matches") {
		for i, m := range result.Matches {
			fmt.Printf("%d: %s [%s] (%.3f)\n", i+1, m.Chunk.ID, m.Method, m.Score)
		}
	}

	return store.HistoryRepository().Append(ctx, sessionID,
		&core.Message{Role: core.RoleUser, Content: query, Timestamp: time.Now().UTC()},
	)
}

func historyCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	msgs, err := store.HistoryRepository().Recent(context.Background(), c.String("session"), c.Int("limit"))
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format(time.RFC3339), msg.Role.Title(), msg.Content)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	stats, err := store.ChunkRepository().Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("status: %s  chunks: %d  documents: %d\n", stats.Status, stats.ChunkCount, stats.DocumentCount)

	docs, err := store.ChunkRepository().Documents(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		fmt.Printf("  %s  %s  chunks=%d  visual=%t  uploaded=%s\n",
			doc.ID, doc.Filename, doc.ChunkCount, doc.HasVisualContent,
			doc.UploadedAt.Format(time.RFC3339))
	}
	return nil
}

func revectorCommand(c *cli.Context) error {
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	r := revector.NewRevectorer(store.ChunkRepository(), store.Vectorizer(), &revector.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
	}, os.Stderr)

	return r.Run(context.Background())
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one document ID is required")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.ChunkRepository().DeleteDocument(context.Background(), c.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d chunks\n", count)
	return nil
}

func clearCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	switch {
	case c.String("session") != "":
		if err := store.HistoryRepository().Clear(ctx, c.String("session")); err != nil {
			return err
		}
		fmt.Printf("cleared history for session %s\n", c.String("session"))
	case c.Bool("history"):
		if err := store.HistoryRepository().ClearAll(ctx); err != nil {
			return err
		}
		fmt.Println("cleared all conversation history")
	default:
		if err := store.ChunkRepository().Clear(ctx); err != nil {
			return err
		}
		fmt.Println("cleared chunk index")
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
