package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestIngestAndStatsCommands(t *testing.T) {
	dbDir := filepath.Join(t.TempDir(), "db")
	docDir := t.TempDir()
	docPath := filepath.Join(docDir, "team.txt")
	require.NoError(t, os.WriteFile(docPath,
		[]byte("Ramesh Iyer is the backend developer on the project."), 0o644))

	app := newApp()

	require.NoError(t, app.Run([]string{"handoff", "--db", dbDir, "ingest", docPath}))
	require.NoError(t, app.Run([]string{"handoff", "--db", dbDir, "stats"}))
	require.NoError(t, app.Run([]string{"handoff", "--db", dbDir, "ask", "Who", "is", "Ramesh", "Iyer?"}))
	require.NoError(t, app.Run([]string{"handoff", "--db", dbDir, "clear"}))
}

func TestIngestCommand_RequiresArgs(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"handoff", "--db", t.TempDir(), "ingest"})
	require.Error(t, err)
}
