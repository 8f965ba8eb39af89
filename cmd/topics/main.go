package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rpggio/topics/internal/app"
	"github.com/rpggio/topics/internal/config"
)

// Version is set at build time.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cli carries per-invocation state shared by the subcommands.
type cli struct {
	stdout       io.Writer
	stderr       io.Writer
	cfg          config.Config
	logger       *slog.Logger
	invocationID string
	closers      []io.Closer
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr, invocationID: uuid.NewString()}
	defer c.close()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "topics",
		Short:         "Track the single active discussion topic of a project",
		Long:          "topics keeps a small file-based store of discussion topics under <root>/.cc-codex and enforces that at most one of them is active.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}

	root.AddCommand(
		c.createCmd(),
		c.readCmd(),
		c.updateCmd(),
		c.completeCmd(),
		c.listCmd(),
		c.autoCleanupCmd(),
		c.statusCmd(),
		c.historyCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	c.cfg = cfg

	// stdout carries command output, so logs go to stderr.
	logWriter := c.stderr
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(c.stderr, "log file error: %v\n", err)
		} else {
			c.closers = append(c.closers, file)
			logWriter = io.MultiWriter(c.stderr, fileWriter)
		}
	}
	c.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	})).With("invocation_id", c.invocationID)
	return nil
}

func (c *cli) open(projectRoot string) *app.App {
	a := app.New(projectRoot, c.cfg, c.logger, c.invocationID)
	c.closers = append(c.closers, a)
	return a
}

func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
}

func (c *cli) outputJSON(v any) error {
	encoder := json.NewEncoder(c.stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// reportedError marks a failure whose diagnostic was already written.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
