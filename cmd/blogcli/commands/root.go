// Package commands implements the blogcli command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/maruel/blogdb/internal/apiclient"
	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/config"
	"github.com/maruel/blogdb/internal/console"
)

var (
	// Global flags
	dataDir   string
	serverURL string
	memory    bool
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "blogcli",
	Short: "Console client for the blog tables",
	Long: `blogcli manages users, posts and comments from the terminal.

Without a subcommand it starts the interactive menu. The tables are read from
the data directory, kept in memory with --memory, or served by a running blogd
with --server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		stores, err := openStores(ctx)
		if err != nil {
			return err
		}
		return console.New(stores, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "Directory holding the table files")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Use the API of a running blogd (e.g., http://localhost:8080)")
	rootCmd.PersistentFlags().BoolVar(&memory, "memory", false, "Use seeded in-memory tables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.MarkFlagsMutuallyExclusive("server", "memory")
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		})))
	}
}

// openStores returns the tables selected by the global flags.
//
// With --server, the server must answer its health check.
func openStores(ctx context.Context) (*blog.Stores, error) {
	switch {
	case serverURL != "":
		c := apiclient.New(apiclient.Config{BaseURL: serverURL, Timeout: 10 * time.Second})
		h, err := c.Health(ctx)
		if err != nil {
			return nil, fmt.Errorf("server %s is not available: %w", serverURL, err)
		}
		slog.Debug("Using API", "server", serverURL, "version", h.Version)
		return c.Stores(), nil
	case memory:
		return blog.NewMemoryStores(nil)
	default:
		cfg, err := config.Load(dataDir)
		if err != nil {
			return nil, err
		}
		names := blog.FileNames{Users: cfg.Tables.Users, Posts: cfg.Tables.Posts, Comments: cfg.Tables.Comments}
		stores, err := blog.OpenFileStores(dataDir, names, nil)
		if err != nil {
			return nil, err
		}
		slog.Debug("Using files", "dir", dataDir)
		return stores, nil
	}
}

var errBadID = errors.New("id must be a positive integer")
