// Command blogd serves the blog API over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/config"
	"github.com/maruel/blogdb/internal/history"
	"github.com/maruel/blogdb/internal/metrics"
	"github.com/maruel/blogdb/internal/server"
	"github.com/maruel/blogdb/internal/server/handlers"
	"github.com/maruel/blogdb/internal/server/ratelimit"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "blogd: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	httpAddr := flag.String("http", "localhost:8080", "Address to listen on (e.g., localhost:8080, :8080, 0.0.0.0:8080)")
	dataDir := flag.String("data-dir", "./data", "Data directory")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	memory := flag.Bool("memory", false, "Keep the tables in memory; nothing is written to disk")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	slog.SetDefault(newLogger(ll))

	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}

	addr := *httpAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	cfg := config.Default()
	var stores *blog.Stores
	var hist *history.Repo
	if *memory {
		var err error
		if stores, err = blog.NewMemoryStores(metrics.RecordTableOp); err != nil {
			return fmt.Errorf("failed to initialize memory stores: %w", err)
		}
		slog.InfoContext(ctx, "Using in-memory tables")
	} else {
		loaded, err := config.Load(*dataDir)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", filepath.Join(*dataDir, config.FileName), err)
		}
		cfg = *loaded
		names := blog.FileNames{Users: cfg.Tables.Users, Posts: cfg.Tables.Posts, Comments: cfg.Tables.Comments}
		if stores, err = blog.OpenFileStores(*dataDir, names, metrics.RecordTableOp); err != nil {
			return fmt.Errorf("failed to initialize file stores: %w", err)
		}
		if cfg.History.Enabled {
			author := history.Author{Name: cfg.History.AuthorName, Email: cfg.History.AuthorEmail}
			if hist, err = history.Open(ctx, *dataDir, author); err != nil {
				return fmt.Errorf("failed to initialize history: %w", err)
			}
			slog.InfoContext(ctx, "History enabled", "dir", hist.Dir())
		}
	}

	if err := watchExecutable(ctx, stop); err != nil {
		return fmt.Errorf("failed to watch executable: %w", err)
	}

	buildVersion, _, _, _ := getBuildInfo()
	srvCfg := &server.Config{
		MaxRequestBodyBytes: cfg.Limits.MaxRequestBodyBytes,
		Version:             buildVersion,
	}
	if cfg.Limits.WriteRatePerMin > 0 {
		srvCfg.WriteLimiter = ratelimit.NewLimiter(cfg.Limits.WriteRatePerMin, time.Minute, cfg.Limits.WriteBurst)
		defer srvCfg.WriteLimiter.Close()
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(handlers.NewServices(stores, hist), srvCfg),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", addr, "dataDir", *dataDir, "memory", *memory, "version", buildVersion)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

// newLogger returns a colored logger on stderr that omits zero-valued attributes.
func newLogger(ll *slog.LevelVar) *slog.Logger {
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// journald timestamps lines already.
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			if a.Key == "ip" {
				if v := a.Value.String(); v == "127.0.0.1" || v == "::1" {
					return slog.Attr{}
				}
			}
			skip := false
			switch t := a.Value.Any().(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case uint64:
				skip = t == 0
			case int64:
				skip = t == 0
			case float64:
				skip = t == 0
			case time.Time:
				skip = t.IsZero()
			case time.Duration:
				skip = t == 0
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("blogd %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}

// watchExecutable stops the server when the binary is replaced so a
// supervisor can restart it.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}
