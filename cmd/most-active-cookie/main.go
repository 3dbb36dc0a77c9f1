// Command most-active-cookie prints the cookies seen most often on a day.
//
//	most-active-cookie -d 2018-12-09 cookie_log.csv [more.csv ...]
//
// Each file must be a cookie log with the header "cookie,timestamp". Files
// are parsed concurrently; their entries are combined in argument order and
// the winners are printed one per line, in order of first appearance. With
// -store the parsed logs are also saved to DATABASE_URL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/cookielog/internal/activity"
	"github.com/JonMunkholm/cookielog/internal/config"
	"github.com/JonMunkholm/cookielog/internal/core"
	"github.com/JonMunkholm/cookielog/internal/logging"
	"github.com/JonMunkholm/cookielog/internal/schema"
	"github.com/JonMunkholm/cookielog/internal/store"
)

// errNoStore mirrors the server's message so both map to DB007.
var errNoStore = errors.New("persistence is not configured: set DATABASE_URL")

// cookieLog is one parsed input file.
type cookieLog struct {
	path    string
	text    string
	entries []schema.LogEntry
}

func main() {
	// Existing environment wins over .env for a command-line tool.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns its exit status: 0 on success, 1 on
// failure, 2 on bad usage.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("most-active-cookie", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: most-active-cookie -d YYYY-MM-DD [-store] FILE...")
		fs.PrintDefaults()
	}

	var day schema.Date
	fs.TextVar(&day, "d", schema.Date{}, "day to report, as `YYYY-MM-DD` (required)")
	persist := fs.Bool("store", false, "save parsed logs to DATABASE_URL")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if !isSet(fs, "d") || fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "most-active-cookie: %v\n", err)
		return 1
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, stderr)

	if err := mostActive(ctx, cfg, day, fs.Args(), *persist, stdout); err != nil {
		slog.Debug("most-active-cookie failed", "error", err)
		fmt.Fprintf(stderr, "most-active-cookie: %s\n", core.FormatUserError(err))
		return 1
	}
	return 0
}

// isSet reports whether the named flag was passed explicitly.
func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func mostActive(ctx context.Context, cfg *config.Config, day schema.Date, paths []string, persist bool, stdout io.Writer) error {
	if persist && !cfg.Database.Enabled() {
		return errNoStore
	}

	logs, err := readLogs(ctx, paths, cfg.Parse)
	if err != nil {
		return err
	}

	if persist {
		if err := saveLogs(ctx, cfg.Database, logs); err != nil {
			return err
		}
	}

	var all []schema.LogEntry
	for _, l := range logs {
		all = append(all, l.entries...)
	}

	for _, c := range activity.MostActive(all, day) {
		if _, err := fmt.Fprintln(stdout, c); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// readLogs reads and parses every path concurrently. Results keep argument
// order; the first failure cancels the rest.
func readLogs(ctx context.Context, paths []string, cfg config.ParseConfig) ([]cookieLog, error) {
	logs := make([]cookieLog, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrent)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			l, err := readLog(path, cfg.MaxDocumentSize)
			if err != nil {
				return err
			}
			logs[i] = l
			slog.Debug("parsed log", "path", path, "entries", len(l.entries))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return logs, nil
}

func readLog(path string, limit int64) (cookieLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return cookieLog{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	text, err := core.ReadDocument(f, limit)
	if err != nil {
		return cookieLog{}, fmt.Errorf("%s: %w", path, err)
	}

	entries, err := schema.ParseLog(text)
	if err != nil {
		return cookieLog{}, fmt.Errorf("%s: %w", path, err)
	}

	return cookieLog{path: path, text: text, entries: entries}, nil
}

// saveLogs stores every log. Logs stored before are skipped.
func saveLogs(ctx context.Context, cfg config.DatabaseConfig, logs []cookieLog) error {
	pool, err := store.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}

	for _, l := range logs {
		up, err := st.SaveLog(ctx, l.path, l.text, l.entries)
		switch {
		case errors.Is(err, store.ErrDuplicateUpload):
			slog.Info("log already stored", "path", l.path, "upload_id", up.ID)
		case err != nil:
			return err
		default:
			slog.Info("log stored", "path", l.path, "upload_id", up.ID, "rows", up.Rows)
		}
	}
	return nil
}
