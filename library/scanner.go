package library

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	pack "github.com/meigma/modpack/core"
)

// Result is the outcome of decoding one file.
// Exactly one of Pack and Err is set.
type Result struct {
	Path string
	Pack *pack.Pack
	Err  error
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithWorkers sets the number of files decoded concurrently.
// Values <= 0 use GOMAXPROCS.
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		s.workers = n
	}
}

// WithBaseReader decodes the base-game pack named name with r instead of the
// default reader. It is typically limited to the tables patches need.
func WithBaseReader(name string, r *pack.Reader) ScannerOption {
	return func(s *Scanner) {
		s.baseName = name
		s.baseReader = r
	}
}

// WithScannerLogger sets the logger for scan operations.
// If not set, logging is disabled.
func WithScannerLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// Scanner decodes pack files on a bounded worker pool.
type Scanner struct {
	reader     *pack.Reader
	baseName   string
	baseReader *pack.Reader
	workers    int
	logger     *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Scanner) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// NewScanner creates a Scanner decoding files with reader.
func NewScanner(reader *pack.Reader, opts ...ScannerOption) *Scanner {
	s := &Scanner{reader: reader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decode decodes the file at path.
func (s *Scanner) Decode(path string) Result {
	r := s.reader
	if s.baseReader != nil && strings.EqualFold(filepath.Base(path), s.baseName) {
		r = s.baseReader
	}
	p, err := r.ReadFile(path)
	if err != nil {
		s.log().Warn("pack decode failed", "path", path, "error", err)
		return Result{Path: path, Err: err}
	}
	return Result{Path: path, Pack: p}
}

// Scan decodes every path and returns one result per path, in path order.
//
// Failures are reported per file and never stop the scan. When ctx is
// cancelled, files not yet started report ctx.Err().
func (s *Scanner) Scan(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results
	}
	workers := s.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(paths))

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job)
	var eg errgroup.Group
	for range workers {
		eg.Go(func() error {
			for j := range jobs {
				results[j.index] = s.Decode(j.path)
			}
			return nil
		})
	}

	next := 0
feed:
	for ; next < len(paths); next++ {
		select {
		case jobs <- job{index: next, path: paths[next]}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	_ = eg.Wait() //nolint:errcheck // workers report failures per result

	for i := next; i < len(paths); i++ {
		results[i] = Result{Path: paths[i], Err: ctx.Err()}
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.log().Info("scan complete", "files", len(paths), "failed", failed)
	return results
}

// Packs returns the decoded packs of results, dropping failures.
func Packs(results []Result) []*pack.Pack {
	out := make([]*pack.Pack, 0, len(results))
	for _, r := range results {
		if r.Pack != nil {
			out = append(out, r.Pack)
		}
	}
	return out
}
