package scanner

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Scanner walks a directory tree and reports files over their line limit.
// A Scanner is safe for concurrent use; its configuration never changes
// after New.
type Scanner struct {
	cfg     Config
	workers int
	logger  *slog.Logger
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithWorkers bounds how many files are counted concurrently.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Scanner for cfg with defaults applied to unset fields.
func New(cfg Config, opts ...Option) *Scanner {
	s := &Scanner{
		cfg:     cfg.withDefaults(),
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration, defaults included.
func (s *Scanner) Config() Config {
	return s.cfg.withDefaults()
}

// candidate is a file that passed the extension and exclusion filters.
type candidate struct {
	abs string
	rel string
}

// Scan walks root and returns every file whose line count exceeds the
// threshold for its classification, most lines first. Ties are ordered by
// relative path. Unreadable files and walk errors below root are skipped;
// only an invalid root or a cancelled context produce an error.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Violation, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &InvalidRootError{Root: root, Err: err}
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, &InvalidRootError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &InvalidRootError{Root: root}
	}

	candidates, err := s.collect(ctx, absRoot)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			counts[i] = CountLines(c.abs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	maxLines, maxTestLines := s.cfg.Thresholds()
	violations := []Violation{}
	for i, c := range candidates {
		isTest := IsTestFile(c.rel)
		limit := maxLines
		if isTest {
			limit = maxTestLines
		}
		if counts[i] <= limit {
			continue
		}
		violations = append(violations, Violation{
			Path:         c.rel,
			AbsolutePath: c.abs,
			Lines:        counts[i],
			Type:         FileType(c.abs),
			IsTest:       isTest,
			ExcessLines:  counts[i] - limit,
		})
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Lines != violations[j].Lines {
			return violations[i].Lines > violations[j].Lines
		}
		return violations[i].Path < violations[j].Path
	})

	s.logger.Debug("scan complete",
		"root", absRoot,
		"candidates", len(candidates),
		"violations", len(violations))

	return violations, nil
}

// collect walks absRoot and returns the files that match an extension and
// no exclude pattern. Each file appears at most once.
func (s *Scanner) collect(ctx context.Context, absRoot string) ([]candidate, error) {
	var candidates []candidate
	sep := string(filepath.Separator)

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			s.logger.Debug("skipping unreadable path", "path", path, "error", walkErr)
			if d != nil && d.IsDir() && path != absRoot {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			// Every file below a directory whose path already contains a
			// pattern would be excluded.
			if excluded(path+sep, s.cfg.Exclude) {
				return fs.SkipDir
			}
			return nil
		}

		if !matchesExtension(d.Name(), s.cfg.Extensions) {
			return nil
		}
		if excluded(path, s.cfg.Exclude) {
			return nil
		}
		if !isRegular(path, d) {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		candidates = append(candidates, candidate{abs: path, rel: rel})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return candidates, nil
}

// isRegular reports whether d is a regular file, following symlinks.
// Devices, pipes and sockets are skipped so that reading cannot block.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
