package catalog

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrScopeUnreadable is returned when the scan root itself cannot be
// read. Failures on individual files never produce this error — they
// degrade to tagged items instead.
var ErrScopeUnreadable = errors.New("catalog: scope unreadable")

// excerptBytes is how much of each file's head is kept for keyword
// scoring. Enough to cover package docs, headings, and top-level
// symbol names without holding whole files in memory.
const excerptBytes = 4096

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".focal":       true,
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
	"dist":         true,
	"build":        true,
}

// Scanner walks a scope and produces catalog snapshots.
type Scanner struct {
	// Exclude holds glob patterns (matched against slash-normalized
	// relative paths) for items to leave out of the snapshot entirely.
	Exclude []string

	// Workers bounds the file-reading pool. Zero means GOMAXPROCS.
	Workers int

	// now is swappable for tests.
	now func() time.Time
}

// NewScanner returns a Scanner with the given exclude patterns.
func NewScanner(exclude []string) *Scanner {
	return &Scanner{Exclude: exclude, now: time.Now}
}

// Scan walks root and returns a snapshot of every candidate item under
// it. The root must be a readable directory; otherwise Scan fails with
// ErrScopeUnreadable. Individual files that cannot be inspected are
// kept and tagged TagUnscanned rather than omitted.
//
// File reads run on a bounded worker pool. Cancellation is cooperative:
// ctx is checked between items and partial progress is discarded.
func (sc *Scanner) Scan(ctx context.Context, root string) (*Snapshot, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScopeUnreadable, root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScopeUnreadable, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s: not a directory", ErrScopeUnreadable, root)
	}

	paths, err := sc.collect(ctx, root)
	if err != nil {
		return nil, err
	}

	workers := sc.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu    sync.Mutex
		items = make([]Item, 0, len(paths))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item := sc.inspect(root, rel)
			mu.Lock()
			items = append(items, item)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now
	if sc.now != nil {
		now = sc.now
	}
	return NewSnapshot(uuid.NewString(), root, now().UTC(), items), nil
}

// collect walks the tree and returns the relative paths of all regular
// files that survive the exclude filters.
func (sc *Scanner) collect(ctx context.Context, root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if p == root {
				return fmt.Errorf("%w: %s: %v", ErrScopeUnreadable, root, err)
			}
			return nil // unreadable subtree: best effort
		}
		if d.IsDir() {
			if skipDirs[d.Name()] || (p != root && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, rerr := filepath.Rel(root, p)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if sc.excluded(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (sc *Scanner) excluded(rel string) bool {
	for _, pat := range sc.Exclude {
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
		// Also match against the basename so patterns like "*.log"
		// apply at any depth.
		if ok, _ := filepath.Match(pat, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}

// inspect fingerprints a single file. It never fails: unreadable or
// binary content yields an item tagged TagUnscanned with a metadata
// digest, so it can still be ranked and invalidated on change.
func (sc *Scanner) inspect(root, rel string) Item {
	item := Item{
		ID:   rel,
		Kind: classifyKind(rel),
	}
	for _, t := range staticTags(rel) {
		item.AddTag(t)
	}

	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		item.AddTag(TagUnscanned)
		item.Digest = metaDigest(rel, 0, time.Time{})
		return item
	}
	item.SizeBytes = info.Size()
	item.LastChanged = info.ModTime().UTC()

	data, err := os.ReadFile(full)
	if err != nil {
		item.AddTag(TagUnscanned)
		item.Digest = metaDigest(rel, info.Size(), info.ModTime())
		return item
	}

	sum := sha256.Sum256(data)
	item.Digest = hex.EncodeToString(sum[:])

	if isBinary(data) {
		item.AddTag(TagUnscanned)
		return item
	}

	head := data
	if len(head) > excerptBytes {
		head = head[:excerptBytes]
	}
	item.Excerpt = strings.ToLower(string(head))
	return item
}

// metaDigest fingerprints an item we could not read, from its metadata.
// It changes whenever size or mtime change, which is the best staleness
// signal available without content.
func metaDigest(rel string, size int64, mtime time.Time) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "meta:%s:%d:%d", rel, size, mtime.UnixNano()))
	return hex.EncodeToString(sum[:])
}

// isBinary reports whether data looks like non-text content. A NUL in
// the head is the classic git heuristic.
func isBinary(data []byte) bool {
	head := data
	if len(head) > 8000 {
		head = head[:8000]
	}
	return bytes.IndexByte(head, 0) >= 0
}
