package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/dmitrymomot/certflow/core/logger"
)

// Checkpoint is one snapshot on the stack. Seq 0 is the newest.
type Checkpoint struct {
	ID        string
	Seq       int
	Note      string
	CreatedAt time.Time
	Files     []string
}

// Store keeps a stack of configuration snapshots on disk so destructive
// changes can be undone in reverse order. Each checkpoint is a directory
// named NNNNNN-xxxxxxxx (zero-padded counter plus a uuid fragment) holding
// archived file copies and a manifest.
//
// Mutations are serialized by an in-process mutex and a file lock, so two
// processes sharing the directory cannot interleave snapshots and rollbacks.
type Store struct {
	dir    string
	mu     sync.Mutex
	flock  *flock.Flock
	logger *slog.Logger
}

// NewStore opens (and creates if needed) the checkpoint directory.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrMissingDir
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w: %w", ErrCheckpointIO, err)
	}

	options := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Store{
		dir:    dir,
		flock:  flock.New(filepath.Join(dir, ".lock")),
		logger: options.logger,
	}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Create snapshots the current content of every path before the caller
// mutates them. Paths that do not exist yet are recorded so a rollback
// removes whatever the caller creates there. The snapshot is assembled in a
// temporary directory and committed with a single rename; a failed create
// leaves no partial checkpoint behind.
func (s *Store) Create(ctx context.Context, note string, paths []string) (*Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			return nil, ErrEmptyPath
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire checkpoint lock: %w", err)
	}
	defer s.flock.Unlock()

	names, err := s.checkpointDirs()
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("%06d-%s", nextSeq(names), uuid.NewString()[:8])

	tmpDir, err := os.MkdirTemp(s.dir, ".tmp-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w: %w", ErrCheckpointIO, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmpDir) // Best effort cleanup
		}
	}()

	m := manifest{ID: id, Note: note, CreatedAt: time.Now().UTC()}
	for i, path := range paths {
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			m.Files = append(m.Files, fileEntry{Path: path})
		case err != nil:
			return nil, fmt.Errorf("failed to stat %s: %w: %w", path, ErrCheckpointIO, err)
		case info.IsDir():
			return nil, fmt.Errorf("%s is a directory: %w", path, ErrCheckpointIO)
		default:
			archive := fmt.Sprintf("%04d_%s", i, safeFileSegment(filepath.Base(path)))
			if err := copyFile(path, filepath.Join(tmpDir, archive), info.Mode().Perm()); err != nil {
				return nil, fmt.Errorf("failed to archive %s: %w: %w", path, ErrCheckpointIO, err)
			}
			m.Files = append(m.Files, fileEntry{Path: path, Archive: archive, Mode: info.Mode().Perm()})
		}
	}

	if err := saveManifest(tmpDir, m); err != nil {
		return nil, err
	}
	if err := os.Rename(tmpDir, filepath.Join(s.dir, id)); err != nil {
		return nil, fmt.Errorf("failed to register checkpoint: %w: %w", ErrCheckpointIO, err)
	}
	committed = true

	s.logger.InfoContext(ctx, "checkpoint created",
		logger.Checkpoint(id),
		slog.Int("files", len(paths)))

	return &Checkpoint{
		ID:        id,
		Seq:       0,
		Note:      note,
		CreatedAt: m.CreatedAt,
		Files:     append([]string(nil), paths...),
	}, nil
}

// Rollback undoes the n most recent checkpoints, newest first, removing each
// from the stack as it is applied. It validates depth and loads every
// involved manifest before touching any file, so an impossible request
// mutates nothing. n of zero or less is a no-op.
func (s *Store) Rollback(ctx context.Context, n int) error {
	if n <= 0 {
		s.logger.DebugContext(ctx, "rollback of zero checkpoints requested, nothing to do")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire checkpoint lock: %w", err)
	}
	defer s.flock.Unlock()

	names, err := s.checkpointDirs()
	if err != nil {
		return err
	}
	if n > len(names) {
		return fmt.Errorf("requested %d, stack holds %d: %w", n, len(names), ErrInsufficientCheckpoints)
	}

	manifests := make([]manifest, 0, n)
	for _, name := range names[:n] {
		m, err := loadManifest(filepath.Join(s.dir, name))
		if err != nil {
			return err
		}
		manifests = append(manifests, m)
	}

	for i, name := range names[:n] {
		dir := filepath.Join(s.dir, name)
		if err := restore(dir, manifests[i]); err != nil {
			return err
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to drop checkpoint %s: %w: %w", name, ErrCheckpointIO, err)
		}
		s.logger.InfoContext(ctx, "checkpoint rolled back",
			logger.Checkpoint(manifests[i].ID),
			slog.String("note", manifests[i].Note))
	}
	return nil
}

// List returns the stack newest first; Seq 0 is the checkpoint a single
// rollback would undo.
func (s *Store) List(ctx context.Context) ([]Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.flock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to acquire checkpoint lock: %w", err)
	}
	defer s.flock.Unlock()

	names, err := s.checkpointDirs()
	if err != nil {
		return nil, err
	}

	out := make([]Checkpoint, 0, len(names))
	for i, name := range names {
		m, err := loadManifest(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		files := make([]string, 0, len(m.Files))
		for _, f := range m.Files {
			files = append(files, f.Path)
		}
		out = append(out, Checkpoint{
			ID:        m.ID,
			Seq:       i,
			Note:      m.Note,
			CreatedAt: m.CreatedAt,
			Files:     files,
		})
	}
	return out, nil
}

// Depth reports how many checkpoints are on the stack.
func (s *Store) Depth(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	names, err := s.checkpointDirs()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// checkpointDirs returns checkpoint directory names sorted newest first. The
// zero-padded counter prefix makes lexical order chronological.
func (s *Store) checkpointDirs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w: %w", ErrCheckpointIO, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && isCheckpointName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func isCheckpointName(name string) bool {
	if len(name) < 8 || name[6] != '-' {
		return false
	}
	for _, r := range name[:6] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// nextSeq picks the counter for a new checkpoint from the newest existing
// name. names must be sorted newest first.
func nextSeq(names []string) int {
	if len(names) == 0 {
		return 1
	}
	seq, err := strconv.Atoi(names[0][:6])
	if err != nil {
		return 1
	}
	return seq + 1
}

// restore puts every file tracked by the manifest back into its archived
// state. Paths that did not exist at snapshot time are removed.
func restore(dir string, m manifest) error {
	for _, f := range m.Files {
		if f.Archive == "" {
			if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to remove %s: %w: %w", f.Path, ErrCheckpointIO, err)
			}
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, f.Archive))
		if err != nil {
			return fmt.Errorf("%s: archived copy of %s: %w: %w", m.ID, f.Path, ErrCheckpointCorrupt, err)
		}
		mode := f.Mode.Perm()
		if mode == 0 {
			mode = 0o644
		}
		if err := writeFileAtomic(f.Path, data, mode); err != nil {
			return fmt.Errorf("failed to restore %s: %w: %w", f.Path, ErrCheckpointIO, err)
		}
	}
	return nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, perm)
}

func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best effort cleanup
		return err
	}
	return nil
}

// safeFileSegment turns a base name into something safe to reuse inside the
// checkpoint directory.
func safeFileSegment(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "file"
	}

	var b strings.Builder
	b.Grow(len(value))

	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return b.String()
}
