// Package filesystem materializes prepared output trees onto a billy.Filesystem.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	apperrors "github.com/reglet-dev/distribution/internal/application/errors"
	"github.com/reglet-dev/distribution/internal/application/ports"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Materializer writes directories and files onto a filesystem, relative to
// its root. Paths use forward slashes; the empty path is the root.
type Materializer struct {
	fs   billy.Filesystem
	root string

	mu      sync.Mutex
	written map[string]struct{}
}

// NewMaterializer wraps fs. root only describes the target in reports.
func NewMaterializer(fs billy.Filesystem, root string) *Materializer {
	return &Materializer{
		fs:      fs,
		root:    root,
		written: make(map[string]struct{}),
	}
}

// MakeDir implements structure.Sink. Existing directories are fine.
func (m *Materializer) MakeDir(p string) error {
	if p == "" || p == "." {
		return nil
	}
	if err := m.fs.MkdirAll(p, dirPerm); err != nil {
		return apperrors.NewFilesystemError("mkdir", p, err)
	}
	return nil
}

// WriteFile implements structure.Sink. The parent directory must exist.
func (m *Materializer) WriteFile(p string, data []byte) error {
	if err := util.WriteFile(m.fs, p, data, filePerm); err != nil {
		return apperrors.NewFilesystemError("write", p, err)
	}
	m.mu.Lock()
	m.written[p] = struct{}{}
	m.mu.Unlock()
	return nil
}

// Root implements ports.OutputTarget.
func (m *Materializer) Root() string {
	return m.root
}

// Written implements ports.OutputTarget.
func (m *Materializer) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.written))
	for p := range m.written {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Factory opens the output target of a build.
type Factory struct {
	// OutputDir is the absolute output directory.
	OutputDir string
	// Recreate empties OutputDir before writing.
	Recreate bool
}

// Open implements ports.OutputFactory. A dry run writes to memory only.
func (f Factory) Open(ctx context.Context, dryRun bool) (ports.OutputTarget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dryRun {
		return NewMaterializer(memfs.New(), "memory://"+f.OutputDir), nil
	}
	if f.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}

	if err := os.MkdirAll(f.OutputDir, dirPerm); err != nil {
		return nil, apperrors.NewFilesystemError("mkdir", f.OutputDir, err)
	}

	fs := osfs.New(f.OutputDir, osfs.WithBoundOS())
	if f.Recreate {
		if err := emptyDir(fs); err != nil {
			return nil, apperrors.NewFilesystemError("recreate", f.OutputDir, err)
		}
	}
	return NewMaterializer(fs, f.OutputDir), nil
}

// emptyDir removes everything below the root of fs, keeping the root itself.
func emptyDir(fs billy.Filesystem) error {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := util.RemoveAll(fs, e.Name()); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return nil
}
