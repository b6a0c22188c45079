// Package uploads stores files uploaded with new mods and serves them back.
package uploads

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Kind selects the directory an upload goes to.
type Kind string

const (
	KindFile  Kind = "file"
	KindImage Kind = "image"
)

const (
	uploadsDir = "uploads"
	imagesDir  = "images"

	// DefaultImage is kept by Clear and used when a mod has no image.
	DefaultImage = "default.jpg"
)

// DefaultImagePath is the public path of DefaultImage.
var DefaultImagePath = "/" + imagesDir + "/" + DefaultImage

// Store writes uploads below a public root directory
type Store struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
	now    func() time.Time
}

// NewStore creates a store rooted at root on fs
func NewStore(fs afero.Fs, root string, logger *zap.Logger) *Store {
	return &Store{
		fs:     fs,
		root:   root,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureDirs creates the uploads and images directories
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.root, s.dir(KindFile), s.dir(KindImage)} {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Save writes r under a timestamp name keeping the extension of
// originalName, and returns the public path of the stored file.
func (s *Store) Save(kind Kind, originalName string, r io.Reader) (string, error) {
	name := strconv.FormatInt(s.now().UnixMilli(), 10) + filepath.Ext(filepath.Base(originalName))
	target := filepath.Join(s.dir(kind), name)

	f, err := s.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload: %w", err)
	}

	s.logger.Debug("upload stored",
		zap.String("kind", string(kind)),
		zap.String("path", target))

	return path.Join("/", s.urlDir(kind), name), nil
}

// Clear removes every uploaded file and every image except DefaultImage.
// It returns the number of files removed.
func (s *Store) Clear() (int, error) {
	cleared := 0
	for _, kind := range []Kind{KindFile, KindImage} {
		n, err := s.clearDir(kind)
		cleared += n
		if err != nil {
			return cleared, err
		}
	}
	return cleared, nil
}

// FileSystem serves the directory of kind
func (s *Store) FileSystem(kind Kind) http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(s.dir(kind))
}

// Root serves the public root directory
func (s *Store) Root() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(s.root)
}

func (s *Store) clearDir(kind Kind) (int, error) {
	dir := s.dir(kind)
	exists, err := afero.DirExists(s.fs, dir)
	if err != nil || !exists {
		return 0, err
	}

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		if kind == KindImage && entry.Name() == DefaultImage {
			continue
		}
		if err := s.fs.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (s *Store) dir(kind Kind) string {
	return filepath.Join(s.root, s.urlDir(kind))
}

func (s *Store) urlDir(kind Kind) string {
	if kind == KindImage {
		return imagesDir
	}
	return uploadsDir
}
