package documents

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SignatureDir is the namespace for signature image assets, relative to the
// upload root. Signature.Data for image/draw kinds stores paths under it.
const SignatureDir = "signatures"

// FileStore is the artifact port: the original PDF, signature image assets
// and the signed output all live under one upload root on local disk.
type FileStore interface {
	// Save writes data under the given relative path and returns the
	// absolute path.
	Save(relPath string, data []byte) (string, error)
	ReadFile(path string) ([]byte, error)
	Remove(path string) error
	Exists(path string) bool
	// Resolve maps a relative asset path to an absolute one.
	Resolve(relPath string) string
}

type diskStore struct {
	root string
}

// NewDiskStore creates a FileStore rooted at dir, creating the document and
// signature directories if needed.
func NewDiskStore(dir string) (FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, SignatureDir), 0o755); err != nil {
		return nil, fmt.Errorf("create upload directories: %w", err)
	}
	return &diskStore{root: dir}, nil
}

func (s *diskStore) Save(relPath string, data []byte) (string, error) {
	abs := s.Resolve(relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", relPath, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", relPath, err)
	}
	return abs, nil
}

func (s *diskStore) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(s.Resolve(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (s *diskStore) Remove(path string) error {
	return os.Remove(s.Resolve(path))
}

func (s *diskStore) Exists(path string) bool {
	_, err := os.Stat(s.Resolve(path))
	return err == nil
}

// Resolve leaves absolute paths alone so documents created before a root
// change still resolve.
func (s *diskStore) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, path)
}

// StoredName builds the on-disk name for an upload: a fresh id plus the
// original extension.
func StoredName(originalName string) string {
	return uuid.NewString() + filepath.Ext(originalName)
}
