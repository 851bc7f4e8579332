package connection

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps workspace file contents in a directory on disk.
type LocalStorage struct {
	BaseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &LocalStorage{BaseDir: baseDir}, nil
}

// SaveFile writes reader to BaseDir/filename and returns the path and byte count.
func (s *LocalStorage) SaveFile(reader io.Reader, filename string) (string, int64, error) {
	path := filepath.Join(s.BaseDir, filepath.Base(filename))

	out, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	defer out.Close()

	written, err := io.Copy(out, reader)
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return path, written, nil
}

func (s *LocalStorage) GetFile(path string) (io.ReadCloser, error) {
	if err := s.contains(path); err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *LocalStorage) DeleteFile(path string) error {
	if err := s.contains(path); err != nil {
		return err
	}
	return os.Remove(path)
}

func (s *LocalStorage) contains(path string) error {
	rel, err := filepath.Rel(s.BaseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return os.ErrNotExist
	}
	return nil
}
