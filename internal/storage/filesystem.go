package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileSystem provides an abstraction over file operations using afero
type FileSystem struct {
	fs      afero.Fs
	baseDir string
}

// NewFileSystem creates a FileSystem rooted at baseDir on the OS filesystem.
func NewFileSystem(baseDir string) (*FileSystem, error) {
	if baseDir == "" {
		baseDir = "data"
	}

	fs := afero.NewOsFs()
	if err := fs.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FileSystem{
		fs:      fs,
		baseDir: baseDir,
	}, nil
}

// NewMemoryFileSystem creates a FileSystem backed by memory (useful for testing)
func NewMemoryFileSystem() *FileSystem {
	return &FileSystem{
		fs:      afero.NewMemMapFs(),
		baseDir: "data",
	}
}

// GetDataDir returns the base data directory path
func (f *FileSystem) GetDataDir() string {
	return f.baseDir
}

// WriteFile writes data to a file
func (f *FileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return afero.WriteFile(f.fs, path, data, perm)
}

// WriteFileAtomic writes data to a temp file in the same directory and renames
// it over path, so readers never see a half-written file.
func (f *FileSystem) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := afero.TempFile(f.fs, dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer f.fs.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := f.fs.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := f.fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	return nil
}

// ReadFile reads data from a file
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(f.fs, path)
}



// Remove removes a file
func (f *FileSystem) Remove(path string) error {
	return f.fs.Remove(path)
}

// Exists checks if a file or directory exists
func (f *FileSystem) Exists(path string) (bool, error) {
	return afero.Exists(f.fs, path)
}




// GetFs returns the underlying afero.Fs for advanced operations
func (f *FileSystem) GetFs() afero.Fs {
	return f.fs
}
