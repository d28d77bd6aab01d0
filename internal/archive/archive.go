// Package archive exports and imports the persistent slots as a tar.gz archive.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"notekeeper/internal/storage"
)

const (
	slotDir = "slots"
	// BackupDir holds safety archives under the data dir.
	BackupDir = "backups"
	// maxSlotSize bounds a single archived slot.
	maxSlotSize = 64 << 20
)

// ErrInvalidArchive is returned when an archive cannot be imported.
var ErrInvalidArchive = errors.New("invalid archive")

// Archiver moves slot contents in and out of tar.gz archives.
type Archiver struct {
	slots  storage.Slots
	fs     *storage.FileSystem
	logger *zap.Logger
	now    func() time.Time
}

// New creates an Archiver. fs receives the safety archive written before an
// import.
func New(slots storage.Slots, fs *storage.FileSystem, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.L()
	}
	return &Archiver{slots: slots, fs: fs, logger: logger, now: time.Now}
}

// FileName is the suggested name of an archive taken at t.
func FileName(prefix string, t time.Time) string {
	return fmt.Sprintf("notekeeper_%s_%s.tar.gz", prefix, t.Format("20060102_150405"))
}

// Export writes every stored slot into a tar.gz archive.
func (a *Archiver) Export() (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	gzWriter := gzip.NewWriter(buf)
	tarWriter := tar.NewWriter(gzWriter)

	modTime := a.now()
	count := 0
	for _, key := range storage.AllSlots {
		value, ok, err := a.slots.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
		}
		if !ok {
			continue
		}

		header := &tar.Header{
			Name:     path.Join(slotDir, key),
			Mode:     0600,
			Size:     int64(len(value)),
			ModTime:  modTime,
			Typeflag: tar.TypeReg,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("failed to write tar header: %w", err)
		}
		if _, err := tarWriter.Write(value); err != nil {
			return nil, fmt.Errorf("failed to write slot data: %w", err)
		}
		count++
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}
	if err := gzWriter.Close(); err != nil {
		return nil, err
	}

	a.logger.Info("Archive exported", zap.Int("slots", count), zap.Int("bytes", buf.Len()))
	return buf, nil
}

// Import restores the slots contained in data. The whole archive is
// validated before anything is written, and the current slots are first
// saved to a safety archive under BackupDir. Slots missing from the archive
// are left as they are. It returns the path of the safety archive.
func (a *Archiver) Import(data []byte) (string, error) {
	entries, err := read(data)
	if err != nil {
		return "", err
	}

	current, err := a.Export()
	if err != nil {
		return "", fmt.Errorf("failed to create safety archive: %w", err)
	}
	safety := filepath.Join(a.fs.GetDataDir(), BackupDir, FileName("pre_import", a.now()))
	if err := a.fs.WriteFileAtomic(safety, current.Bytes(), 0600); err != nil {
		return "", fmt.Errorf("failed to save safety archive: %w", err)
	}

	for _, key := range storage.AllSlots {
		value, ok := entries[key]
		if !ok {
			continue
		}
		if err := a.slots.Put(key, value); err != nil {
			return safety, fmt.Errorf("failed to restore slot %s: %w", key, err)
		}
	}

	a.logger.Info("Archive imported",
		zap.Int("slots", len(entries)),
		zap.String("safety_archive", safety),
	)
	return safety, nil
}

// read extracts the slot entries of an archive. Directories are skipped;
// anything else outside slots/<key> is rejected.
func read(data []byte) (map[string][]byte, error) {
	gzReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer gzReader.Close()

	known := make(map[string]bool, len(storage.AllSlots))
	for _, key := range storage.AllSlots {
		known[key] = true
	}

	entries := make(map[string][]byte)
	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read tar header: %v", ErrInvalidArchive, err)
		}

		name := path.Clean(strings.TrimPrefix(header.Name, "./"))
		switch header.Typeflag {
		case tar.TypeDir:
			continue
		case tar.TypeReg:
		default:
			return nil, fmt.Errorf("%w: unsupported entry %q", ErrInvalidArchive, header.Name)
		}

		dir, key := path.Split(name)
		if dir != slotDir+"/" || !storage.ValidKey(key) {
			return nil, fmt.Errorf("%w: unexpected entry %q", ErrInvalidArchive, header.Name)
		}
		if !known[key] {
			continue
		}
		if header.Size > maxSlotSize {
			return nil, fmt.Errorf("%w: entry %q too large", ErrInvalidArchive, header.Name)
		}

		value, err := io.ReadAll(io.LimitReader(tarReader, maxSlotSize))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %q: %v", ErrInvalidArchive, header.Name, err)
		}
		entries[key] = value
	}
	return entries, nil
}
