// Package writer persists a formatted workbook without ever exposing a
// partially-written file. In-place runs back up the original first and
// replace it via a temporary file in the same directory; explicit outputs
// get the same temp-then-rename discipline and never touch the input.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Writer persists workbooks atomically.
type Writer struct {
	logger *logrus.Logger
}

// New returns a Writer.
func New(logger *logrus.Logger) *Writer {
	return &Writer{logger: logger}
}

// Backup copies path to path.bak, overwriting any previous backup, and
// returns the backup path. The copy is byte-for-byte and preserves the file
// mode. Re-running after a failed run simply refreshes the backup, so the
// operation is idempotent.
func (w *Writer) Backup(path string) (string, error) {
	bakPath := path + ".bak"

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for backup: %w", path, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			w.logger.WithError(err).Warn("Failed to close backup source")
		}
	}()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	dst, err := os.OpenFile(bakPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("failed to create backup %s: %w", bakPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(bakPath)
		return "", fmt.Errorf("failed to write backup %s: %w", bakPath, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to finalise backup %s: %w", bakPath, err)
	}

	w.logger.WithField("backup", bakPath).Info("Backup written")
	return bakPath, nil
}

// SaveInPlace writes the workbook over its own source file. The workbook is
// saved to a temporary file in the target's directory and renamed into
// place while holding an advisory lock on the target; if another process
// holds the lock the save fails and the original is untouched. On failure
// the temporary file is discarded.
func (w *Writer) SaveInPlace(f *excelize.File, path string) error {
	return w.saveAtomic(f, path)
}

// SaveTo writes the workbook to outPath with the same temp-then-rename
// discipline. The input file is never mutated.
func (w *Writer) SaveTo(f *excelize.File, outPath string) error {
	return w.saveAtomic(f, outPath)
}

func (w *Writer) saveAtomic(f *excelize.File, target string) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".xlsxfmt-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file %s: %w", tmpPath, err)
	}

	if err := f.SaveAs(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write workbook to %s: %w", tmpPath, err)
	}

	lock := flock.New(target + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to lock %s: %w", target, err)
	}
	if !locked {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%s is locked by another process", target)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.WithError(err).Warn("Failed to release file lock")
		}
		_ = os.Remove(lock.Path())
	}()

	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}

	w.logger.WithField("path", target).Info("Workbook written")
	return nil
}

// DefaultOutputPath derives the output path used when the caller supplies
// neither --output nor --inplace: the input name with a _formatted suffix.
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return stem + "_formatted" + ext
}
