package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempPattern matches the temporary files WriteAtomic creates. A crash can
// leave one behind; directories written this way should treat matches as
// garbage.
const TempPattern = ".tmp-*"

// WriteAtomic writes dst by streaming write into a temporary file in the same
// directory and renaming it into place. Readers see either the old content
// or the complete new content. The temporary file is removed on failure.
func WriteAtomic(dst string, mode os.FileMode, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), TempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// WriteFileAtomic is WriteAtomic for an in-memory payload.
func WriteFileAtomic(dst string, data []byte, mode os.FileMode) error {
	return WriteAtomic(dst, mode, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
