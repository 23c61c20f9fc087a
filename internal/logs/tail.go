package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	maxLineBytes     = 1024 * 1024
	defaultPollEvery   = 250 * time.Millisecond
)

// Position identifies a read position in a specific file.
type Position struct {
	// Target is the resolved file the offset belongs to.
	Target string
	Offset int64
}

// Last returns up to limit trailing lines of the file at path and the
// position just past them. A missing file yields no lines and a zero position.
func Last(path string, limit int) ([]string, Position, error) {
	target := resolve(path)
	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Position{Target: target}, nil
		}
		return nil, Position{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, Position{}, fmt.Errorf("seek log file: %w", err)
		}
		return nil, Position{Target: target, Offset: end}, nil
	}

	ring := make([]string, limit)
	count, idx := 0, 0
	offset, err := scanLines(file, func(line string) {
		ring[idx] = line
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return nil, Position{}, err
	}

	lines := make([]string, count)
	if count == limit {
		for i := range count {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, Position{Target: target, Offset: offset}, nil
}

// ReadFrom returns the complete lines appended after pos. When path now
// resolves to a different file, or the file shrank, reading restarts at the
// top of the current file.
func ReadFrom(path string, pos Position) ([]string, Position, error) {
	target := resolve(path)
	if target != pos.Target {
		pos = Position{Target: target}
	}
	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Position{Target: target}, nil
		}
		return nil, pos, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, pos, fmt.Errorf("stat log file: %w", err)
	}
	if pos.Offset > info.Size() {
		pos.Offset = 0
	}
	if _, err := file.Seek(pos.Offset, io.SeekStart); err != nil {
		return nil, pos, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	consumed, err := scanLines(file, func(line string) { lines = append(lines, line) })
	if err != nil {
		return nil, pos, err
	}
	return lines, Position{Target: target, Offset: pos.Offset + consumed}, nil
}

// Follow polls path from pos and hands every new line to emit until ctx is
// cancelled. Cancellation is not an error.
func Follow(ctx context.Context, path string, pos Position, every time.Duration, emit func(string)) error {
	if every <= 0 {
		every = defaultPollEvery
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		lines, next, err := ReadFrom(path, pos)
		if err != nil {
			return err
		}
		for _, line := range lines {
			emit(line)
		}
		pos = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// scanLines feeds each newline-terminated line to fn and returns the number
// of bytes consumed. A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return consumed, nil
		}
		if err != nil {
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		text := line[:len(line)-1]
		if n := len(text); n > 0 && text[n-1] == '\r' {
			text = text[:n-1]
		}
		if len(text) > maxLineBytes {
			text = text[:maxLineBytes]
		}
		fn(text)
	}
}

// resolve follows the current-run symlink so positions stay tied to one run file.
func resolve(path string) string {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return target
}
