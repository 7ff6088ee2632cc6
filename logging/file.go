package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileWriter appends log lines to dir/filename, rotating when the file would
// exceed maxBytes or is older than a day. Rotated files are gzipped and only
// the newest maxFiles are kept.
type FileWriter struct {
	mu          sync.Mutex
	dir         string
	filename    string
	maxBytes    int64
	maxFiles    int
	current     *os.File
	currentSize int64
	openedAt    time.Time
	now         func() time.Time
	wg          sync.WaitGroup
}

// NewFileWriter creates dir if needed and opens the active log file.
func NewFileWriter(dir, filename string, maxSizeMB, maxFiles int) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxFiles <= 0 {
		maxFiles = 5
	}
	fw := &FileWriter{
		dir:      dir,
		filename: filename,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
		maxFiles: maxFiles,
		now:      time.Now,
	}
	if err := fw.open(); err != nil {
		return nil, err
	}
	return fw, nil
}

// Path returns the active log file path.
func (fw *FileWriter) Path() string {
	return filepath.Join(fw.dir, fw.filename)
}

func (fw *FileWriter) open() error {
	f, err := os.OpenFile(fw.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	fw.current = f
	fw.currentSize = info.Size()
	fw.openedAt = fw.now()
	return nil
}

func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.needsRotation(int64(len(p))) {
		if err := fw.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := fw.current.Write(p)
	fw.currentSize += int64(n)
	return n, err
}

func (fw *FileWriter) needsRotation(incoming int64) bool {
	if fw.currentSize == 0 {
		return false
	}
	return fw.currentSize+incoming > fw.maxBytes || fw.now().Sub(fw.openedAt) > 24*time.Hour
}

func (fw *FileWriter) rotate() error {
	if err := fw.current.Close(); err != nil {
		return fmt.Errorf("close current file: %w", err)
	}
	rotated := fmt.Sprintf("%s.%s", fw.Path(), fw.now().Format("20060102-150405.000"))
	if err := os.Rename(fw.Path(), rotated); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}

	fw.wg.Add(1)
	go func() {
		defer fw.wg.Done()
		compress(rotated)
		fw.prune()
	}()

	return fw.open()
}

func compress(path string) {
	in, err := os.Open(path)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return
	}
	gz := gzip.NewWriter(out)
	_, copyErr := io.Copy(gz, in)
	closeErr := gz.Close()
	out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path + ".gz")
		return
	}
	os.Remove(path)
}

func (fw *FileWriter) prune() {
	matches, err := filepath.Glob(fw.Path() + ".*.gz")
	if err != nil || len(matches) <= fw.maxFiles {
		return
	}
	// Names embed the rotation time, so lexical order is chronological.
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-fw.maxFiles] {
		os.Remove(path)
	}
}

// Close waits for pending compression and closes the active file.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.wg.Wait()
	if fw.current != nil {
		return fw.current.Close()
	}
	return nil
}
