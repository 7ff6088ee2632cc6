// Package files stores uploaded document files on disk.
package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrTooLarge is returned by Save when the upload exceeds the limit.
var ErrTooLarge = errors.New("files: upload too large")

// ErrInvalidName is returned for stored names that escape the directory.
var ErrInvalidName = errors.New("files: invalid file name")

const (
	maxStem = 60
	// maxNameAttempts bounds the suffixes tried when stored names collide.
	maxNameAttempts = 100
)

// SecureFilename reduces a client supplied file name to a safe ASCII name:
// directories are dropped, accents folded, whitespace runs become "_" and
// anything outside [A-Za-z0-9._-] is removed.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	space := false
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_'):
		default:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte('_')
		}
		space = false
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "._")
}

// StoredName derives the on-disk name for an upload: the sanitized stem cut
// to 60 characters, the upload's unix time and the lower-cased extension.
func StoredName(original string, now time.Time) string {
	return storedName(original, now, 0)
}

// storedName appends "_<attempt>" after the timestamp for attempt > 0.
func storedName(original string, now time.Time, attempt int) string {
	safe := SecureFilename(original)
	ext := filepath.Ext(safe)
	stem := strings.TrimSuffix(safe, ext)
	if len(stem) > maxStem {
		stem = stem[:maxStem]
	}
	if stem == "" {
		stem = "document"
	}
	if attempt > 0 {
		return fmt.Sprintf("%s_%d_%d%s", stem, now.Unix(), attempt, strings.ToLower(ext))
	}
	return fmt.Sprintf("%s_%d%s", stem, now.Unix(), strings.ToLower(ext))
}

// Dir is a directory of stored uploads.
type Dir struct {
	root string
}

// NewDir creates root when missing.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Dir{root: root}, nil
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Path resolves a stored name inside the directory.
func (d *Dir) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	return filepath.Join(d.root, name), nil
}

// Save copies r into name and returns the number of bytes written. When
// limit is positive and r holds more than limit bytes, the partial file is
// removed and ErrTooLarge returned.
func (d *Dir) Save(name string, r io.Reader, limit int64) (int64, error) {
	path, err := d.Path(name)
	if err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		os.Remove(path)
		return 0, fmt.Errorf("write %s: %w", name, copyErr)
	case closeErr != nil:
		os.Remove(path)
		return 0, fmt.Errorf("close %s: %w", name, closeErr)
	case limit > 0 && n > limit:
		os.Remove(path)
		return 0, ErrTooLarge
	}
	return n, nil
}

// SaveUpload stores r under a fresh name derived from original and now. When
// another upload already took StoredName(original, now), a numeric suffix is
// added until a free name is found. It returns the stored name and size.
func (d *Dir) SaveUpload(original string, now time.Time, r io.Reader, limit int64) (string, int64, error) {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := storedName(original, now, attempt)
		n, err := d.Save(name, r, limit)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, err
		}
		return name, n, nil
	}
	return "", 0, fmt.Errorf("no free name for %q after %d attempts", original, maxNameAttempts)
}

// Remove deletes a stored file, ignoring files that are already gone.
func (d *Dir) Remove(name string) error {
	path, err := d.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
