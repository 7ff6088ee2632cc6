package files

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSecureFilename(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{in: "report.pdf", out: "report.pdf"},
		{in: "My Report 2024.PDF", out: "My_Report_2024.PDF"},
		{in: "../../etc/passwd", out: "passwd"},
		{in: `C:\Users\ana\relatório.pdf`, out: "relatorio.pdf"},
		{in: "  .hidden.png ", out: "hidden.png"},
		{in: "çãé€.jpg", out: "cae.jpg"},
		{in: "???", out: ""},
	}
	for _, tc := range cases {
		if got := SecureFilename(tc.in); got != tc.out {
			t.Fatalf("%q: expected %q got %q", tc.in, tc.out, got)
		}
	}
}

func TestStoredName(t *testing.T) {
	now := time.Unix(1709294400, 0)
	if got := StoredName("Invoice.PNG", now); got != "Invoice_1709294400.png" {
		t.Fatalf("unexpected stored name %q", got)
	}
	if got := StoredName("???.pdf", now); got != "pdf_1709294400" {
		// "???.pdf" sanitizes to "pdf" after trimming the leading dot.
		t.Fatalf("unexpected stored name %q", got)
	}
	if got := StoredName("", now); got != "document_1709294400" {
		t.Fatalf("unexpected fallback name %q", got)
	}
	long := strings.Repeat("a", 80) + ".jpg"
	if got := StoredName(long, now); got != strings.Repeat("a", 60)+"_1709294400.jpg" {
		t.Fatalf("expected stem cut to 60 chars, got %q", got)
	}
}

func TestDirSaveAndLimit(t *testing.T) {
	dir, err := NewDir(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	n, err := dir.Save("a.pdf", strings.NewReader("hello"), 5)
	if err != nil || n != 5 {
		t.Fatalf("expected 5 bytes saved, got %d (%v)", n, err)
	}
	path, _ := dir.Path("a.pdf")
	if data, err := os.ReadFile(path); err != nil || string(data) != "hello" {
		t.Fatalf("unexpected file content %q (%v)", data, err)
	}

	if _, err := dir.Save("b.pdf", strings.NewReader("toolong"), 5); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir.Root(), "b.pdf")); !os.IsNotExist(err) {
		t.Fatalf("expected oversized file to be removed")
	}

	if _, err := dir.Save("a.pdf", strings.NewReader("again"), 0); err == nil {
		t.Fatalf("expected existing file not to be overwritten")
	}
	if err := dir.Remove("a.pdf"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := dir.Remove("a.pdf"); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
}

func TestDirPathRejectsTraversal(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	for _, name := range []string{"", "..", "../x", "a/b", "."} {
		if _, err := dir.Path(name); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("%q: expected ErrInvalidName, got %v", name, err)
		}
	}
}

func TestSaveUploadAddsSuffixOnCollision(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	now := time.Unix(1709294400, 0)
	want := []string{"report_1709294400.pdf", "report_1709294400_1.pdf", "report_1709294400_2.pdf"}
	for i, expected := range want {
		name, n, err := dir.SaveUpload("report.PDF", now, strings.NewReader("copy"), 0)
		if err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
		if name != expected || n != 4 {
			t.Fatalf("upload %d: expected %q (4 bytes), got %q (%d)", i, expected, name, n)
		}
	}
	entries, err := os.ReadDir(dir.Root())
	if err != nil || len(entries) != len(want) {
		t.Fatalf("expected %d files, got %d (%v)", len(want), len(entries), err)
	}
}

func TestSaveUploadTooLargeLeavesNothing(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	if _, _, err := dir.SaveUpload("big.pdf", time.Unix(1, 0), strings.NewReader("0123456789"), 4); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	entries, _ := os.ReadDir(dir.Root())
	if len(entries) != 0 {
		t.Fatalf("expected no files, got %d", len(entries))
	}
}
