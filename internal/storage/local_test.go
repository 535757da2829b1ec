package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAcceptsAllowedTypes(t *testing.T) {
	l := NewLocal(t.TempDir(), "/uploads/")

	for mime, ext := range map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"application/pdf": ".pdf",
	} {
		url, err := l.Save(mime, 4, bytes.NewReader([]byte("data")))
		if err != nil {
			t.Fatalf("Save(%s): %v", mime, err)
		}
		if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ext) {
			t.Errorf("url = %q, want /uploads/...%s", url, ext)
		}
		name := strings.TrimPrefix(url, "/uploads/")
		data, err := os.ReadFile(filepath.Join(l.Dir, name))
		if err != nil {
			t.Fatalf("reading stored file: %v", err)
		}
		if string(data) != "data" {
			t.Errorf("stored content = %q, want %q", data, "data")
		}
	}
}

func TestSaveRejectsBadType(t *testing.T) {
	l := NewLocal(t.TempDir(), "/uploads")
	if _, err := l.Save("text/html", 4, bytes.NewReader([]byte("<p>"))); !errors.Is(err, ErrBadType) {
		t.Errorf("got %v, want ErrBadType", err)
	}
}

func TestSaveRejectsOversizeDeclaration(t *testing.T) {
	l := NewLocal(t.TempDir(), "/uploads")
	if _, err := l.Save("image/png", MaxUploadBytes+1, bytes.NewReader(nil)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("got %v, want ErrTooLarge", err)
	}
}

func TestSaveRejectsLyingContentLength(t *testing.T) {
	l := NewLocal(t.TempDir(), "/uploads")

	// Declared size fits but the body does not.
	body := bytes.NewReader(make([]byte, MaxUploadBytes+100))
	if _, err := l.Save("image/png", 100, body); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("got %v, want ErrTooLarge", err)
	}

	// The partial file must not survive.
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir has %d leftover files, want 0", len(entries))
	}
}
