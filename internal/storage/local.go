// Package storage stores uploaded identity documents on the local disk and
// maps them to served URLs.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the hard size limit for identity documents.
const MaxUploadBytes = 5 << 20 // 5MB

// allowedTypes maps accepted MIME types to the stored file extension.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// ErrTooLarge is returned when the upload exceeds MaxUploadBytes.
var ErrTooLarge = errors.New("file too large")

// ErrBadType is returned when the MIME type is not jpeg, png or pdf.
var ErrBadType = errors.New("unsupported file type")

// Local writes uploads under Dir and returns URLs under BaseURL.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) *Local {
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Save validates size and type, writes the content under a random name and
// returns the public URL. The size must be the declared length; reads past
// the limit are treated as oversize regardless of the declared value.
func (l *Local) Save(mimeType string, size int64, r io.Reader) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(strings.TrimSpace(mimeType))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrBadType, mimeType)
	}
	if size > MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", err
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	name := hex.EncodeToString(buf) + ext
	fpath := filepath.Join(l.Dir, name)

	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Copy with one byte of headroom so a lying Content-Length is caught.
	n, err := io.Copy(f, io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		_ = os.Remove(fpath)
		return "", err
	}
	if n > MaxUploadBytes {
		_ = os.Remove(fpath)
		return "", fmt.Errorf("%w: body exceeds %d bytes", ErrTooLarge, int64(MaxUploadBytes))
	}
	return l.BaseURL + "/" + name, nil
}
