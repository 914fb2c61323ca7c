// Package upload validates and stores product images on local disk.
//
// Validation is a pure decision over the declared MIME type and size and runs
// before anything is written, so a rejected file never reaches the content
// directory.
package upload

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FieldName is the multipart field carrying the product image.
const FieldName = "productImage"

// MaxSize is the largest accepted image, 5 MiB.
const MaxSize int64 = 5 << 20

var (
	// ErrUnsupportedType rejects anything but JPEG and PNG.
	ErrUnsupportedType = errors.New("only JPEG, JPG and PNG images are accepted")
	// ErrTooLarge rejects files above MaxSize.
	ErrTooLarge = errors.New("image exceeds the 5 MB limit")
	// ErrUnexpectedFile rejects extra files or files under another field.
	ErrUnexpectedFile = errors.New("exactly one image is accepted under field " + FieldName)
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// Decide accepts or rejects a file from its declared MIME type and size.
func Decide(mimeType string, size int64) error {
	if !allowedTypes[strings.ToLower(strings.TrimSpace(mimeType))] {
		return ErrUnsupportedType
	}
	if size > MaxSize {
		return ErrTooLarge
	}
	return nil
}

// Pick returns the single image of a multipart form, or nil when the form
// carries no file at all. Files under any other field, or more than one
// image, are rejected.
func Pick(form *multipart.Form) (*multipart.FileHeader, error) {
	if form == nil || len(form.File) == 0 {
		return nil, nil
	}
	for field, files := range form.File {
		if field != FieldName || len(files) != 1 {
			return nil, ErrUnexpectedFile
		}
	}
	return form.File[FieldName][0], nil
}

// Saved describes a file written by Store.Save.
type Saved struct {
	Ref  string // public reference, e.g. /uploads/productImage-1700000000000-42.png
	Path string // path on disk
}

// Store writes images under Dir and serves them under the /uploads/ prefix.
type Store struct {
	Dir string
	now func() time.Time
}

// NewStore creates dir when missing.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{Dir: dir, now: time.Now}, nil
}

// fileName builds <field>-<epoch-ms>-<random-int><ext>.
func (s *Store) fileName(original string) string {
	return fmt.Sprintf("%s-%d-%d%s",
		FieldName, s.now().UnixMilli(), rand.Int64N(1_000_000_000), filepath.Ext(original))
}

// Save validates fh and copies it to the content directory.
func (s *Store) Save(fh *multipart.FileHeader) (Saved, error) {
	if err := Decide(fh.Header.Get("Content-Type"), fh.Size); err != nil {
		return Saved{}, err
	}
	src, err := fh.Open()
	if err != nil {
		return Saved{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := s.fileName(fh.Filename)
	path := filepath.Join(s.Dir, name)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Saved{}, fmt.Errorf("create upload: %w", err)
	}
	// Guard against a lying Size header.
	n, err := io.Copy(dst, io.LimitReader(src, MaxSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return Saved{}, err
		}
		return Saved{}, fmt.Errorf("write upload: %w", err)
	}
	return Saved{Ref: "/uploads/" + name, Path: path}, nil
}

// PathFor maps a /uploads/ reference back to its file under Dir. It refuses
// references that would escape the directory.
func (s *Store) PathFor(ref string) (string, bool) {
	name, ok := strings.CutPrefix(ref, "/uploads/")
	if !ok || name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return "", false
	}
	return filepath.Join(s.Dir, name), true
}

// Remove deletes the file behind ref. A reference outside the store is a no-op.
func (s *Store) Remove(ref string) error {
	path, ok := s.PathFor(ref)
	if !ok {
		return nil
	}
	return os.Remove(path)
}
