// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage saves uploaded images to local disk. Files are
// validated by sniffed content type and size before anything touches
// the filesystem, then stored under a random name so uploads can never
// collide or overwrite each other.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the size cap.
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

	// ErrUnsupportedType is returned for anything that is not a JPEG,
	// PNG, or GIF image.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// extensions maps the allowed sniffed content types to file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Local stores uploads on the local filesystem.
type Local struct {
	dir     string
	maxSize int64
}

// NewLocal creates a local upload store rooted at dir, creating the
// directory if needed.
func NewLocal(dir string, maxSize int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, maxSize: maxSize}, nil
}

// Save validates and stores an uploaded file, returning the stored
// filename relative to the upload directory. Validation happens before
// any write: a rejected upload leaves no file behind.
func (l *Local) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > l.maxSize {
		return "", ErrFileTooLarge
	}

	// Sniff the real content type; the client-supplied header is not
	// trusted.
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(buf[:n])

	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(l.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// Copy with a hard limit as a second line of defense against a
	// mismatched Size header.
	written, err := io.Copy(dst, io.LimitReader(file, l.maxSize+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > l.maxSize {
		os.Remove(dst.Name())
		return "", ErrFileTooLarge
	}

	return name, nil
}

// Remove deletes a stored file by its relative name. Missing files are
// not an error.
func (l *Local) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Dir returns the root upload directory, used to mount the static file
// server.
func (l *Local) Dir() string {
	return l.dir
}
