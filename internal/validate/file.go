// Package validate holds the upload rules shared by the portal client and the API server.
package validate

import (
	"errors"
	"slices"
	"strings"
)

// MaxFileSize is the largest accepted upload, 10 MiB.
const MaxFileSize int64 = 10 * 1024 * 1024

var AllowedMimeTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
}

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, use PDF, JPEG or PNG")
	ErrFileTooLarge      = errors.New("file exceeds 10 MiB")
	ErrInvalidCategory   = errors.New("category is missing or not available")
)

// MimeType accepts only the allow-listed types. Parameters such as "; charset=" are ignored.
func MimeType(mimeType string) error {
	base, _, _ := strings.Cut(mimeType, ";")
	if !slices.Contains(AllowedMimeTypes, strings.ToLower(strings.TrimSpace(base))) {
		return ErrUnsupportedFormat
	}
	return nil
}

func Size(size int64) error {
	if size < 0 || size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// Category requires a non-empty name that is present in allowed.
func Category(category string, allowed []string) error {
	if strings.TrimSpace(category) == "" || !slices.Contains(allowed, category) {
		return ErrInvalidCategory
	}
	return nil
}

// Upload runs the rules in order: format, size, category. The first failure wins.
func Upload(mimeType string, size int64, category string, allowed []string) error {
	if err := MimeType(mimeType); err != nil {
		return err
	}
	if err := Size(size); err != nil {
		return err
	}
	return Category(category, allowed)
}
