package domain

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"slices"
	"strings"
)

// MaxUploadSize is the largest accepted upload in bytes (10 MiB).
const MaxUploadSize = 10 * 1024 * 1024

// UnknownContentType is reported when the client declares no content type.
const UnknownContentType = "unknown"

var allowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

// AllowedExtensions returns the filename extensions accepted when the declared
// content type is not an image type.
func AllowedExtensions() []string {
	return slices.Clone(allowedExtensions)
}

// Sentinels for each validation rule, in evaluation order.
var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrReadFailure     = errors.New("failed to read uploaded file")
	ErrEmptyFile       = errors.New("empty file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFileType = errors.New("invalid file type")
)

// ValidationError is a client-caused rejection of an upload.
type ValidationError struct {
	Kind   error // one of the Err* sentinels
	Detail string
	Cause  error
}

// NewValidationError builds a ValidationError for the given sentinel.
func NewValidationError(kind error, detail string, cause error) *ValidationError {
	return &ValidationError{Kind: kind, Detail: detail, Cause: cause}
}

func (e *ValidationError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Upload is a validated file received by the prediction endpoint.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the content length in bytes.
func (u Upload) Size() int { return len(u.Data) }

// FileInfo describes the upload for the prediction response.
func (u Upload) FileInfo() FileInfo {
	ct := u.ContentType
	if ct == "" {
		ct = UnknownContentType
	}
	return FileInfo{
		Filename:    u.Filename,
		ContentType: ct,
		SizeBytes:   u.Size(),
		SizeKB:      math.Round(float64(u.Size())/1024*100) / 100,
	}
}

// ReadUpload reads r in full and validates the result. A nil reader or an
// empty filename means no file was sent.
func ReadUpload(filename, contentType string, r io.Reader) (Upload, error) {
	if r == nil || filename == "" {
		return Upload{}, NewValidationError(ErrNoFile, "", nil)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Upload{}, NewValidationError(ErrReadFailure, err.Error(), err)
	}

	u := Upload{Filename: filename, ContentType: contentType, Data: data}
	if err := ValidateUpload(u); err != nil {
		return Upload{}, err
	}
	return u, nil
}

// ValidateUpload applies the size and type rules to already-read content.
func ValidateUpload(u Upload) error {
	size := u.Size()
	if size == 0 {
		return NewValidationError(ErrEmptyFile, "please select a valid image file", nil)
	}
	if size > MaxUploadSize {
		return FileTooLarge(int64(size))
	}
	if !isImage(u.ContentType, u.Filename) {
		declared := u.ContentType
		if declared == "" {
			declared = UnknownContentType
		}
		return NewValidationError(ErrInvalidFileType,
			fmt.Sprintf("%s, please upload a valid image file (JPG, PNG, GIF, BMP, WEBP)", declared), nil)
	}
	return nil
}

// FileTooLarge builds the size rejection. A non-positive size means the exact
// size is unknown because reading stopped at a transport limit.
func FileTooLarge(size int64) *ValidationError {
	if size <= 0 {
		return NewValidationError(ErrFileTooLarge, "maximum size is 10MB", nil)
	}
	mb := fmt.Sprintf("%.1fMB", float64(size)/1024/1024)
	if mb == "10.0MB" {
		// Just over the limit; one decimal would read as exactly the maximum.
		mb = fmt.Sprintf("%d bytes", size)
	}
	return NewValidationError(ErrFileTooLarge, mb+", maximum size is 10MB", nil)
}

func isImage(contentType, filename string) bool {
	if strings.HasPrefix(contentType, "image/") {
		return true
	}
	return slices.Contains(allowedExtensions, strings.ToLower(filepath.Ext(filename)))
}
