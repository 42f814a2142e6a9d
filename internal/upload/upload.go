// Package upload decides whether a user-supplied file may be sent to the PDF service.
package upload

import (
	"bytes"
	"fmt"
	"io"

	"pdf-quiz/internal/domain"

	"github.com/gabriel-vasile/mimetype"
)

const PDFMimeType = "application/pdf"

// File is an accepted upload, ready to be streamed to the backend.
type File struct {
	Name     string
	Size     int64
	MimeType string
	Content  io.Reader
}

// Inspect sniffs the leading bytes of r and accepts only PDF content. The returned
// File replays the sniffed bytes, so r must not be read again by the caller.
func Inspect(name string, size int64, maxSize int64, r io.Reader) (*File, error) {
	if maxSize > 0 && size > maxSize {
		return nil, domain.NewFileTooLargeError(size, maxSize)
	}

	header := make([]byte, 3072)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, domain.NewInternalError("failed to read upload", err)
	}
	header = header[:n]

	mtype := mimetype.Detect(header)
	if !mtype.Is(PDFMimeType) {
		return nil, domain.NewUnsupportedMediaError(mtype.String())
	}

	return &File{
		Name:     name,
		Size:     size,
		MimeType: PDFMimeType,
		Content:  io.MultiReader(bytes.NewReader(header), r),
	}, nil
}

// FormatSize renders a byte count the way the upload card shows it.
func FormatSize(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
}
