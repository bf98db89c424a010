package textextract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FromUpload extracts plain text from an uploaded file, dispatching on the
// file extension. Anything that is not a PDF is treated as plain text.
func FromUpload(filename string, r io.Reader) (string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return FromPDF(r)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload failed: %w", err)
	}
	return string(b), nil
}

// FromPDF reads the entire content of r and extracts plain text from the PDF.
// Returns empty string and nil error if the PDF has no extractable text.
func FromPDF(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	readerAt := bytes.NewReader(b)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(b)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
