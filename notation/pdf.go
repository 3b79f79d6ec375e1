package notation

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF reads the text layer of every page and runs the keyword scan
// over it. Scanned charts with no text layer yield an empty Sheet.
func ExtractPDF(path string) (Sheet, error) {
	text, err := readPDFText(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Sheet{}, &ExtractionError{Path: path, Reason: "file not found", Err: err}
		}
		return Sheet{}, &ExtractionError{Path: path, Reason: "unreadable pdf", Err: err}
	}
	return ScanText(text), nil
}

// readPDFText turns a parser panic on a malformed file into an error
func readPDFText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
