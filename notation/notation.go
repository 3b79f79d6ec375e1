// Package notation pulls a rough drum part out of a document.
//
// Extraction is best effort: text documents and the text layer of PDFs are
// scanned for drum keywords and MIDI files are read for kick, snare and hi-hat note-ons. Neither path
// understands rests, subdivisions or dynamics.
package notation

import (
	"fmt"
	"path/filepath"
	"strings"

	"drum-practice/midi"
	"drum-practice/score"
)

// Sheet is the output of an extraction
type Sheet struct {
	Notes []score.ExpectedNote
	Tempo int // BPM hint, 0 if the document has none
}

// Extractor turns a document into a Sheet
type Extractor interface {
	Extract(path string) (Sheet, error)
}

// ExtractorFunc adapts a function to Extractor
type ExtractorFunc func(path string) (Sheet, error)

func (f ExtractorFunc) Extract(path string) (Sheet, error) {
	return f(path)
}

// ExtractionError reports a document that could not be read or parsed
type ExtractionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Path, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Default dispatches on file extension with the General MIDI kit
var Default Extractor = New(midi.DefaultKit())

// New returns an Extractor that sends .mid/.midi/.smf files through the MIDI
// file reader using kit, .pdf files through the PDF text reader and
// everything else through the keyword scanner.
func New(kit midi.Kit) Extractor {
	midiFile := MIDIExtractor{Kit: kit}
	return ExtractorFunc(func(path string) (Sheet, error) {
		switch {
		case isMIDI(path):
			return midiFile.Extract(path)
		case strings.EqualFold(filepath.Ext(path), ".pdf"):
			return ExtractPDF(path)
		}
		return ExtractText(path)
	})
}

// Extract reads the document at path with the extractor matching its extension
func Extract(path string) (Sheet, error) {
	return Default.Extract(path)
}

func isMIDI(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi", ".smf":
		return true
	}
	return false
}
