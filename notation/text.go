package notation

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"drum-practice/score"
)

// keywords recognised by the text scanner, mapped to their label
var keywords = map[string]string{
	"kick":   score.Kick,
	"snare":  score.Snare,
	"hi-hat": score.HiHat,
	"hihat":  score.HiHat,
}

// Tempo hints: "120 bpm", "tempo: 120", "q = 120", "♩=120"
var (
	tempoSuffix = regexp.MustCompile(`(?i)\b(\d{2,3})\s*bpm\b`)
	tempoPrefix = regexp.MustCompile(`(?i)(?:\btempo|\bbpm|\bq|♩)\s*[:=]?\s*(\d{2,3})\b`)
)

// ExtractText scans a text document for drum keywords. Each keyword becomes
// one note on the next whole beat, starting at beat 0.
func ExtractText(path string) (Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Sheet{}, &ExtractionError{Path: path, Reason: "file not found", Err: err}
		}
		return Sheet{}, &ExtractionError{Path: path, Reason: "read failed", Err: err}
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return ExtractPDF(path)
	}
	if !utf8.Valid(data) {
		return Sheet{}, &ExtractionError{Path: path, Reason: "unreadable content"}
	}
	return ScanText(string(data)), nil
}

// ScanText runs the keyword scan over already loaded text
func ScanText(text string) Sheet {
	var sheet Sheet
	beat := 0
	for _, word := range strings.Fields(text) {
		word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		}))
		label, ok := keywords[word]
		if !ok {
			continue
		}
		sheet.Notes = append(sheet.Notes, score.ExpectedNote{Time: float64(beat), Label: label})
		beat++
	}
	sheet.Tempo = tempoHint(text)
	return sheet
}

func tempoHint(text string) int {
	for _, re := range []*regexp.Regexp{tempoSuffix, tempoPrefix} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if bpm, err := strconv.Atoi(m[1]); err == nil && bpm > 0 {
			return bpm
		}
	}
	return 0
}
