package notation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drum-practice/midi"
	"drum-practice/score"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestScanTextKeywords(t *testing.T) {
	sheet := ScanText("Groove A: Kick, snare. (HiHat) then hi-hat!\nkickdrum is not a keyword")

	assert.Equal(t, []score.ExpectedNote{
		{Time: 0, Label: score.Kick},
		{Time: 1, Label: score.Snare},
		{Time: 2, Label: score.HiHat},
		{Time: 3, Label: score.HiHat},
	}, sheet.Notes)
	assert.Zero(t, sheet.Tempo)
}

func TestScanTextWithoutKeywords(t *testing.T) {
	sheet := ScanText("Ballad in D minor, brushes only")
	assert.Empty(t, sheet.Notes)
}

func TestTempoHints(t *testing.T) {
	cases := map[string]int{
		"Swing feel, 96 bpm":     96,
		"Tempo: 132":             132,
		"q = 72":                 72,
		"♩=160 straight eighths": 160,
		"BPM 88":                 88,
		"bar 12, 4 bars":         0,
		"1200 bpm":               0,
	}
	for text, want := range cases {
		assert.Equal(t, want, ScanText(text).Tempo, text)
	}
}

func TestExtractText(t *testing.T) {
	path := writeFile(t, "groove.txt", []byte("Tempo 110\nkick snare kick snare"))

	sheet, err := ExtractText(path)
	require.NoError(t, err)
	assert.Len(t, sheet.Notes, 4)
	assert.Equal(t, 110, sheet.Tempo)
}

func TestExtractTextErrors(t *testing.T) {
	var extractErr *ExtractionError

	_, err := ExtractText(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, "file not found", extractErr.Reason)

	// PDF content is handed to the PDF reader whatever the extension
	_, err = ExtractText(writeFile(t, "chart.txt", []byte("%PDF-1.7\n...")))
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, "unreadable pdf", extractErr.Reason)

	_, err = ExtractText(writeFile(t, "blob.bin", []byte{0xff, 0xfe, 0x00, 0x81}))
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, "unreadable content", extractErr.Reason)
	assert.Contains(t, err.Error(), "blob.bin")
}

func TestExtractDispatchesByExtension(t *testing.T) {
	path := writeFile(t, "notes.md", []byte("snare snare"))
	sheet, err := Extract(path)
	require.NoError(t, err)
	assert.Len(t, sheet.Notes, 2)

	// A text file named .mid goes to the MIDI reader and fails there
	_, err = Extract(writeFile(t, "fake.mid", []byte("kick snare")))
	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
}

func TestNewUsesKitForMIDI(t *testing.T) {
	x := New(midi.GetKit("rd8"))

	sheet, err := x.Extract(writeFile(t, "part.txt", []byte("snare")))
	require.NoError(t, err)
	assert.Len(t, sheet.Notes, 1)

	_, err = x.Extract(writeFile(t, "part.MIDI", []byte("not midi")))
	var extractErr *ExtractionError
	assert.ErrorAs(t, err, &extractErr)
}
