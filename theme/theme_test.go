package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drum-practice/score"
)

func TestDefaultPalette(t *testing.T) {
	p := Default()
	assert.Equal(t, "Ember", p.Name)
	assert.Len(t, p.Colors, 9)
	assert.Equal(t, RGB{26, 16, 28}, p.Lookup(0))
	assert.Equal(t, RGB{146, 214, 104}, p.Lookup(1))
}

func TestParseGPL(t *testing.T) {
	gpl := "GIMP Palette\nName: Mono\nColumns: 2\n# comment\n0 0 0 black\n300 0 0 too bright\n255 255 255\n"
	p, err := ParseGPL(strings.NewReader(gpl))
	require.NoError(t, err)

	assert.Equal(t, "Mono", p.Name)
	assert.Equal(t, []RGB{{0, 0, 0}, {255, 255, 255}}, p.Colors)
	assert.Equal(t, RGB{127, 127, 127}, p.Lookup(0.5))

	_, err = ParseGPL(strings.NewReader("GIMP Palette\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	th, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Ember", th.Palette.Name)

	path := filepath.Join(t.TempDir(), "two.gpl")
	require.NoError(t, os.WriteFile(path, []byte("GIMP Palette\nName: Two\n10 20 30\n40 50 60\n"), 0644))
	th, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, lipgloss.Color("#0a141e"), rgbToLipgloss(th.Palette.Lookup(0)))

	_, err = Load(filepath.Join(t.TempDir(), "missing.gpl"))
	assert.Error(t, err)
}

func TestLabelColours(t *testing.T) {
	th := New(nil)
	assert.NotEqual(t, th.Label(score.Kick), th.Label(score.Snare))
	assert.Equal(t, th.FG(), th.Label("49"))
	assert.Equal(t, th.Success(), th.Accuracy(100))
	assert.Equal(t, th.Warning(), th.Accuracy(0))
}
