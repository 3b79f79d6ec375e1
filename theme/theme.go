// Package theme maps a palette onto the colours and glyphs of the
// practice screen.
package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"drum-practice/score"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Pending  rune // · note not reached yet
	Playhead rune // ▶ current beat
	Hit      rune // ● matched after the run
	Miss     rune // ○ unmatched after the run
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Pending:  '·',
			Playhead: '▶',
			Hit:      '●',
			Miss:     '○',
		},
	}
}

// Load uses the GPL palette at path, or the built-in one when path is empty
func Load(path string) (*Theme, error) {
	if path == "" {
		return New(Default()), nil
	}
	p, err := LoadGPL(path)
	if err != nil {
		return nil, err
	}
	return New(p), nil
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleMuted   = 0.25
	RoleFG      = 0.5
	RoleAccent  = 0.625
	RoleWarning = 0.75
	RoleActive  = 0.875
	RoleSuccess = 1.0
)

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Label returns the colour for a drum label
func (t *Theme) Label(label string) lipgloss.Color {
	switch label {
	case score.Kick:
		return t.Accent()
	case score.Snare:
		return t.Warning()
	case score.HiHat:
		return t.Active()
	}
	return t.FG()
}

// Accuracy shades a 0-100 score from warning to success
func (t *Theme) Accuracy(pct float64) lipgloss.Color {
	norm := RoleWarning + (RoleSuccess-RoleWarning)*pct/100
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
