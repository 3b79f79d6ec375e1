package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"drum-practice/practice"
	"drum-practice/score"
	"drum-practice/theme"
)

// notesPerRow wraps the part display
const notesPerRow = 16

// tempoStep is the +/- increment in BPM
const tempoStep = 5

type Model struct {
	Session  *practice.Session
	Theme    *theme.Theme
	Source   string // reloaded with l; empty disables reload
	quitting bool
	status   string
}

type UpdateMsg struct{}

func NewModel(session *practice.Session, th *theme.Theme, source string) Model {
	return Model{
		Session: session,
		Theme:   th,
		Source:  source,
	}
}

func ListenForUpdates(session *practice.Session) tea.Cmd {
	return func() tea.Msg {
		<-session.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Session)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Session.Stop()
			return m, tea.Quit

		case "s", " ":
			m.status = ""
			if err := m.Session.Start(); err != nil {
				m.status = startError(err)
			}

		case "x":
			if m.Session.Running() {
				res := m.Session.Stop()
				m.status = fmt.Sprintf("stopped: %d/%d hits", res.Hits, res.Total)
			}

		case "+", "=":
			m.status = tempoError(m.Session.SetTempo(m.Session.Snapshot().Tempo + tempoStep))

		case "-", "_":
			m.status = tempoError(m.Session.SetTempo(m.Session.Snapshot().Tempo - tempoStep))

		case "l":
			if m.Source == "" {
				m.status = "nothing to reload"
				break
			}
			if err := m.Session.Load(m.Source); err != nil {
				m.status = err.Error()
			} else {
				m.status = "reloaded " + m.Source
			}
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Session)
	}

	return m, nil
}

func startError(err error) string {
	switch {
	case errors.Is(err, practice.ErrNoNotesLoaded):
		return "no notes loaded"
	case errors.Is(err, practice.ErrAlreadyRunning):
		return "already running"
	}
	return err.Error()
}

func tempoError(err error) string {
	if errors.Is(err, practice.ErrRunning) {
		return "stop the run to change tempo"
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Session.Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	state := "IDLE"
	if snap.State == practice.Running {
		state = "RUN "
	}
	port := snap.Port
	if port == "" {
		port = "first input"
	}
	header := headerStyle.Render(fmt.Sprintf("drum-practice  %s  %3dbpm  beat:%02d/%02d  %s  [%s]",
		state, snap.Tempo, snap.Position.Index, snap.Position.Total, port, snap.Kit))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(header)
	b.WriteString("\n")
	if snap.Source != "" {
		b.WriteString(dimStyle.Render(snap.Source))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(snap.Notes) == 0 {
		b.WriteString(dimStyle.Render("no notes loaded"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderNotes(snap))
	}
	b.WriteString("\n")

	if snap.State == practice.Running {
		b.WriteString(fmt.Sprintf("hits recorded: %d\n", snap.Performed))
	}
	if snap.Last != nil {
		last := snap.Last
		accStyle := lipgloss.NewStyle().Foreground(m.Theme.Accuracy(last.Accuracy)).Bold(true)
		b.WriteString(fmt.Sprintf("last run: %d/%d  %s\n", last.Hits, last.Total,
			accStyle.Render(fmt.Sprintf("%.1f%%", last.Accuracy))))
	}
	if snap.CaptureErr != nil {
		b.WriteString(warnStyle.Render("no capture: " + snap.CaptureErr.Error()))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(warnStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("s:start  x:stop  +/-:tempo  l:reload  q:quit"))
	b.WriteString("\n")
	return b.String()
}

// renderNotes draws the part. While running the note at the clock index
// is marked; after a run each note shows whether it was hit.
func (m Model) renderNotes(snap practice.Snapshot) string {
	sym := m.Theme.Symbols
	var claimed []bool
	if snap.State == practice.Idle && snap.Last != nil && len(snap.Last.Claimed) == len(snap.Notes) {
		claimed = snap.Last.Claimed
	}

	var b strings.Builder
	for i, n := range snap.Notes {
		glyph := sym.Pending
		color := m.Theme.Label(n.Label)
		switch {
		case snap.State == practice.Running && i == snap.Position.Index:
			glyph = sym.Playhead
		case claimed != nil && claimed[i]:
			glyph = sym.Hit
			color = m.Theme.Success()
		case claimed != nil:
			glyph = sym.Miss
			color = m.Theme.Warning()
		}

		cell := fmt.Sprintf("%c%s ", glyph, abbrev(n.Label))
		b.WriteString(lipgloss.NewStyle().Foreground(color).Render(cell))
		if (i+1)%notesPerRow == 0 {
			b.WriteString("\n")
		}
	}
	if len(snap.Notes)%notesPerRow != 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func abbrev(label string) string {
	switch label {
	case score.Kick:
		return "K"
	case score.Snare:
		return "S"
	case score.HiHat:
		return "H"
	}
	return "?"
}
