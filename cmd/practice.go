package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"drum-practice/history"
	"drum-practice/metrics"
	"drum-practice/midi"
	"drum-practice/notation"
	"drum-practice/practice"
	"drum-practice/status"
	"drum-practice/theme"
	"drum-practice/tui"
)

func init() {
	rootCmd.AddCommand(practiceCmd)
}

var practiceCmd = &cobra.Command{
	Use:   "practice [file]",
	Short: "Play through a part and score the hits",
	Long: `Loads a drum part from a text document or MIDI file and opens the practice
screen. Press s to start, x to stop, +/- to change tempo and q to quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := ""
		if len(args) == 1 {
			source = args[0]
		}
		return runPractice(cmd, source)
	},
}

func runPractice(cmd *cobra.Command, source string) error {
	cfg := settings

	th, err := theme.Load(cfg.Palette)
	if err != nil {
		return err
	}

	kit := midi.GetKit(cfg.Kit)
	m := metrics.NewManager(metrics.WithMetricsEnabled(cfg.MetricsAddr != ""))
	opts := []practice.Option{
		practice.WithDriver(midi.NewDriver()),
		practice.WithExtractor(notation.New(kit)),
		practice.WithKit(kit),
		practice.WithTolerance(cfg.Tolerance),
		practice.WithTempo(cfg.Tempo),
		practice.WithPort(cfg.InputPort),
		practice.WithMetrics(m),
	}

	var runs status.RunLister
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history disabled: %v\n", err)
	} else {
		defer store.Close()
		runs = store
		opts = append(opts, practice.WithRecorder(store))
	}

	session := practice.NewSession(opts...)
	defer session.Close()

	if source != "" {
		if err := session.Load(source); err != nil {
			return err
		}
		// An explicit --bpm beats the document's tempo hint
		if cmd.Flags().Changed("bpm") {
			if err := session.SetTempo(cfg.Tempo); err != nil {
				return err
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.MetricsAddr != "" {
		go func() {
			err := status.Serve(ctx, cfg.MetricsAddr, status.NewHandler(m, session, runs))
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "status server: %v\n", err)
			}
		}()
	}

	p := tea.NewProgram(tui.NewModel(session, th, source), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	if last := session.Snapshot().Last; last != nil {
		fmt.Printf("last run: %d/%d hits, %.1f%%\n", last.Hits, last.Total, last.Accuracy)
	}
	return nil
}
