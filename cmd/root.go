package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"drum-practice/config"
	"drum-practice/debug"
	"drum-practice/midi"
)

// settings is the loaded config with flag overrides applied
var settings *config.Config

var flags struct {
	bpm         int
	port        string
	kit         string
	metricsAddr string
	historyDB   string
	debug       bool
}

var rootCmd = &cobra.Command{
	Use:   "drum-practice",
	Short: "Practice drums against a notated part",
	Long: `drum-practice plays through a drum part one beat at a time, records the
hits from a MIDI drum module and scores how closely they matched.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		settings = cfg

		if cfg.Debug {
			if err := debug.Enable(cfg.DebugLog); err != nil {
				fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		midi.CloseDriver()
		debug.Disable()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flags.bpm, "bpm", 0, "tempo in beats per minute")
	pf.StringVar(&flags.port, "port", "", "MIDI input port (default: first port)")
	pf.StringVar(&flags.kit, "kit", "", "trigger mapping: "+kitList())
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "serve /metrics and /api on this address")
	pf.StringVar(&flags.historyDB, "history-db", "", "practice history database")
	pf.BoolVar(&flags.debug, "debug", false, "write a debug log")
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	pf := cmd.Flags()
	if pf.Changed("bpm") {
		cfg.Tempo = flags.bpm
	}
	if pf.Changed("port") {
		cfg.InputPort = flags.port
	}
	if pf.Changed("kit") {
		cfg.Kit = flags.kit
	}
	if pf.Changed("metrics-addr") {
		cfg.MetricsAddr = flags.metricsAddr
	}
	if pf.Changed("history-db") {
		cfg.HistoryDB = flags.historyDB
	}
	if pf.Changed("debug") {
		cfg.Debug = flags.debug
	}
}

func kitList() string {
	return strings.Join(midi.KitNames(), ", ")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
