package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"drum-practice/midi"
)

func init() {
	rootCmd.AddCommand(monitorCmd)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor [port]",
	Short: "Print drum hits from a MIDI input",
	Long: `Opens a MIDI input and prints every hit with its kit label and the beat it
landed on at the configured tempo. Useful for checking a kit mapping.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port := settings.InputPort
		if len(args) == 1 {
			port = args[0]
		}
		return monitor(port)
	},
}

func monitor(port string) error {
	bpm := float64(settings.Tempo)
	kit := midi.GetKit(settings.Kit)
	start := time.Now()
	beat := func() float64 {
		return time.Since(start).Minutes() * bpm
	}

	c, err := midi.Open(midi.NewDriver(), port, kit, beat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	fmt.Printf("Listening on %s (%s, %d bpm). Ctrl+C to exit.\n", c.Port(), kit.Name, settings.Tempo)
	for hit := range c.Hits() {
		fmt.Printf("beat %7.2f  %-6s  ch=%d note=%d vel=%d\n",
			hit.Beat, hit.Label, hit.Channel+1, hit.Note, hit.Velocity)
	}
	if n := c.Dropped(); n > 0 {
		fmt.Printf("%d hits dropped\n", n)
	}
	return nil
}
