package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/bep/debounce"
	"github.com/spf13/cobra"

	"drum-practice/midi"
)

var watchDevices bool

func init() {
	devicesCmd.Flags().BoolVarP(&watchDevices, "watch", "w", false, "keep running and report hot-plug changes")
	rootCmd.AddCommand(devicesCmd)
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List MIDI input ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := midi.NewDriver()
		if watchDevices {
			return watch(d)
		}

		names, err := midi.ListDevices(d)
		if err != nil {
			if errors.Is(err, midi.ErrPortScanTimeout) {
				fmt.Fprintln(os.Stderr, "CoreMIDI is hung. Fix: sudo killall coreaudiod midiserver")
			}
			return err
		}
		printPorts(names)
		return nil
	},
}

func printPorts(names []string) {
	if len(names) == 0 {
		fmt.Println("no MIDI input ports")
		return
	}
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

// watch prints each hot-plug event and, once a burst settles, the full list
func watch(d midi.Driver) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dm := midi.NewDeviceManager(d, midi.WithPollRate(time.Second))
	go dm.Run(ctx)

	fmt.Println("Watching MIDI inputs. Ctrl+C to exit.")
	settled := debounce.New(300 * time.Millisecond)
	for ev := range dm.Events() {
		fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), ev.Type, ev.Port)
		settled(func() {
			printPorts(dm.Ports())
		})
	}
	return nil
}
