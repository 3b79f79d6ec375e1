package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"drum-practice/midi"
	"drum-practice/notation"
)

func init() {
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Show the drum part extracted from a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, err := notation.New(midi.GetKit(settings.Kit)).Extract(args[0])
		if err != nil {
			return err
		}

		if sheet.Tempo > 0 {
			fmt.Printf("tempo hint: %d bpm\n", sheet.Tempo)
		}
		fmt.Printf("%d notes\n", len(sheet.Notes))
		for _, n := range sheet.Notes {
			fmt.Printf("  %6.2f  %s\n", n.Time, n.Label)
		}
		return nil
	},
}
