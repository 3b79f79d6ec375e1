package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"drum-practice/history"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent practice runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(settings.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FINISHED\tSOURCE\tBPM\tHITS\tACCURACY\tEND")
		for _, r := range runs {
			end := "stopped"
			if r.Completed {
				end = "completed"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%.1f%%\t%s\n",
				r.Finished.Local().Format("2006-01-02 15:04"), r.Source, r.Tempo, r.Hits, r.Total, r.Accuracy, end)
		}
		return w.Flush()
	},
}
