package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/facility-atlas/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents and recent analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		counts, err := st.CountByCategory(ctx)
		if err != nil {
			return err
		}

		total := 0
		fmt.Fprintf(out, "Facilities:\n")
		for _, cat := range model.Categories() {
			fmt.Fprintf(out, "  %-10s %d\n", cat, counts[cat])
			total += counts[cat]
		}
		fmt.Fprintf(out, "  %-10s %d\n", "total", total)

		runs, err := st.ListRuns(ctx, 5)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintf(out, "\nNo analysis runs recorded.\n")
			return nil
		}

		fmt.Fprintf(out, "\nRecent runs:\n")
		for _, r := range runs {
			line := fmt.Sprintf("  %s  %s  %-8s", r.CreatedAt.Format("2006-01-02 15:04"), r.ID, r.Status)
			if r.Result != nil {
				line += fmt.Sprintf("  score=%.2f clusters=%d",
					r.Result.Summary.RedundancyScore, r.Result.Summary.ClusterCount)
			}
			if r.Error != "" {
				line += "  " + r.Error
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
