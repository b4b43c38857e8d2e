package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/chartloom-cli/internal/chart"
	"github.com/spf13/cobra"
)

var (
	sugColumns []string
	sugType    string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <file>",
	Short: "List chart types compatible with a column selection, or slots for a chart type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDatasetArg(args[0])
		if err != nil {
			return err
		}

		if sugType != "" {
			t, ok := chart.ParseType(sugType)
			if !ok {
				return fmt.Errorf("unknown chart type: %s", sugType)
			}
			combos := chart.Combos(t, d)
			if len(combos) == 0 {
				fmt.Printf("No column combinations available for %s\n", t)
				return nil
			}
			fmt.Printf("Column combinations for %s:\n", t)
			for i, combo := range combos {
				fmt.Printf("  combo %d:\n", i+1)
				for j, slot := range combo {
					fmt.Printf("    slot %d: %s\n", j+1, strings.Join(slot, ", "))
				}
			}
			if len(sugColumns) > 0 {
				if chart.IsValidSelection(t, sugColumns, combos) {
					fmt.Printf("✓ Selection [%s] is valid for %s\n", strings.Join(sugColumns, ", "), t)
				} else {
					fmt.Printf("✗ Selection [%s] is not valid for %s\n", strings.Join(sugColumns, ", "), t)
				}
			}
			return nil
		}

		if len(sugColumns) == 0 {
			return fmt.Errorf("provide --columns to get chart suggestions, or --type to inspect slots")
		}
		charts := chart.CompatibleCharts(sugColumns, d)
		if len(charts) == 0 {
			fmt.Println("No compatible chart types for this selection")
			return nil
		}
		fmt.Printf("Compatible chart types for [%s]:\n", strings.Join(sugColumns, ", "))
		for _, t := range charts {
			fmt.Printf("  %s\n", t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().StringSliceVarP(&sugColumns, "columns", "c", nil, "selected column names (ordered)")
	suggestCmd.Flags().StringVarP(&sugType, "type", "t", "", "chart type to inspect column slots for")
}
