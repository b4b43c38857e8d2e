package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
	"github.com/KaramelBytes/chartloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaDelimiter  string
	anaOutputPath string
	anaJSON       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Classify a dataset's columns and preview its rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDatasetArg(args[0])
		if err != nil {
			return err
		}

		if anaJSON || anaOutputPath != "" {
			payload := map[string]any{
				"columns": columnReport(d),
				"preview": d.Preview,
				"rows":    len(d.Rows),
			}
			b, err := utils.PrettyJSON(payload)
			if err != nil {
				return err
			}
			if anaOutputPath != "" {
				if err := os.WriteFile(anaOutputPath, b, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
				return nil
			}
			fmt.Println(string(b))
			return nil
		}

		fmt.Printf("Dataset: %s (%d rows, %d columns)\n\n", filepath.Base(args[0]), len(d.Rows), len(d.Columns))
		for _, c := range d.Columns {
			fmt.Printf("  %-24s %-16s %s\n", c.Name, c.Dtype, c.Group)
		}
		return nil
	},
}

type columnEntry struct {
	Name  string `json:"name"`
	Dtype string `json:"dtype"`
	Group string `json:"group"`
}

func columnReport(d *dataset.Dataset) []columnEntry {
	out := make([]columnEntry, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = columnEntry{Name: c.Name, Dtype: c.Dtype, Group: c.Group.String()}
	}
	return out
}

// loadDatasetArg reads a CSV/TSV or XLSX file using the configured bounds.
func loadDatasetArg(path string) (*dataset.Dataset, error) {
	opt := dataset.LoadOptions{}
	if cfg != nil {
		opt.MaxRows = cfg.MaxRows
		opt.PreviewRows = cfg.PreviewRows
	}
	if anaDelimiter != "" {
		switch anaDelimiter {
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		case "|":
			opt.Delimiter = '|'
		default:
			return nil, fmt.Errorf("unsupported --delimiter: %s", anaDelimiter)
		}
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return dataset.LoadXLSX(path, opt)
	}
	return dataset.LoadCSV(path, opt)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (sniffed if omitted)")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis as JSON")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the analysis as JSON instead of a table")
}
