package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/chartloom-cli/internal/chart"
	"github.com/KaramelBytes/chartloom-cli/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	chartType    string
	chartColumns []string
	chartAgg     string
	chartSort    string
	chartTop     int
	chartOutput  string
	chartFormat  string
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Derive the plottable series for a chart configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDatasetArg(args[0])
		if err != nil {
			return err
		}
		t, ok := chart.ParseType(chartType)
		if !ok {
			return fmt.Errorf("unknown chart type: %s", chartType)
		}
		p := chartParams(cmd)

		if !chart.IsValidSelection(t, chartColumns, chart.Combos(t, d)) {
			return fmt.Errorf("columns [%s] are not a valid selection for %s (try 'suggest --type %s')",
				strings.Join(chartColumns, ", "), t, t)
		}
		series := chart.Build(t, chartColumns, d, p)
		if series == nil {
			return fmt.Errorf("no plottable data for %s over [%s]", t, strings.Join(chartColumns, ", "))
		}

		payload := map[string]any{
			"key":    chart.Key(t, chartColumns, p),
			"series": series,
		}
		var b []byte
		switch chartFormat {
		case "json", "":
			b, err = utils.PrettyJSON(payload)
		case "yaml":
			b, err = yaml.Marshal(payload)
		default:
			return fmt.Errorf("unsupported --format: %s (use json|yaml)", chartFormat)
		}
		if err != nil {
			return err
		}
		if chartOutput != "" {
			if err := os.WriteFile(chartOutput, b, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote chart data to %s\n", chartOutput)
			return nil
		}
		fmt.Println(string(b))
		return nil
	},
}

// chartParams merges flags over the configured defaults.
func chartParams(cmd *cobra.Command) chart.Params {
	p := chart.Params{
		Aggregation: chart.AggSum,
		SortOrder:   chart.SortNone,
	}
	if cfg != nil {
		if cfg.DefaultAggregation != "" {
			p.Aggregation = chart.Aggregation(cfg.DefaultAggregation)
		}
		if cfg.DefaultSortOrder != "" {
			p.SortOrder = chart.SortOrder(cfg.DefaultSortOrder)
		}
		p.FilterTop = cfg.DefaultFilterTop
	}
	f := cmd.Flags()
	if f.Changed("agg") {
		p.Aggregation = chart.Aggregation(chartAgg)
	}
	if f.Changed("sort") {
		p.SortOrder = chart.SortOrder(chartSort)
	}
	if f.Changed("top") {
		p.FilterTop = chartTop
	}
	return p
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chartType, "type", "t", "", "chart type (bar, pie, histogram, box, scatter, line, correlation, ...)")
	chartCmd.Flags().StringSliceVarP(&chartColumns, "columns", "c", nil, "selected column names (ordered)")
	chartCmd.Flags().StringVar(&chartAgg, "agg", "sum", "aggregation for grouped values: sum|average")
	chartCmd.Flags().StringVar(&chartSort, "sort", "none", "sort order: none|asc|desc|label-asc|label-desc (scatter: x-asc|x-desc|y-asc|y-desc)")
	chartCmd.Flags().IntVar(&chartTop, "top", 0, "keep only the top N entries after sorting (0 = all)")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "optional path to write the series")
	chartCmd.Flags().StringVar(&chartFormat, "format", "json", "output format: json|yaml")
	_ = chartCmd.MarkFlagRequired("type")
	_ = chartCmd.MarkFlagRequired("columns")
}
