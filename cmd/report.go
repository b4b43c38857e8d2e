package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/KaramelBytes/chartloom-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	repDir   string
	repKey   string
	repImage string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage which charts are selected for the report",
}

var reportAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Select a chart for the report, attaching its captured image",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		image, err := os.ReadFile(repImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		if err := store.Toggle(repKey, true, image); err != nil {
			if errors.Is(err, report.ErrCaptureFailed) {
				return fmt.Errorf("chart not added: %w", err)
			}
			return err
		}
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Added %s to report\n", repKey)
		return nil
	},
}

var reportRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Deselect a chart from the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Deselect(repKey); err != nil {
			return err
		}
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Removed %s from report\n", repKey)
		return nil
	},
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the charts currently selected for the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		keys := store.Selected()
		if len(keys) == 0 {
			fmt.Println("No charts selected for the report")
			return nil
		}
		for _, key := range keys {
			e, ok := store.Get(key)
			if !ok {
				continue
			}
			fmt.Printf("  %s\n    %s (%d byte image)\n", key, e.Describe(), len(e.Image))
		}
		return nil
	},
}

func openStore() (*report.Store, error) {
	dir := repDir
	if dir == "" && cfg != nil {
		dir = cfg.ReportsDir
	}
	if dir == "" {
		return nil, fmt.Errorf("no report directory configured (use --dir)")
	}
	store, err := report.LoadStore(dir)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		store.SetMinImageBytes(cfg.MinImageBytes)
	}
	return store, nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportAddCmd, reportRemoveCmd, reportListCmd)
	reportCmd.PersistentFlags().StringVar(&repDir, "dir", "", "report directory (default from config)")
	reportAddCmd.Flags().StringVarP(&repKey, "key", "k", "", "chart identity key (as printed by 'chart')")
	reportAddCmd.Flags().StringVar(&repImage, "image", "", "path to the captured chart image")
	reportRemoveCmd.Flags().StringVarP(&repKey, "key", "k", "", "chart identity key")
	_ = reportAddCmd.MarkFlagRequired("key")
	_ = reportAddCmd.MarkFlagRequired("image")
	_ = reportRemoveCmd.MarkFlagRequired("key")
}
