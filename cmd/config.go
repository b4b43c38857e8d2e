package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/chartloom-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ChartLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("max_rows: %d\n", cfg.MaxRows)
		fmt.Printf("preview_rows: %d\n", cfg.PreviewRows)
		fmt.Printf("default_aggregation: %s\n", cfg.DefaultAggregation)
		fmt.Printf("default_sort_order: %s\n", cfg.DefaultSortOrder)
		fmt.Printf("default_filter_top: %d\n", cfg.DefaultFilterTop)
		fmt.Printf("reports_dir: %s\n", cfg.ReportsDir)
		fmt.Printf("min_image_bytes: %d\n", cfg.MinImageBytes)
		fmt.Printf("server_addr: %s\n", cfg.ServerAddr)
		fmt.Printf("server_timeout_sec: %d\n", cfg.ServerTimeoutSec)
		fmt.Printf("server_max_upload_mb: %d\n", cfg.ServerMaxUploadMB)
		fmt.Printf("server_cors_enabled: %t\n", cfg.ServerCORSEnabled)
		fmt.Printf("server_access_logged: %t\n", cfg.ServerAccessLogged)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_rows: %v", val)
			}
			cfg.MaxRows = i
		case "preview_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for preview_rows: %v", val)
			}
			cfg.PreviewRows = i
		case "default_aggregation":
			switch val {
			case "sum", "average":
				cfg.DefaultAggregation = val
			default:
				return fmt.Errorf("invalid default_aggregation: %s (use sum or average)", val)
			}
		case "default_sort_order":
			switch val {
			case "none", "asc", "desc", "label-asc", "label-desc":
				cfg.DefaultSortOrder = val
			default:
				return fmt.Errorf("invalid default_sort_order: %s", val)
			}
		case "default_filter_top":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for default_filter_top: %v", val)
			}
			cfg.DefaultFilterTop = i
		case "reports_dir":
			cfg.ReportsDir = val
		case "min_image_bytes":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for min_image_bytes: %v", val)
			}
			cfg.MinImageBytes = i
		case "server_addr":
			cfg.ServerAddr = val
		case "server_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for server_timeout_sec: %v", val)
			}
			cfg.ServerTimeoutSec = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
