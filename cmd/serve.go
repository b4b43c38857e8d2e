package cmd

import (
	"fmt"

	"github.com/KaramelBytes/chartloom-cli/internal/report"
	"github.com/KaramelBytes/chartloom-cli/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
	serveFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis engine over HTTP",
	Long:  `Starts an HTTP server exposing dataset upload and analysis, chart compatibility resolution, series derivation, and report selection endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		if cmd.Flags().Changed("addr") {
			cfg.ServerAddr = serveAddr
		}
		store, err := report.LoadStore(cfg.ReportsDir)
		if err != nil {
			return fmt.Errorf("load report store: %w", err)
		}
		store.SetMinImageBytes(cfg.MinImageBytes)
		srv := server.New(cfg, store)
		if serveFile != "" {
			d, err := loadDatasetArg(serveFile)
			if err != nil {
				return err
			}
			srv.SetDataset(d)
			fmt.Printf("✓ Loaded dataset from %s\n", serveFile)
		}
		fmt.Printf("✓ Serving on http://%s\n", cfg.ServerAddr)
		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().StringVarP(&serveFile, "file", "f", "", "dataset to pre-load at startup")
}
