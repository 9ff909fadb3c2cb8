package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/finstatement-extractor/internal/pipeline"
)

func newExtractCmd() *cobra.Command {
	var (
		xlsxPath string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Extract the statement table from one PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(withContext(cmd), os.Interrupt)
			defer stop()

			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.processor.Extract(ctx, pipeline.Input{Path: args[0]})
			if res.Error != "" {
				return fmt.Errorf("%s: %s", args[0], res.Error)
			}

			if xlsxPath != "" {
				if err := a.exporter.WriteFile(ctx, xlsxPath, res); err != nil {
					return fmt.Errorf("failed to write workbook: %w", err)
				}
				a.logger.Info("workbook written", "path", xlsxPath)
			}
			if asJSON || xlsxPath == "" {
				return writeJSON(cmd, res)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an XLSX workbook to this path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON (default when --xlsx is not set)")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withContext keeps cobra's nil-context case out of the commands.
func withContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
