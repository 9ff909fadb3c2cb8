// Command finextract pulls financial statement tables out of PDF filings.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "finextract",
		Short: "Extract financial statement tables from PDF filings",
		Long: `finextract reads annual and quarterly financial statement PDFs,
uses the embedded text layer when there is one and OCR otherwise, and emits
the statement table as JSON or an XLSX workbook.

Configuration comes from the environment (and a .env file when present).`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("noise-file", "", "extra noise rules, one per line (re: prefix for regexes)")
	rootCmd.PersistentFlags().String("cache", "", "cache backend override: file, sqlite, postgres or none")

	rootCmd.AddCommand(newExtractCmd(), newBatchCmd(), newHashCmd())

	if err := rootCmd.Execute(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}
