package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/finstatement-extractor/internal/cache"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>...",
		Short: "Print the content fingerprint used as the cache key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				sum, err := cache.FingerprintFile(p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, p)
			}
			return nil
		},
	}
}
