package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/transform"

	"github.com/dshills/corpus-chunker/internal/sanitize"
)

func newSanitizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "sanitize [file]",
		Short:       "Sanitize a file (or stdin) to the corpus alphabet",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer file.Close()
				in = file
			}

			reader := transform.NewReader(in, sanitize.Default().Transformer())
			if _, err := io.Copy(cmd.OutOrStdout(), reader); err != nil {
				return fmt.Errorf("sanitize: %w", err)
			}
			return nil
		},
	}
}
