package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takane-go/takane"
	"github.com/takane-go/takane/internal/logging"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "validate <dir>",
		Short: "Check that a directory is a valid takane object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Debug("validating object", "path", args[0])
			if err := takane.Validate(args[0], baseOptions); err != nil {
				return err
			}
			if !quiet {
				fmt.Println("ok")
			}
			return nil
		},
	})
}
