package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/takane-go/takane"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "height <dir>",
		Short: "Report an object's leading extent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := takane.Height(args[0], baseOptions)
			if err != nil {
				return err
			}
			fmt.Println(h)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "dimensions <dir>",
		Short: "Report an object's full extent vector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dims, err := takane.Dimensions(args[0], baseOptions)
			if err != nil {
				return err
			}
			parts := make([]string, len(dims))
			for i, d := range dims {
				parts[i] = fmt.Sprint(d)
			}
			fmt.Println(strings.Join(parts, " x "))
			return nil
		},
	})
}
