package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subplay/pkg/subtitle"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <video>",
	Short: "Print the sidecar subtitle a video would load",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, ok := subtitle.Discover(args[0])
		if !ok {
			return subtitle.ErrNotFound
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
