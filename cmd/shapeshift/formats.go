package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var formatsOutput string

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		formats := newOrchestrator().Formats()
		if formatsOutput == "plain" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(formats, "\n"))
			return err
		}
		return render(cmd, formatsOutput, 2, map[string][]string{"formats": formats})
	},
}

func init() {
	formatsCmd.Flags().StringVarP(&formatsOutput, "output", "o", "plain", "output format (plain, json, yaml)")
}
