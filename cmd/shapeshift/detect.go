package main

import (
	"github.com/spf13/cobra"
)

type detectFlags struct {
	input  inputFlags
	output string
}

var detectOpts = &detectFlags{}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Report the most likely format of a document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := detectOpts.input.read(cmd)
		if err != nil {
			return err
		}
		res, err := newOrchestrator().Detect(text)
		if err != nil {
			return err
		}
		return render(cmd, detectOpts.output, 2, res)
	},
}

func init() {
	detectOpts.input.register(detectCmd)
	detectCmd.Flags().StringVarP(&detectOpts.output, "output", "o", "json", "output format (json, yaml, table, markdown)")
}
