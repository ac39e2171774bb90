package main

import (
	"github.com/spf13/cobra"
)

type validateFlags struct {
	input  inputFlags
	format string
	strict bool
	output string
}

var validateOpts = &validateFlags{}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a document against its format's structural rules",
	Long: `Parse a document and check it against the structural rules of its format.
The format is detected when --format is omitted.

Examples:
  # Validate an OpenAPI description, failing on warnings
  shapeshift validate -f api.json --format openapi --strict`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := validateOpts.input.read(cmd)
		if err != nil {
			return err
		}

		orch := newOrchestrator()
		format := validateOpts.format
		if format == "" {
			detected, err := orch.Detect(text)
			if err != nil {
				return err
			}
			format = detected.Format
		}

		var strict *bool
		if cmd.Flags().Changed("strict") {
			strict = &validateOpts.strict
		}

		res := orch.ValidateOnly(text, format, strict)
		if err := render(cmd, validateOpts.output, 2, res); err != nil {
			return err
		}
		if !res.Valid {
			return invalid("validation", res.Errors)
		}
		return nil
	},
}

func init() {
	validateOpts.input.register(validateCmd)

	flags := validateCmd.Flags()
	flags.StringVar(&validateOpts.format, "format", "", "document format (default: detect)")
	flags.BoolVar(&validateOpts.strict, "strict", false, "treat warnings as errors")
	flags.StringVarP(&validateOpts.output, "output", "o", "table", "output format (json, yaml, table, markdown)")
}
