package main

import (
	"github.com/alevsk/shapeshift/internal/orchestrator"
	"github.com/spf13/cobra"
)

type transformFlags struct {
	input      inputFlags
	from       string
	to         string
	pretty     bool
	indent     int
	noValidate bool
	strict     bool
	output     string
}

var transformOpts = &transformFlags{}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Convert a document to another format",
	Long: `Convert a document between JSON, YAML, TOML, XML and OpenAPI. The source
format is detected when --from is omitted.

Examples:
  # Convert a YAML file to JSON
  shapeshift transform -f config.yaml

  # Convert inline JSON to TOML
  shapeshift transform -d '{"server": {"port": 8080}}' --to toml

  # Read XML from stdin and show the full result as a table
  cat feed.xml | shapeshift transform --from xml --to yaml -o table`,
	Args: cobra.NoArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		// config supplies defaults for flags left unset
		flags := cmd.Flags()
		if !flags.Changed("to") {
			transformOpts.to = cfg.Transform.Target
		}
		if !flags.Changed("pretty") {
			transformOpts.pretty = cfg.Transform.Pretty
		}
		if !flags.Changed("indent") {
			transformOpts.indent = cfg.Transform.Indent
		}
		if !flags.Changed("no-validate") {
			transformOpts.noValidate = !cfg.Transform.Validate
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := transformOpts.input.read(cmd)
		if err != nil {
			return err
		}

		opts := orchestrator.TransformOptions{
			Source:   transformOpts.from,
			Target:   transformOpts.to,
			Validate: !transformOpts.noValidate,
			Pretty:   transformOpts.pretty,
			Indent:   transformOpts.indent,
		}
		if cmd.Flags().Changed("strict") {
			opts.Strict = &transformOpts.strict
		}

		res := newOrchestrator().Transform(text, opts)
		if err := render(cmd, transformOpts.output, transformOpts.indent, res); err != nil {
			return err
		}
		if !res.Valid {
			return invalid("transform", res.Errors)
		}
		return nil
	},
}

func init() {
	transformOpts.input.register(transformCmd)

	flags := transformCmd.Flags()
	flags.StringVar(&transformOpts.from, "from", "", "source format (default: detect)")
	flags.StringVar(&transformOpts.to, "to", "json", "target format (json, yaml, toml, xml, openapi)")
	flags.BoolVar(&transformOpts.pretty, "pretty", true, "pretty print the output")
	flags.IntVar(&transformOpts.indent, "indent", 2, "indentation width used when pretty printing")
	flags.BoolVar(&transformOpts.noValidate, "no-validate", false, "skip structural validation")
	flags.BoolVar(&transformOpts.strict, "strict", false, "treat warnings as errors")
	flags.StringVarP(&transformOpts.output, "output", "o", "raw", "output format (raw, json, yaml, table, markdown)")
}
