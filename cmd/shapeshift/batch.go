package main

import (
	"context"
	"fmt"

	"github.com/alevsk/shapeshift/internal/codec"
	"github.com/alevsk/shapeshift/internal/ingestor"
	"github.com/alevsk/shapeshift/internal/orchestrator"
	"github.com/alevsk/shapeshift/internal/types"
	"github.com/spf13/cobra"
)

type batchFlags struct {
	ingest     ingestor.Options
	from       string
	to         string
	pretty     bool
	indent     int
	noValidate bool
	strict     bool
	outDir     string
	output     string
}

var batchOpts = &batchFlags{}

var batchCmd = &cobra.Command{
	Use:   "batch [path]",
	Short: "Convert every supported file under a path",
	Long: `Convert a file, a URL, or every .json, .yaml, .yml, .toml and .xml file found
under a directory, transforming several files at once. Each file's source format comes
from --from, then its extension.

Examples:
  # Check that every document under ./config converts to TOML
  shapeshift batch ./config --to toml

  # Convert a tree of XML files to YAML into ./out
  shapeshift batch ./feeds --to yaml --out-dir ./out`,
	Args: cobra.ExactArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		// config supplies defaults for flags left unset
		flags := cmd.Flags()
		if !flags.Changed("to") {
			batchOpts.to = cfg.Transform.Target
		}
		if !flags.Changed("pretty") {
			batchOpts.pretty = cfg.Transform.Pretty
		}
		if !flags.Changed("indent") {
			batchOpts.indent = cfg.Transform.Indent
		}
		if !flags.Changed("no-validate") {
			batchOpts.noValidate = !cfg.Transform.Validate
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]
		target, err := codec.ParseFormat(batchOpts.to)
		if err != nil {
			return err
		}

		opts := orchestrator.TransformOptions{
			Source:   batchOpts.from,
			Target:   string(target),
			Validate: !batchOpts.noValidate,
			Pretty:   batchOpts.pretty,
			Indent:   batchOpts.indent,
		}
		if cmd.Flags().Changed("strict") {
			opts.Strict = &batchOpts.strict
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ing := ingestor.New(&batchOpts.ingest)
		results, err := ing.Ingest(ctx, source, newOrchestrator(), opts)
		if err != nil {
			return fmt.Errorf("batch failed: %w", err)
		}

		batch := types.NewBatchResult()
		ext := ingestor.Extension(target, batchOpts.pretty)
		for _, r := range results {
			var written string
			if batchOpts.outDir != "" && r.Transform.Valid {
				written = ingestor.OutputPath(source, r.Document.Path, batchOpts.outDir, ext)
				if err := ingestor.Write(written, r.Transform.Formatted); err != nil {
					return err
				}
			}
			batch.Add(r.Document.Path, written, r.Transform)
		}

		if err := render(cmd, batchOpts.output, batchOpts.indent, batch); err != nil {
			return err
		}
		if failed := batch.Failed(); len(failed) > 0 {
			return invalid("batch", failed)
		}
		return nil
	},
}

func init() {
	flags := batchCmd.Flags()
	flags.StringVar(&batchOpts.from, "from", "", "source format for every file (default: from extension)")
	flags.StringVar(&batchOpts.to, "to", "json", "target format (json, yaml, toml, xml, openapi)")
	flags.BoolVar(&batchOpts.pretty, "pretty", true, "pretty print the output")
	flags.IntVar(&batchOpts.indent, "indent", 2, "indentation width used when pretty printing")
	flags.BoolVar(&batchOpts.noValidate, "no-validate", false, "skip structural validation")
	flags.BoolVar(&batchOpts.strict, "strict", false, "treat warnings as errors")
	flags.StringVar(&batchOpts.outDir, "out-dir", "", "write converted files under this directory")
	flags.IntVar(&batchOpts.ingest.MaxConcurrency, "concurrency", 4,
		"maximum number of files transformed at once")
	flags.BoolVar(&batchOpts.ingest.FollowSymlinks, "follow-symlinks", false,
		"follow symbolic links during directory traversal")
	flags.StringSliceVar(&batchOpts.ingest.Include, "include", nil, "only convert files matching these globs, e.g. '**/*.json'")
	flags.StringSliceVar(&batchOpts.ingest.Exclude, "exclude", nil, "skip files matching these globs")
	flags.StringVarP(&batchOpts.output, "output", "o", "table", "output format (json, yaml, table, markdown)")
}
