package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alevsk/shapeshift/internal/ingestor"
	"github.com/spf13/cobra"
)

// inputFlags selects where a command reads its document from
type inputFlags struct {
	data string
	file string
}

func (in *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.data, "data", "d", "", "document passed inline")
	cmd.Flags().StringVarP(&in.file, "file", "f", "", "path or http(s) URL of the document, - for stdin (default: stdin)")
}

// read returns the document from --data, --file or stdin, in that order
func (in *inputFlags) read(cmd *cobra.Command) (string, error) {
	if in.data != "" && in.file != "" {
		return "", errors.New("--data and --file are mutually exclusive")
	}
	if in.data != "" {
		return in.data, nil
	}

	if in.file != "" && in.file != "-" {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		docs, err := ingestor.New(nil).Collect(ctx, in.file)
		if err != nil {
			return "", fmt.Errorf("error reading input: %w", err)
		}
		if len(docs) != 1 {
			return "", fmt.Errorf("%s holds %d documents, use batch to convert a directory", in.file, len(docs))
		}
		return docs[0].Content, nil
	}

	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("error reading stdin: %w", err)
	}
	return string(b), nil
}
