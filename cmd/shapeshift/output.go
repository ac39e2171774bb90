package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alevsk/shapeshift/internal/formatter"
	"github.com/spf13/cobra"
)

// render writes a result with the formatter named by output
func render(cmd *cobra.Command, output string, indent int, result any) error {
	t, err := formatter.ParseType(output)
	if err != nil {
		return err
	}
	f, err := formatter.NewFormatter(t, &formatter.Options{Indent: indent})
	if err != nil {
		return err
	}
	out, err := f.Format(result)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

// errFailed marks a command that ran but produced an invalid result.
// Its output has already been written, so no usage is printed.
var errFailed = errors.New("failed")

// invalid builds the error returned when a result carries errors
func invalid(op string, errs []string) error {
	return fmt.Errorf("%s %w: %s", op, errFailed, strings.Join(errs, "; "))
}
