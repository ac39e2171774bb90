package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set through -ldflags at release time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionOutput string

// VersionInfo describes the running build
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of shapeshift",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := &VersionInfo{Version: version, Commit: commit, Date: date}
		if versionOutput == "plain" {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (built: %s commit: %s)\n", info.Version, info.Date, info.Commit)
			return err
		}
		return render(cmd, versionOutput, 2, info)
	},
}

func init() {
	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", "plain", "output format (plain, json, yaml)")
}
