package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alevsk/shapeshift/internal/config"
	"github.com/alevsk/shapeshift/internal/logger"
	"github.com/alevsk/shapeshift/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "shapeshift",
	Short: "Shapeshift - convert structured data between formats",
	Long: `Shapeshift detects, validates and converts structured documents between
JSON, YAML, TOML, XML and OpenAPI, flagging values that look like secrets.`,
	SilenceErrors: true, // We'll handle error printing ourselves
	SilenceUsage:  true, // We'll handle usage printing ourselves
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		// Load configuration from file or environment variable
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}

		// flags override config due to highest precedence
		if debug {
			cfg.Debug = true
		}

		if err := logger.Init(cfg); err != nil {
			return fmt.Errorf("error initializing logger: %w", err)
		}

		if configPath != "" || os.Getenv(config.ConfigPathEnvVar) != "" {
			logger.Debug().Msgf("Using config file: %s", configPath)
		} else {
			logger.Debug().Msg("Using default configuration")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Close()
	},
}

// newOrchestrator builds the engine from the loaded configuration
func newOrchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(&orchestrator.Options{StrictMode: cfg.Strict})
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: config.yml in current directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging and additional debug information")

	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if code := run(os.Args[1:], os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// run executes the command line and returns the process exit code. Usage
// and errors go to stderr so stdout only ever carries command output.
func run(args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	if !errors.Is(err, errFailed) {
		cmd := rootCmd
		if c, _, findErr := rootCmd.Find(args); findErr == nil {
			cmd = c
		}
		fmt.Fprintln(stderr, cmd.UsageString())
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
