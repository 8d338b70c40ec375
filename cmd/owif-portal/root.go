package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/owif/web-portal/internal/config"
	perrors "github.com/owif/web-portal/internal/errors"
	"github.com/owif/web-portal/internal/logging"
)

// CommandOptions holds the flags shared by every command
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "owif-portal",
		Short:         "Build and preview the 1-Wire interface web portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       info.Version,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to owif-portal.yaml or .toml config file")

	setVersionTemplate(cmd)
	cmd.AddCommand(
		newBuildCmd(),
		newRenderCmd(),
		newServeCmd(),
		newVariantsCmd(),
		newVersionCmd(),
	)
	return cmd
}

// getOptions extracts common options from a command
func getOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// loadConfig reads .env, the config file and environment overrides, then
// configures logging. Without --config a missing file means defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, CommandOptions, error) {
	opts := getOptions(cmd)

	if err := config.LoadEnv(); err != nil {
		return nil, opts, perrors.ConfigInvalid(".env: " + err.Error())
	}

	cfg, err := config.Load(opts.ConfigFile)
	switch {
	case err == nil:
	case opts.ConfigFile == "" && perrors.Is(err, perrors.ErrCodeConfigNotFound):
		cfg = config.Default()
	default:
		return nil, opts, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, opts, err
	}

	logging.Setup(cfg.Logging, logging.Options{
		Verbose: opts.Verbose,
		JSON:    opts.JSONOutput,
		Output:  cmd.ErrOrStderr(),
	})
	logger := logging.NewLogger("cli")
	if cfg.ConfigPath != "" {
		logger.Debugf("Loaded config from %s", cfg.ConfigPath)
	} else {
		logger.Debug("No config file found, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
