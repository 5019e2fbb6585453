// Package commands implements the webwatch command line.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/aleister1102/webwatch/internal/config"
	"github.com/aleister1102/webwatch/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "webwatch",
	Short:         "webwatch watches web pages for changes and reports them over MQTT.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
}

// ExecuteContext runs the command line and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration. Commands that talk to a device
// validate it in full.
func loadConfig(validate bool) (*config.GlobalConfig, error) {
	cfg, err := config.LoadGlobalConfig(configPath, zerolog.Nop())
	if err != nil {
		return nil, err
	}
	if validate {
		if err := config.ValidateConfig(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(cfg *config.GlobalConfig) (*logger.Logger, error) {
	return logger.NewLoggerBuilder().
		WithDeviceID(cfg.DeviceConfig.DeviceID).
		WithConfig(cfg.LogConfig).
		Build()
}

// quietLogger keeps one-shot commands from mixing logs into their output.
func quietLogger(cfg *config.GlobalConfig) zerolog.Logger {
	l, err := logger.NewLoggerBuilder().
		WithConsole(os.Stderr).
		WithConfig(cfg.LogConfig).
		Build()
	if err != nil {
		return zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	}
	if l.Level() < zerolog.WarnLevel {
		_ = l.SetLevel("warn")
	}
	return *l.GetZerolog()
}
