/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the enro commands. Provides configuration loading,
flag binding, logging setup and terminal detection used across all command
implementations.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kleascm/enro/pkg/config"
	"github.com/kleascm/enro/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is reported by --version and stamped into reports.
const Version = "1.0.0"

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// ENRO_MAX_BYTES, ENRO_THRESHOLDS_ENCRYPTED, ...
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	return nil
}

// BindFlags binds a command's flags to viper keys. Flags are bound when the command runs,
// so commands that share a key do not override each other's bindings.
func BindFlags(keys map[string]string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var err error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			key, ok := keys[f.Name]
			if !ok || err != nil {
				return
			}
			err = viper.BindPFlag(key, f)
		})
		return err
	}
}

// SetupLogging creates the logger described by the persistent logging flags.
func SetupLogging() (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(strings.ToLower(viper.GetString("log_level")))
	cfg.Format = logging.LogFormat(strings.ToLower(viper.GetString("log_format")))
	cfg.OutputDir = viper.GetString("log_dir")
	if n := viper.GetInt("log_max_files"); n > 0 {
		cfg.MaxFiles = n
	}
	cfg.Compress = viper.GetBool("log_compress")
	cfg.Colors = !viper.GetBool("no_color") && isTerminal(os.Stderr)

	logger, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// scanConfig builds and validates the scan configuration for paths.
func scanConfig(paths []string) (*config.ScanConfig, error) {
	viper.Set("paths", paths)
	cfg := config.FromViper(viper.GetViper())
	if viper.GetBool("no_sniff") {
		cfg.Sniff = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
