package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/logging"
	"go.klb.dev/smartclip/internal/textpipe"
)

// envKeys maps flag names like no-header onto SMARTCLIP_NO_HEADER.
var envKeys = strings.NewReplacer("-", "_")

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and SMARTCLIP_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → SMARTCLIP_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("smartclip")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/smartclip/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/smartclip", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("SMARTCLIP")
	v.SetEnvKeyReplacer(envKeys)
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.Bool("debug", false, "enable debug logging (same as --log-level debug)")
	f.String("log-format", "auto", "log format: auto|text|json")
	f.String("log-level", "warn", "log level: debug|info|warn|error")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "path to config file (overrides auto-discovery)")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) *slog.Logger {
	level := logging.ParseLevel(v.GetString("log-level"))
	if v.GetBool("debug") {
		level = slog.LevelDebug
	}
	return logging.Setup(logging.ParseFormat(v.GetString("log-format")), level)
}

// textOptions maps the text flags onto pipeline options. Stripping is on
// unless --no-strip is given.
func textOptions(v *viper.Viper) textpipe.Options {
	return textpipe.Options{
		SuppressHeader: v.GetBool("no-header"),
		StripANSI:      !v.GetBool("no-strip"),
		MarkdownFence:  v.GetBool("code"),
		CRLF:           v.GetBool("crlf"),
	}
}
