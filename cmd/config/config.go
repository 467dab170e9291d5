package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-filegroups/pkg/fsx"
	"github.com/mattsolo1/grove-filegroups/pkg/models"
	"github.com/mattsolo1/grove-filegroups/pkg/service"
	"github.com/mattsolo1/grove-filegroups/pkg/store"
)

var (
	cfgFile           string
	WorkspaceOverride string
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "fg")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FG")

	viper.SetDefault("data_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "fg"))
	viper.SetDefault("display_mode", string(models.DisplayFlat))
	viper.SetDefault("auto_reveal", true)
	viper.SetDefault("collapse_inactive", false)
	viper.SetDefault("debug", false)

	// A missing config file is normal; defaults and env cover it.
	_ = viper.ReadInConfig()
}

// Settings decodes the effective settings snapshot from viper.
func Settings() (models.Settings, error) {
	settings := models.DefaultSettings()
	if err := mapstructure.Decode(viper.AllSettings(), &settings); err != nil {
		return settings, fmt.Errorf("decode settings: %w", err)
	}
	switch settings.DisplayMode {
	case models.DisplayFlat, models.DisplayFullPaths:
	default:
		return settings, fmt.Errorf("invalid display_mode: %q", settings.DisplayMode)
	}
	return settings, nil
}

// NewLogger builds the shared logger the way the rest of the tool expects
// it: quiet on stderr unless debugging is on.
func NewLogger(settings models.Settings) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if settings.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// InitService locates the workspace and builds the engine.
func InitService() (*service.Service, error) {
	settings, err := Settings()
	if err != nil {
		return nil, err
	}

	ws := WorkspaceOverride
	if ws == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		ws = findWorkspaceRoot(cwd)
	}

	logger := NewLogger(settings)
	svc, err := service.New(&service.Config{
		WorkspaceRoot: ws,
		DataDir:       viper.GetString("data_dir"),
		Settings:      settings,
	}, fsx.NewOS(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize service: %w", err)
	}
	return svc, nil
}

// findWorkspaceRoot walks up from start looking for a directory carrying a
// groups config dir or a git repository; falls back to start itself.
func findWorkspaceRoot(start string) string {
	current := start
	for {
		if _, err := os.Stat(filepath.Join(current, store.ConfigDirName)); err == nil {
			return current
		}
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current
		}

		parent := filepath.Dir(current)
		if parent == current {
			return start
		}
		current = parent
	}
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/fg/config.yaml)")
	cmd.PersistentFlags().StringVarP(&WorkspaceOverride, "workspace", "W", "", "Override workspace root by path")
}
