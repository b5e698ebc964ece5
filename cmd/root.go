package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/regsweep/regsweep/pkg/logger"
)

var cfgFile string

// Build information, injected at link time.
var (
	BuildVersion = "dev"
	BuildCommit  = "none"
	BuildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "regsweep",
	Short: "Regsweep - registry tag retention tool",
	Long: `Regsweep prunes old container-image tags from an Artifactory-compatible
registry according to a declarative retention policy, always preserving a
minimum number of the newest tags per image.`,
	SilenceUsage: true,
}

func Execute(version, commit, date string) error {
	if version != "" {
		BuildVersion = version
	}
	if commit != "" {
		BuildCommit = commit
	}
	if date != "" {
		BuildDate = date
	}
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./regsweep.toml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config file in standard locations
		viper.SetConfigName("regsweep")
		viper.SetConfigType("toml")

		// Current directory (highest priority)
		viper.AddConfigPath(".")

		// User config directory
		if userConfigDir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(userConfigDir, "regsweep"))
		}

		// User home directory
		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".regsweep"))
		}

		// System-wide config directory
		viper.AddConfigPath("/etc/regsweep")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("Using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		logger.Fatal("Error reading config file", "path", cfgFile, "error", err)
	}
}
