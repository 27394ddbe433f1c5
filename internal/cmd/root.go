package cmd

import (
	"strings"

	"github.com/codyrobertson/critical-claude-sub003/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "critical-claude",
	Short: "Task manager that syncs with the Claude Code todo list",
	Long: `Critical Claude keeps a local task store with a rich status model
(focused, blocked, archival states) and synchronizes it bidirectionally
with the simpler Claude Code todo list, resolving disagreements through
configurable conflict strategies.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/critical-claude/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/critical-claude")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CRITICAL_CLAUDE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., CRITICAL_CLAUDE_SYNC_DIRECTION for sync.direction
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
