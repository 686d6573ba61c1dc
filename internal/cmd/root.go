// Package cmd wires the code-help command line interface.
package cmd

import (
	"strings"

	"github.com/TejasriPacharu/code-help/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "code-help",
	Short: "Multi-specialist coding copilot server",
	Long: `code-help runs a session engine that routes coding questions through a
roster of specialists (triage, bug diagnosis, refactoring, test generation,
security review, documentation), streaming session state to connected
clients as each turn progresses.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/code-help/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CODEHELP")
	// CODEHELP_PROVIDER_NAME maps to provider.name and so on.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine, defaults apply.
	_ = viper.ReadInConfig()
}
