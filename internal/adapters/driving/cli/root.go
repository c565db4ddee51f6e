// Package cli wires the cobra command tree for the retaind binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/retainhq/retain/internal/logger"
)

// version is stamped by Execute.
var version = "dev"

var (
	flagConfigDir string
	flagDataDir   string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "retaind",
	Short: "Knowledge retention backend",
	Long: `retaind stores documents in named knowledge bases, extracts their
text, and uses an AI provider to quiz you on the material and track
how well you retain it.

Run "retaind serve" to start the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.retain)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "database directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the command tree with the given build version.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.Execute()
}
