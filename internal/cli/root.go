// Package cli implements lunchlyctl, the administrative command line for
// the lunchly service.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/lunchly/internal/logging"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "lunchlyctl",
	Short: "Administrative tasks for the lunchly reservation service",
	Long: `lunchlyctl manages the lunchly database and staff credentials.

Settings are read from the same environment variables as the server; a
.env file is loaded first when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing env file is not an error; the environment may already be set.
		_ = godotenv.Load(envFile)
		logging.Setup(logLevel, "text")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before running")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func Root() *cobra.Command {
	return rootCmd
}
