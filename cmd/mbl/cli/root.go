// Package cli implements the mbl command tree on top of package experiment,
// grounded in the NikeGunn-tutu `internal/cli` root/init registration
// pattern.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wlattner/mbl/telemetry"
)

var log zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "mbl",
	Short: "A memory-based (k-NN) classifier engine",
	Long: `mbl trains and queries an indexed instance base using IB1, IGTree,
TRIBL or TRIBL2 neighbour search, weighted feature metrics, and decay-
weighted voting.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		log = telemetry.NewLogger(os.Stderr, telemetry.LevelForVerbosity(verbose), true)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().String("options", "", "path to a KEY: value option file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
