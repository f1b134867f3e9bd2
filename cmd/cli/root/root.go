package root

import (
	"github.com/crucial707/studybuddy/cmd/cli/config"
	"github.com/spf13/cobra"
)

// DataDir is bound to the --data-dir persistent flag.
var DataDir = config.DataDir()

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:          "studybuddy",
	Short:        "Study Buddy admin CLI",
	Long:         "Command line tools that work directly on a Study Buddy data directory.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&DataDir, "data-dir", DataDir, "Study Buddy data directory (env DATA_DIR)")
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
