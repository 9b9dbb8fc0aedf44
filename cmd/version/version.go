package version

import (
	"github.com/resonatehq/console/internal/version"
	"github.com/spf13/cobra"
)

func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the console version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("console version", version.Full())
		},
	}

	// version needs neither config nor backends
	cmd.PersistentPreRun = func(*cobra.Command, []string) {}

	return cmd
}
