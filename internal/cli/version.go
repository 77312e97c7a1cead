package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the verso release version.
const Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/verso"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the verso version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "verso v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
