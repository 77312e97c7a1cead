package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(2),
		RunE:  runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	kind, id := args[0], args[1]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Detach()

	if err := st.Delete(kind, id); err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s: %s\n", kind, id)
	return nil
}
