package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <kind>",
		Short: "Rewrite lagging snapshots at the latest schema version",
		Long: `Migrate upgrades every snapshot of the kind stored at a version
older than the chain's latest and writes it back. The superseded rows
are preserved in history.

Example:
  verso migrate profile`,
		Args: cobra.ExactArgs(1),
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	kind := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Detach()

	migrated, err := st.Migrate(kind)
	if err != nil {
		return fmt.Errorf("migrate %q: %w", kind, err)
	}

	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"kind":     kind,
			"migrated": migrated,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d snapshot(s) of %q\n", migrated, kind)
	return nil
}
