package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/verso/pkg/store"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "List stored snapshots of a kind",
		Long: `List shows every stored snapshot of the kind, most recently
updated first, at the schema version it was written at. Snapshots are
not upgraded by listing; use migrate to rewrite lagging snapshots.

Example:
  verso list profile
  verso list profile --json`,
		Args: cobra.ExactArgs(1),
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	kind := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Detach()

	snapshots, err := st.List(kind)
	if err != nil {
		return fmt.Errorf("list %q: %w", kind, err)
	}

	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), snapshots)
	}
	printSnapshotTable(cmd, snapshots)
	return nil
}

func printSnapshotTable(cmd *cobra.Command, snapshots []store.Snapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No snapshots found.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVERSION\tUPDATED")
	for _, snap := range snapshots {
		shortID := snap.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n",
			shortID,
			snap.Version,
			snap.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "Total: %d snapshot(s)\n", len(snapshots))
}
