package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/verso/pkg/vers"
)

func newGetCmd() *cobra.Command {
	var getAt int

	cmd := &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Fetch a record",
		Long: `Get loads the record with the given ID at its chain's latest
version. With --at, the record is projected down to an older schema
version through a read-only view.

Example:
  verso get profile 0190...
  verso get profile 0190... --at 1
  verso get profile 0190... --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], args[1], getAt)
		},
	}

	cmd.Flags().IntVar(&getAt, "at", 0, "project the record to this schema version (0 = latest)")
	return cmd
}

func runGet(cmd *cobra.Command, kind, id string, at int) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Detach()

	record, err := st.Load(kind, id)
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}

	version, state := record.State()
	if at != 0 && at != version {
		view, err := record.OlderView(at)
		if err != nil {
			return fmt.Errorf("project to version %d: %w", at, err)
		}
		if version, state, err = view.State(); err != nil {
			return fmt.Errorf("project to version %d: %w", at, err)
		}
	}

	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":      id,
			"kind":    kind,
			"version": version,
			"state":   state,
		})
	}
	printState(cmd, id, version, state)
	return nil
}

func printState(cmd *cobra.Command, id string, version int, state vers.State) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (version %d)\n", id, version)

	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%v\n", name, state[name])
	}
	w.Flush()
}
