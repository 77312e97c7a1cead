package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/verso/pkg/vers"
)

func newPutCmd() *cobra.Command {
	var (
		putID     string
		putFields []string
	)

	cmd := &cobra.Command{
		Use:   "put <kind>",
		Short: "Create or update a record",
		Long: `Put creates a new record of the given kind at the latest schema
version, or updates an existing one when --id is given. Fields are
key=value pairs; values that parse as JSON are decoded.

Example:
  verso put profile --field name=Ada --field email=ada@example.org
  verso put profile --id 0190... --field 'contacts={"email":"ada@example.org"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(cmd, args[0], putID, putFields)
		},
	}

	cmd.Flags().StringVar(&putID, "id", "", "update the record with this ID instead of creating one")
	cmd.Flags().StringArrayVar(&putFields, "field", nil, "field as key=value (repeatable)")
	return cmd
}

func runPut(cmd *cobra.Command, kind, id string, pairs []string) error {
	fields, err := parseFields(pairs)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Detach()

	var record *vers.Record
	if id == "" {
		chains, err := builtinChains()
		if err != nil {
			return err
		}
		chain, ok := chains[kind]
		if !ok {
			return fmt.Errorf("unknown kind %q", kind)
		}
		record, err = vers.NewRecord(chain, fields)
		if err != nil {
			return fmt.Errorf("create record: %w", err)
		}
	} else {
		record, err = st.Load(kind, id)
		if err != nil {
			return fmt.Errorf("load record: %w", err)
		}
		for name, value := range fields {
			if err := record.Set(name, value); err != nil {
				return fmt.Errorf("set %q: %w", name, err)
			}
		}
	}

	savedID, err := st.Save(kind, id, record)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}

	if flags.jsonMode {
		version, state := record.State()
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":      savedID,
			"kind":    kind,
			"version": version,
			"state":   state,
		})
	}
	if id == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %s\n", kind, savedID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s\n", kind, savedID)
	}
	return nil
}
