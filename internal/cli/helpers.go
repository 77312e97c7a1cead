// Shared helpers for verso CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/verso/pkg/sqlite"
	"github.com/mesh-intelligence/verso/pkg/store"
)

// openStore resolves the data directory, creates a SQLite store, registers
// the built-in chains, and attaches. The caller must defer st.Detach().
func openStore() (store.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	st := sqlite.NewStore()
	chains, err := builtinChains()
	if err != nil {
		return nil, err
	}
	for kind, chain := range chains {
		if err := st.Register(kind, chain); err != nil {
			return nil, fmt.Errorf("register %q: %w", kind, err)
		}
	}

	cfg := store.Config{
		Backend: store.BackendSQLite,
		DataDir: dataDir,
	}
	if err := st.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	return st, nil
}

// parseFields converts key=value arguments into a field mapping. Values that
// parse as JSON (numbers, booleans, objects, arrays) are decoded; everything
// else is kept as a string.
func parseFields(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("field %q is not in key=value form", pair)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			fields[key] = decoded
		} else {
			fields[key] = value
		}
	}
	return fields, nil
}

// printJSON writes the value as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintf(w, "%s\n", data)
	return nil
}
