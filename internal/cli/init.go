package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize verso storage",
		Long:  "Create configuration and data directories, then initialize the storage backend.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	// PersistentPreRunE already created the config directory and a default
	// config.yaml. An explicit --data-dir is persisted so later runs find
	// the same database without the flag.
	if flags.dataDir != "" {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		dataDir, err := resolveDataDir()
		if err != nil {
			return err
		}
		if err := writeConfig(configDir, dataDir); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		configDataDir = dataDir
	}

	// Attaching creates the data directory and the schema.
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := st.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Verso initialized successfully")
	return nil
}
