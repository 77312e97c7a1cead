package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/verso/pkg/vers"
)

func newChainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chain [kind]",
		Short: "Describe the schema chain of a kind",
		Long: `Chain prints the schema versions of a kind: the attributes each
version declares and the upgrade and downgrade edges it owns.

Without an argument, the registered kinds are listed.

Example:
  verso chain
  verso chain profile
  verso chain profile --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChain,
	}
}

func runChain(cmd *cobra.Command, args []string) error {
	chains, err := builtinChains()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		kinds := make([]string, 0, len(chains))
		for kind := range chains {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		if flags.jsonMode {
			return printJSON(cmd.OutOrStdout(), kinds)
		}
		for _, kind := range kinds {
			fmt.Fprintln(cmd.OutOrStdout(), kind)
		}
		return nil
	}

	kind := args[0]
	chain, ok := chains[kind]
	if !ok {
		return fmt.Errorf("unknown kind %q", kind)
	}

	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), describeChain(chain))
	}
	printChainTable(cmd, kind, chain)
	return nil
}

// versionDescription is the JSON shape of one schema version.
type versionDescription struct {
	Version          int      `json:"version"`
	Attributes       []string `json:"attributes"`
	UpgradeSources   []int    `json:"upgrade_sources,omitempty"`
	DowngradeTargets []int    `json:"downgrade_targets,omitempty"`
}

func describeChain(chain *vers.Chain) []versionDescription {
	descriptions := make([]versionDescription, 0, chain.Latest())
	for n := 1; n <= chain.Latest(); n++ {
		sv, _ := chain.Version(n)
		attrs := sv.Attributes()
		names := make([]string, len(attrs))
		for i, attr := range attrs {
			names[i] = attr.Name
		}
		descriptions = append(descriptions, versionDescription{
			Version:          n,
			Attributes:       names,
			UpgradeSources:   sv.UpgradeSources(),
			DowngradeTargets: sv.DowngradeTargets(),
		})
	}
	return descriptions
}

func printChainTable(cmd *cobra.Command, kind string, chain *vers.Chain) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "VERSION\tATTRIBUTES\tUPGRADES FROM\tDOWNGRADES TO\n")
	for _, d := range describeChain(chain) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			d.Version,
			strings.Join(d.Attributes, ", "),
			joinInts(d.UpgradeSources),
			joinInts(d.DowngradeTargets),
		)
	}
	w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "Kind %q: %d version(s), latest %d\n", kind, chain.Latest(), chain.Latest())
}

func joinInts(ns []int) string {
	if len(ns) == 0 {
		return "-"
	}
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
