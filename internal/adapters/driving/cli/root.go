package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lineage-cli/internal/logger"
)

// version is the CLI version, overridable at build time via ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Download a family tree from FamilySearch",
	Long: `Lineage retrieves a person-centric family tree from FamilySearch and
writes it as a GEDCOM 5.5.1 or Gramps XML 1.7.1 document.

Start from one or more individuals, expand ancestors, descendants or all
relatives within a distance, and optionally enrich the tree with marriage
details, contributor lists and temple ordinances.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "increase output verbosity")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
