package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgerbook",
		Short:   "Double-entry accounting for small businesses",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAccountCommand())
	rootCmd.AddCommand(newTaxCommand())
	rootCmd.AddCommand(newClientCommand())
	rootCmd.AddCommand(newVendorCommand())
	rootCmd.AddCommand(newInvoiceCommand())
	rootCmd.AddCommand(newPayCommand())
	rootCmd.AddCommand(newExpenseCommand())
	rootCmd.AddCommand(newRecurCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newExportCommand())

	return rootCmd
}
