package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/accounts"
	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/posting"
)

func newExportCommand() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export ledger data as CSV",
	}
	exportCmd.PersistentFlags().String("dir", ".", "ledger directory")
	exportCmd.PersistentFlags().String("out", "", "output file (default stdout)")
	exportCmd.AddCommand(newExportChartCommand())
	exportCmd.AddCommand(newExportJournalCommand())
	return exportCmd
}

func exportWriter(cmd *cobra.Command) (*os.File, func(), error) {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", out, err)
	}
	return f, func() { f.Close() }, nil
}

func newExportChartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chart",
		Short: "Export the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			accts, err := a.st.Accounts()
			if err != nil {
				return err
			}
			w, done, err := exportWriter(cmd)
			if err != nil {
				return err
			}
			defer done()
			return accounts.WriteChart(w, accts)
		},
	}
}

func newExportJournalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "journal",
		Short: "Export all journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			entries, err := a.st.JournalEntries()
			if err != nil {
				return err
			}
			accts, err := a.st.Accounts()
			if err != nil {
				return err
			}
			byID := make(map[uint]model.Account, len(accts))
			for _, acct := range accts {
				byID[acct.ID] = acct
			}

			w, done, err := exportWriter(cmd)
			if err != nil {
				return err
			}
			defer done()
			return posting.WriteJournal(w, entries, byID)
		},
	}
}
