package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
)

func newImportCommand() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Bank feed import and reconciliation",
	}
	importCmd.PersistentFlags().String("dir", ".", "ledger directory")
	importCmd.AddCommand(newImportBankCommand())
	importCmd.AddCommand(newImportUnmatchedCommand())
	importCmd.AddCommand(newImportMatchCommand())
	return importCmd
}

func newImportBankCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "bank <csv-file>",
		Short: "Import a bank CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			res, err := a.feed.Import(format, f)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d transaction(s), skipped %d already present\n", res.Imported, res.Skipped)
			return a.audit("bank_import",
				fmt.Sprintf("Imported %d rows from %s (%s)", res.Imported, args[0], format), "")
		},
	}

	cmd.Flags().StringVar(&format, "format", "generic", "CSV format: generic|chase")
	return cmd
}

func newImportUnmatchedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unmatched",
		Short: "List imported transactions awaiting reconciliation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			txns, err := a.feed.Unmatched()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tAMOUNT")
			for _, t := range txns {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Date.Format("2006-01-02"), t.Description, t.Amount.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func newImportMatchCommand() *cobra.Command {
	var kind string
	var entityID, txnID uint

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Reconcile an expense or payment against a bank transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			if err := a.feed.MatchTransaction(model.MatchKind(kind), entityID, txnID); err != nil {
				return err
			}
			fmt.Printf("Matched %s #%d to bank transaction #%d\n", kind, entityID, txnID)
			return a.audit("bank_matched",
				fmt.Sprintf("Matched %s %d to bank txn %d", kind, entityID, txnID),
				strconv.FormatUint(uint64(txnID), 10))
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "expense|payment (required)")
	_ = cmd.MarkFlagRequired("kind")
	cmd.Flags().UintVar(&entityID, "id", 0, "expense or payment id (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().UintVar(&txnID, "txn", 0, "bank transaction id (required)")
	_ = cmd.MarkFlagRequired("txn")

	return cmd
}
