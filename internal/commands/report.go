package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/reports"
)

func newReportCommand() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Financial reports",
	}
	reportCmd.PersistentFlags().String("dir", ".", "ledger directory")
	reportCmd.PersistentFlags().String("from", "", "period start YYYY-MM-DD")
	reportCmd.PersistentFlags().String("to", "", "period end YYYY-MM-DD")
	reportCmd.PersistentFlags().String("as-of", "", "as-of date YYYY-MM-DD (default today)")

	reportCmd.AddCommand(newReportPnlCommand())
	reportCmd.AddCommand(newReportBalanceSheetCommand())
	reportCmd.AddCommand(newReportCashflowCommand())
	reportCmd.AddCommand(newReportAgingCommand())
	reportCmd.AddCommand(newReportTaxCommand())
	return reportCmd
}

// reportPeriod reads the --from/--to flags; defaults to the current
// calendar year.
func reportPeriod(cmd *cobra.Command) (time.Time, time.Time, error) {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	now := time.Now().UTC()
	from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC)

	var err error
	if fromStr != "" {
		if from, err = parseDate(fromStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toStr != "" {
		if to, err = parseDate(toStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}

func reportAsOf(cmd *cobra.Command) (time.Time, error) {
	asOf, _ := cmd.Flags().GetString("as-of")
	return parseDate(asOf)
}

func newReportPnlCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pnl",
		Short: "Profit and loss for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			from, to, err := reportPeriod(cmd)
			if err != nil {
				return err
			}

			pl, err := a.reports.ProfitAndLoss(from, to)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REVENUE\t")
			for _, l := range pl.Revenue {
				fmt.Fprintf(tw, "  %s %s\t%s\n", l.Code, l.Name, l.Amount.StringFixed(2))
			}
			fmt.Fprintf(tw, "  total\t%s\n", pl.RevenueTotal.StringFixed(2))
			fmt.Fprintln(tw, "EXPENSES\t")
			for _, l := range pl.Expenses {
				fmt.Fprintf(tw, "  %s %s\t%s\n", l.Code, l.Name, l.Amount.StringFixed(2))
			}
			fmt.Fprintf(tw, "  total\t%s\n", pl.ExpenseTotal.StringFixed(2))
			fmt.Fprintf(tw, "NET INCOME\t%s\n", pl.NetIncome.StringFixed(2))
			return tw.Flush()
		},
	}
}

func newReportBalanceSheetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance-sheet",
		Short: "Balance sheet as of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			asOf, err := reportAsOf(cmd)
			if err != nil {
				return err
			}

			bs, err := a.reports.BalanceSheet(asOf)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			section := func(name string, s reports.Section) {
				fmt.Fprintf(tw, "%s\t\n", name)
				for _, l := range s.Lines {
					fmt.Fprintf(tw, "  %s %s\t%s\n", l.Code, l.Name, l.Amount.StringFixed(2))
				}
				fmt.Fprintf(tw, "  total\t%s\n", s.Total.StringFixed(2))
			}
			section("ASSETS", bs.Assets)
			section("LIABILITIES", bs.Liabilities)
			section("EQUITY", bs.Equity)
			fmt.Fprintf(tw, "CURRENT EARNINGS\t%s\n", bs.CurrentEarnings.StringFixed(2))
			return tw.Flush()
		},
	}
}

func newReportCashflowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cashflow",
		Short: "Cash flow for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			from, to, err := reportPeriod(cmd)
			if err != nil {
				return err
			}

			cf, err := a.reports.CashFlow(from, to)
			if err != nil {
				return err
			}
			fmt.Printf("payments received  %s\n", cf.PaymentsReceived.StringFixed(2))
			fmt.Printf("payments sent      %s\n", cf.PaymentsSent.StringFixed(2))
			fmt.Printf("expenses paid      %s\n", cf.ExpensesPaid.StringFixed(2))
			fmt.Printf("net cash           %s\n", cf.Net.StringFixed(2))
			return nil
		},
	}
}

func newReportAgingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "aging",
		Short: "Accounts receivable aging as of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			asOf, err := reportAsOf(cmd)
			if err != nil {
				return err
			}

			r, err := a.reports.ARAging(asOf)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tDUE\tDAYS\tBUCKET\tAMOUNT")
			for _, inv := range r.Invoices {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					inv.Number, inv.DueDate.Format("2006-01-02"), inv.DaysPastDue, inv.Bucket, inv.AmountDue.StringFixed(2))
			}
			tw.Flush()
			for _, b := range []reports.AgingBucket{
				reports.BucketCurrent, reports.Bucket1To30, reports.Bucket31To60, reports.Bucket61To90, reports.BucketOver90,
			} {
				fmt.Printf("%-8s %s\n", b, r.Buckets[b].StringFixed(2))
			}
			fmt.Printf("total    %s\n", r.Total.StringFixed(2))
			return nil
		},
	}
}

func newReportTaxCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tax",
		Short: "Tax collected vs paid for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			from, to, err := reportPeriod(cmd)
			if err != nil {
				return err
			}

			ts, err := a.reports.TaxSummary(from, to)
			if err != nil {
				return err
			}
			fmt.Printf("tax collected  %s\n", ts.TaxCollected.StringFixed(2))
			fmt.Printf("tax paid       %s\n", ts.TaxPaid.StringFixed(2))
			fmt.Printf("net owed       %s\n", ts.NetOwed.StringFixed(2))
			return nil
		},
	}
}
