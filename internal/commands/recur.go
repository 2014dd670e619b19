package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/recurring"
)

func newRecurCommand() *cobra.Command {
	recurCmd := &cobra.Command{
		Use:   "recur",
		Short: "Recurring schedule operations",
	}
	recurCmd.PersistentFlags().String("dir", ".", "ledger directory")
	recurCmd.AddCommand(newRecurAddCommand())
	recurCmd.AddCommand(newRecurRunCommand())
	return recurCmd
}

func newRecurAddCommand() *cobra.Command {
	var frequency, startDate, endDate string
	var interval, maxOccurrences int

	cmd := &cobra.Command{
		Use:   "add <template-invoice-number>",
		Short: "Schedule an invoice to recur",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			tmpl, err := invoiceByNumber(a, args[0])
			if err != nil {
				return err
			}

			start, err := parseDate(startDate)
			if err != nil {
				return err
			}
			params := recurring.CreateParams{
				TemplateInvoiceID: tmpl.ID,
				Frequency:         model.Frequency(frequency),
				Interval:          interval,
				StartDate:         start,
				MaxOccurrences:    maxOccurrences,
			}
			if endDate != "" {
				end, err := parseDate(endDate)
				if err != nil {
					return err
				}
				params.EndDate = &end
			}

			sc, err := a.sched.Create(params)
			if err != nil {
				return err
			}
			fmt.Printf("Schedule #%d: %s from %s, template %s\n",
				sc.ID, sc.Frequency, sc.NextDueDate.Format("2006-01-02"), tmpl.Number)
			return nil
		},
	}

	cmd.Flags().StringVar(&frequency, "every", "monthly", "weekly|biweekly|monthly|quarterly|yearly")
	cmd.Flags().IntVar(&interval, "interval", 1, "periods between runs")
	cmd.Flags().StringVar(&startDate, "start", "", "first run date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&endDate, "end", "", "last run date YYYY-MM-DD")
	cmd.Flags().IntVar(&maxOccurrences, "max", 0, "stop after this many invoices (0 = unlimited)")

	return cmd
}

func newRecurRunCommand() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate invoices for every due schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			when, err := parseDate(asOf)
			if err != nil {
				return err
			}

			generated, err := a.sched.Run(when)
			if err != nil {
				return err
			}
			for _, g := range generated {
				fmt.Printf("Schedule #%d generated %s dated %s\n", g.ScheduleID, g.InvoiceNumber, g.IssueDate.Format("2006-01-02"))
				if err := a.audit("schedule_run",
					fmt.Sprintf("Schedule %d generated %s", g.ScheduleID, g.InvoiceNumber), g.InvoiceNumber); err != nil {
					return err
				}
			}
			if len(generated) == 0 {
				fmt.Println("Nothing due.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "run as of date YYYY-MM-DD (default today)")
	return cmd
}
