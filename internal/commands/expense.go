package commands

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/expenses"
)

func newExpenseCommand() *cobra.Command {
	expenseCmd := &cobra.Command{
		Use:   "expense",
		Short: "Expense operations",
	}
	expenseCmd.PersistentFlags().String("dir", ".", "ledger directory")
	expenseCmd.AddCommand(newExpenseAddCommand())
	expenseCmd.AddCommand(newExpensePayCommand())
	expenseCmd.AddCommand(newExpenseBillCommand())
	return expenseCmd
}

func newExpenseAddCommand() *cobra.Command {
	var vendorID, billableClientID uint
	var description, amount, taxAmount, category, expenseDate string
	var billable bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an unpaid expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", amount, err)
			}
			taxAmt := decimal.Zero
			if taxAmount != "" {
				if taxAmt, err = decimal.NewFromString(taxAmount); err != nil {
					return fmt.Errorf("parsing tax %q: %w", taxAmount, err)
				}
			}
			when, err := parseDate(expenseDate)
			if err != nil {
				return err
			}
			acct, err := a.st.AccountByCode(category)
			if err != nil {
				return err
			}

			exp, err := a.expenses.Record(expenses.RecordParams{
				VendorID:          vendorID,
				Description:       description,
				Amount:            amt,
				TaxAmount:         taxAmt,
				CategoryAccountID: acct.ID,
				Date:              when,
				Billable:          billable,
				BillableClientID:  billableClientID,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Recorded expense #%d %s for %s\n", exp.ID, exp.Description, exp.Total().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().UintVar(&vendorID, "vendor", 0, "vendor id (required)")
	_ = cmd.MarkFlagRequired("vendor")
	cmd.Flags().StringVar(&description, "desc", "", "description (required)")
	_ = cmd.MarkFlagRequired("desc")
	cmd.Flags().StringVar(&amount, "amount", "", "pre-tax amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&taxAmount, "tax", "", "tax amount")
	cmd.Flags().StringVar(&category, "category", "", "expense account code (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&expenseDate, "date", "", "expense date YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&billable, "billable", false, "billable to a client")
	cmd.Flags().UintVar(&billableClientID, "client", 0, "billable client id")

	return cmd
}

func newExpensePayCommand() *cobra.Command {
	var paidDate string

	cmd := &cobra.Command{
		Use:   "pay <expense-id>",
		Short: "Mark an expense paid and post it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			expID, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("parsing expense id %q: %w", args[0], err)
			}
			when, err := parseDate(paidDate)
			if err != nil {
				return err
			}

			exp, err := a.expenses.MarkPaid(uint(expID), when)
			if err != nil {
				return err
			}
			fmt.Printf("Paid expense #%d %s (%s)\n", exp.ID, exp.Description, exp.Total().StringFixed(2))
			return a.audit("expense_paid",
				fmt.Sprintf("Paid %s for %s", exp.Description, exp.Total().StringFixed(2)),
				strconv.FormatUint(uint64(exp.ID), 10))
		},
	}

	cmd.Flags().StringVar(&paidDate, "date", "", "paid date YYYY-MM-DD (default today)")
	return cmd
}

func newExpenseBillCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bill <expense-id> <invoice-number>",
		Short: "Attach a billable expense to a draft invoice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			expID, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("parsing expense id %q: %w", args[0], err)
			}
			inv, err := invoiceByNumber(a, args[1])
			if err != nil {
				return err
			}

			updated, err := a.expenses.BillToInvoice(uint(expID), inv.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Billed expense #%d to %s; total is now %s\n", expID, updated.Number, updated.Total.StringFixed(2))
			return nil
		},
	}
}
