package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/payments"
)

func newPayCommand() *cobra.Command {
	var amount, method, payDate, externalRef string

	cmd := &cobra.Command{
		Use:   "pay <invoice-number>",
		Short: "Record a payment against an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			inv, err := invoiceByNumber(a, args[0])
			if err != nil {
				return err
			}

			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", amount, err)
			}
			when, err := parseDate(payDate)
			if err != nil {
				return err
			}

			_, err = a.alloc.Allocate(payments.AllocateParams{
				Amount:      amt,
				Method:      method,
				Date:        when,
				ExternalRef: externalRef,
				Splits:      []payments.Split{{InvoiceID: inv.ID, Amount: amt}},
			})
			if err != nil {
				return err
			}

			updated, err := a.invoices.Get(inv.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Applied %s to %s; status %s, %s still due\n",
				amt.StringFixed(2), updated.Number, updated.Status, updated.AmountDue().StringFixed(2))
			return a.audit("payment_allocated",
				fmt.Sprintf("Allocated %s to %s", amt.StringFixed(2), updated.Number), updated.Number)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "payment amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&method, "method", "check", "payment method")
	cmd.Flags().StringVar(&payDate, "date", "", "payment date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&externalRef, "ref", "", "external capture reference")

	cmd.Flags().String("dir", ".", "ledger directory")
	return cmd
}
