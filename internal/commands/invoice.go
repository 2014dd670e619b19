package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/invoicing"
	"github.com/ledgerbook-dev/ledgerbook/internal/model"
)

func newInvoiceCommand() *cobra.Command {
	invoiceCmd := &cobra.Command{
		Use:   "invoice",
		Short: "Invoice lifecycle operations",
	}
	invoiceCmd.PersistentFlags().String("dir", ".", "ledger directory")
	invoiceCmd.AddCommand(newInvoiceCreateCommand())
	invoiceCmd.AddCommand(newInvoiceItemCommand())
	invoiceCmd.AddCommand(newInvoiceDiscountCommand())
	invoiceCmd.AddCommand(newInvoiceIssueCommand())
	invoiceCmd.AddCommand(newInvoiceCancelCommand())
	invoiceCmd.AddCommand(newInvoiceCreditNoteCommand())
	invoiceCmd.AddCommand(newInvoiceShowCommand())
	invoiceCmd.AddCommand(newInvoiceListCommand())
	return invoiceCmd
}

// invoiceByNumber resolves a document number argument.
func invoiceByNumber(a *app, number string) (*model.Invoice, error) {
	return a.st.InvoiceByNumber(number)
}

func newInvoiceCreateCommand() *cobra.Command {
	var clientID uint
	var docType, issueDate, notes string
	var netDays int
	var taxRateID uint

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft invoice, estimate or credit note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			issued, err := parseDate(issueDate)
			if err != nil {
				return err
			}
			inv, err := a.invoices.CreateDraft(invoicing.CreateDraftParams{
				ClientID:  clientID,
				Type:      model.InvoiceType(docType),
				IssueDate: issued,
				NetDays:   netDays,
				TaxRateID: taxRateID,
				Notes:     notes,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created draft %s (due %s)\n", inv.Number, inv.DueDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().UintVar(&clientID, "client", 0, "client id (required)")
	_ = cmd.MarkFlagRequired("client")
	cmd.Flags().StringVar(&docType, "type", "invoice", "invoice|estimate|credit_note")
	cmd.Flags().StringVar(&issueDate, "date", "", "issue date YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&netDays, "net", 0, "payment terms in days (default client terms)")
	cmd.Flags().UintVar(&taxRateID, "tax-rate", 0, "invoice-level tax rate id")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")

	return cmd
}

func newInvoiceItemCommand() *cobra.Command {
	var description, quantity, unitPrice string
	var taxRateID, revenueAccountID uint

	cmd := &cobra.Command{
		Use:   "item <invoice-number>",
		Short: "Add a line to a draft",
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

			qty, err := decimal.NewFromString(quantity)
			if err != nil {
				return fmt.Errorf("parsing quantity %q: %w", quantity, err)
			}
			price, err := decimal.NewFromString(unitPrice)
			if err != nil {
				return fmt.Errorf("parsing price %q: %w", unitPrice, err)
			}

			updated, err := a.invoices.AddItem(inv.ID, invoicing.ItemParams{
				Description:      description,
				Quantity:         qty,
				UnitPrice:        price,
				TaxRateID:        taxRateID,
				RevenueAccountID: revenueAccountID,
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s total is now %s\n", updated.Number, updated.Total.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "desc", "", "item description (required)")
	_ = cmd.MarkFlagRequired("desc")
	cmd.Flags().StringVar(&quantity, "qty", "1", "quantity")
	cmd.Flags().StringVar(&unitPrice, "price", "", "unit price (required)")
	_ = cmd.MarkFlagRequired("price")
	cmd.Flags().UintVar(&taxRateID, "tax-rate", 0, "item tax rate id")
	cmd.Flags().UintVar(&revenueAccountID, "revenue-account", 0, "revenue account id")

	return cmd
}

func newInvoiceDiscountCommand() *cobra.Command {
	var discountType, value string

	cmd := &cobra.Command{
		Use:   "discount <invoice-number>",
		Short: "Set the invoice-level discount on a draft",
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
			v, err := decimal.NewFromString(value)
			if err != nil {
				return fmt.Errorf("parsing value %q: %w", value, err)
			}
			updated, err := a.invoices.SetDiscount(inv.ID, model.DiscountType(discountType), v)
			if err != nil {
				return err
			}
			fmt.Printf("%s total is now %s\n", updated.Number, updated.Total.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&discountType, "type", "percentage", "percentage|fixed")
	cmd.Flags().StringVar(&value, "value", "", "discount value (required)")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newInvoiceIssueCommand() *cobra.Command {
	var issueDate string

	cmd := &cobra.Command{
		Use:   "issue <invoice-number>",
		Short: "Issue a draft: post to the journal and mark sent",
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

			var asOf time.Time
			if issueDate != "" {
				if asOf, err = parseDate(issueDate); err != nil {
					return err
				}
			}
			issued, err := a.invoices.Issue(inv.ID, asOf)
			if err != nil {
				return err
			}
			fmt.Printf("Issued %s for %s, due %s\n", issued.Number, issued.Total.StringFixed(2), issued.DueDate.Format("2006-01-02"))
			return a.audit("invoice_issued", fmt.Sprintf("Issued %s for %s", issued.Number, issued.Total.StringFixed(2)), issued.Number)
		},
	}

	cmd.Flags().StringVar(&issueDate, "date", "", "issue date override YYYY-MM-DD")
	return cmd
}

func newInvoiceCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <invoice-number>",
		Short: "Cancel a draft or sent invoice",
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
			cancelled, err := a.invoices.Cancel(inv.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Cancelled %s\n", cancelled.Number)
			return a.audit("invoice_cancelled", "Cancelled "+cancelled.Number, cancelled.Number)
		},
	}
}

func newInvoiceCreditNoteCommand() *cobra.Command {
	var issueDate string

	cmd := &cobra.Command{
		Use:   "credit-note <invoice-number>",
		Short: "Create a reversing credit note for a posted invoice",
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
			asOf, err := parseDate(issueDate)
			if err != nil {
				return err
			}
			cn, err := a.invoices.CreateCreditNote(inv.ID, asOf)
			if err != nil {
				return err
			}
			fmt.Printf("Created draft credit note %s reversing %s; issue it to post\n", cn.Number, inv.Number)
			return nil
		},
	}

	cmd.Flags().StringVar(&issueDate, "date", "", "issue date YYYY-MM-DD (default today)")
	return cmd
}

func newInvoiceShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <invoice-number>",
		Short: "Show one invoice with items and status",
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
			full, err := a.invoices.Get(inv.ID)
			if err != nil {
				return err
			}

			fmt.Printf("%s  %s  status: %s\n", full.Number, full.Type, full.EffectiveStatus(time.Now().UTC()))
			fmt.Printf("issued %s, due %s\n", full.IssueDate.Format("2006-01-02"), full.DueDate.Format("2006-01-02"))
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, it := range full.Items {
				fmt.Fprintf(tw, "  %s\t%s x %s\t%s\n", it.Description, it.Quantity.String(), it.UnitPrice.StringFixed(2), it.LineTotal.StringFixed(2))
			}
			tw.Flush()
			fmt.Printf("subtotal %s  discount %s  tax %s  shipping %s\n",
				full.Subtotal.StringFixed(2), full.Discount.StringFixed(2), full.TaxAmount.StringFixed(2), full.Shipping.StringFixed(2))
			fmt.Printf("total %s  paid %s  due %s\n",
				full.Total.StringFixed(2), full.AmountPaid.StringFixed(2), full.AmountDue().StringFixed(2))
			return nil
		},
	}
}

func newInvoiceListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			open, err := a.st.OpenInvoices()
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tSTATUS\tDUE\tTOTAL\tDUE AMT")
			for i := range open {
				inv := &open[i]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					inv.Number, inv.EffectiveStatus(now), inv.DueDate.Format("2006-01-02"),
					inv.Total.StringFixed(2), inv.AmountDue().StringFixed(2))
			}
			return tw.Flush()
		},
	}
}
