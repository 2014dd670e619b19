// Package expenses records vendor costs, pays them against the ledger,
// and passes billable expenses through to client invoices.
package expenses

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/invoicing"
	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/posting"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

// Service manages the expense lifecycle.
type Service struct {
	st       *store.Store
	poster   *posting.Poster
	invoices *invoicing.Service
}

// NewService creates a Service. The invoicing service is only needed
// for BillToInvoice and may be nil otherwise.
func NewService(st *store.Store, poster *posting.Poster, invoices *invoicing.Service) *Service {
	return &Service{st: st, poster: poster, invoices: invoices}
}

// RecordParams describes a new expense.
type RecordParams struct {
	VendorID          uint
	Description       string
	Amount            decimal.Decimal // pre-tax
	TaxAmount         decimal.Decimal
	CategoryAccountID uint
	Date              time.Time
	Billable          bool
	BillableClientID  uint
}

// Record validates and persists an unpaid expense. The vendor's balance
// projects what is owed, so it grows by the expense total.
func (s *Service) Record(params RecordParams) (*model.Expense, error) {
	if params.Description == "" {
		return nil, model.ValidationError{Field: "description", Reason: "required"}
	}
	if !params.Amount.IsPositive() {
		return nil, model.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if params.TaxAmount.IsNegative() {
		return nil, model.ValidationError{Field: "tax_amount", Reason: "must not be negative"}
	}
	if params.Date.IsZero() {
		return nil, model.ValidationError{Field: "date", Reason: "required"}
	}
	if params.Billable && params.BillableClientID == 0 {
		return nil, model.ValidationError{Field: "billable_client_id", Reason: "required for a billable expense"}
	}

	category, err := s.st.AccountByID(params.CategoryAccountID)
	if err != nil {
		return nil, err
	}
	if category.Type != model.AccountTypeExpense {
		return nil, model.ValidationError{Field: "category_account_id", Reason: fmt.Sprintf("account %s is %s, not expense", category.Code, category.Type)}
	}

	var exp *model.Expense
	err = s.st.InTx(func(tx *store.Store) error {
		vendor, err := tx.VendorByID(params.VendorID)
		if err != nil {
			return err
		}
		exp = &model.Expense{
			VendorID:          params.VendorID,
			Description:       params.Description,
			Amount:            params.Amount,
			TaxAmount:         params.TaxAmount,
			CategoryAccountID: params.CategoryAccountID,
			Date:              params.Date,
			Billable:          params.Billable,
			BillableClientID:  params.BillableClientID,
		}
		if err := tx.CreateExpense(exp); err != nil {
			return fmt.Errorf("persisting expense: %w", err)
		}
		vendor.Balance = vendor.Balance.Add(exp.Total())
		return tx.SaveVendor(vendor)
	})
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// MarkPaid posts the payment journal entry and flags the expense paid.
func (s *Service) MarkPaid(expenseID uint, paidAt time.Time) (*model.Expense, error) {
	if paidAt.IsZero() {
		return nil, model.ValidationError{Field: "paid_at", Reason: "required"}
	}
	var exp *model.Expense
	err := s.st.InTx(func(tx *store.Store) error {
		var err error
		exp, err = tx.ExpenseByID(expenseID)
		if err != nil {
			return err
		}
		if exp.Paid {
			return model.InvalidTransitionError{Entity: "expense", From: "paid", To: "paid"}
		}
		exp.Paid = true
		exp.PaidAt = &paidAt
		if _, err := s.poster.PostExpensePaid(tx, exp); err != nil {
			return err
		}
		if err := tx.SaveExpense(exp); err != nil {
			return err
		}
		vendor, err := tx.VendorByID(exp.VendorID)
		if err != nil {
			return err
		}
		vendor.Balance = vendor.Balance.Sub(exp.Total())
		return tx.SaveVendor(vendor)
	})
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// BillToInvoice attaches a billable expense to a draft invoice as a
// line at cost. The line carries no tax rate of its own; the invoice's
// tax settings govern it from there.
func (s *Service) BillToInvoice(expenseID, invoiceID uint) (*model.Invoice, error) {
	exp, err := s.st.ExpenseByID(expenseID)
	if err != nil {
		return nil, err
	}
	if !exp.Billable {
		return nil, model.ValidationError{Field: "expense_id", Reason: "expense is not billable"}
	}
	if exp.BilledInvoiceID != 0 {
		return nil, model.ValidationError{Field: "expense_id", Reason: "expense already billed"}
	}

	inv, err := s.invoices.Get(invoiceID)
	if err != nil {
		return nil, err
	}
	if exp.BillableClientID != 0 && inv.ClientID != exp.BillableClientID {
		return nil, model.ValidationError{Field: "invoice_id", Reason: "invoice belongs to a different client"}
	}

	inv, err = s.invoices.AddItem(invoiceID, invoicing.ItemParams{
		Description: exp.Description,
		Quantity:    decimal.New(1, 0),
		UnitPrice:   exp.Total(),
	})
	if err != nil {
		return nil, err
	}
	exp.BilledInvoiceID = invoiceID
	if err := s.st.SaveExpense(exp); err != nil {
		return nil, err
	}
	return inv, nil
}

// Get loads one expense.
func (s *Service) Get(expenseID uint) (*model.Expense, error) {
	return s.st.ExpenseByID(expenseID)
}
