// Package payments applies incoming money to invoices. Allocation,
// invoice status recomputation and the journal posting commit as one
// transaction; concurrent allocations against an invoice serialize on
// its row so two payments can never jointly overpay.
package payments

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/posting"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

// Allocator records payments and their allocations.
type Allocator struct {
	st     *store.Store
	poster *posting.Poster
}

// NewAllocator creates an Allocator.
func NewAllocator(st *store.Store, poster *posting.Poster) *Allocator {
	return &Allocator{st: st, poster: poster}
}

// Split directs part of a payment at one invoice.
type Split struct {
	InvoiceID uint
	Amount    decimal.Decimal
}

// AllocateParams describes one received payment and how to apply it.
type AllocateParams struct {
	Amount      decimal.Decimal
	Method      string
	Date        time.Time
	ExternalRef string
	Splits      []Split
}

// CaptureInput is what the payment-capture collaborator supplies. The
// core treats it purely as allocator input; it never calls out to
// capture funds.
type CaptureInput struct {
	Amount      decimal.Decimal
	ExternalRef string
	CapturedAt  time.Time
}

// FromCapture applies a captured payment in full to one invoice.
func (a *Allocator) FromCapture(invoiceID uint, in CaptureInput) (*model.Payment, error) {
	return a.Allocate(AllocateParams{
		Amount:      in.Amount,
		Method:      "card",
		Date:        in.CapturedAt,
		ExternalRef: in.ExternalRef,
		Splits:      []Split{{InvoiceID: invoiceID, Amount: in.Amount}},
	})
}

// Receive applies a payment in full to one invoice.
func (a *Allocator) Receive(invoiceID uint, amount decimal.Decimal, method string, paymentDate time.Time) (*model.Payment, error) {
	return a.Allocate(AllocateParams{
		Amount: amount,
		Method: method,
		Date:   paymentDate,
		Splits: []Split{{InvoiceID: invoiceID, Amount: amount}},
	})
}

// Allocate validates and persists a payment with its allocations,
// advances each invoice's paid amount and status, and posts the cash
// movement. All of it commits or none of it does.
func (a *Allocator) Allocate(params AllocateParams) (*model.Payment, error) {
	if !params.Amount.IsPositive() {
		return nil, model.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if len(params.Splits) == 0 {
		return nil, model.ValidationError{Field: "splits", Reason: "at least one allocation required"}
	}
	if params.Date.IsZero() {
		return nil, model.ValidationError{Field: "date", Reason: "required"}
	}

	allocated := decimal.Zero
	for _, sp := range params.Splits {
		if !sp.Amount.IsPositive() {
			return nil, model.ValidationError{Field: "splits", Reason: "allocation amounts must be positive"}
		}
		allocated = allocated.Add(sp.Amount)
	}
	if allocated.GreaterThan(params.Amount) {
		return nil, model.OverAllocationError{
			PaymentAmount: params.Amount.StringFixed(2),
			Allocated:     allocated.StringFixed(2),
		}
	}

	var payment *model.Payment
	err := a.st.InTx(func(tx *store.Store) error {
		payment = &model.Payment{
			Direction:   model.PaymentReceived,
			Amount:      params.Amount,
			Method:      params.Method,
			Date:        params.Date,
			ExternalRef: params.ExternalRef,
		}
		for _, sp := range params.Splits {
			payment.Allocations = append(payment.Allocations, model.PaymentAllocation{
				InvoiceID: sp.InvoiceID,
				Amount:    sp.Amount,
			})
		}
		if err := tx.CreatePayment(payment); err != nil {
			return fmt.Errorf("persisting payment: %w", err)
		}

		for _, sp := range params.Splits {
			if err := a.apply(tx, sp); err != nil {
				return err
			}
		}

		_, err := a.poster.PostPayment(tx, payment, allocated)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// apply advances one invoice under its row lock.
func (a *Allocator) apply(tx *store.Store, sp Split) error {
	inv, err := tx.InvoiceForUpdate(sp.InvoiceID)
	if err != nil {
		return err
	}
	if inv.Type != model.TypeInvoice {
		return model.ValidationError{Field: "invoice_id", Reason: fmt.Sprintf("%s documents do not take payments", inv.Type)}
	}
	if !inv.Status.Payable() {
		return model.InvalidTransitionError{Entity: "invoice", From: string(inv.Status), To: "payment"}
	}

	// The room check runs against the locked row, so two concurrent
	// payments cannot both see the same headroom.
	room := inv.AmountDue()
	if sp.Amount.GreaterThan(room) {
		return model.OverpaymentError{
			InvoiceNumber: inv.Number,
			Requested:     sp.Amount.StringFixed(2),
			Room:          room.StringFixed(2),
		}
	}

	inv.AmountPaid = inv.AmountPaid.Add(sp.Amount)
	next := model.StatusPartial
	if inv.AmountDue().IsZero() {
		next = model.StatusPaid
	}
	if inv.Status != next {
		if !inv.Status.CanTransition(next) {
			return model.InvalidTransitionError{Entity: "invoice", From: string(inv.Status), To: string(next)}
		}
		inv.Status = next
	}
	if err := tx.SaveInvoice(inv); err != nil {
		return err
	}

	client, err := tx.ClientByID(inv.ClientID)
	if err != nil {
		return err
	}
	client.Balance = client.Balance.Sub(sp.Amount)
	return tx.SaveClient(client)
}
