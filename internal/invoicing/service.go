package invoicing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/id"
	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/posting"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

// Numbering maps document types to number prefixes. Each prefix keeps
// its own sequence.
type Numbering struct {
	Invoice    string
	Estimate   string
	CreditNote string
}

func (n Numbering) prefixFor(t model.InvoiceType) string {
	switch t {
	case model.TypeEstimate:
		return n.Estimate
	case model.TypeCreditNote:
		return n.CreditNote
	default:
		return n.Invoice
	}
}

// Service provides invoice operations: draft mutation, issuing (which
// posts to the journal), cancellation and credit notes.
type Service struct {
	st             *store.Store
	rates          RateResolver
	poster         *posting.Poster
	numbering      Numbering
	defaultNetDays int
}

// NewService creates an invoicing Service.
func NewService(st *store.Store, rates RateResolver, poster *posting.Poster, numbering Numbering, defaultNetDays int) *Service {
	if defaultNetDays <= 0 {
		defaultNetDays = 30
	}
	return &Service{st: st, rates: rates, poster: poster, numbering: numbering, defaultNetDays: defaultNetDays}
}

// WithStore returns a copy of the service bound to st, so callers can
// run invoice operations inside their own transaction scope.
func (s *Service) WithStore(st *store.Store) *Service {
	bound := *s
	bound.st = st
	return &bound
}

// CreateDraftParams holds the fields for a new draft document.
type CreateDraftParams struct {
	ClientID  uint
	Type      model.InvoiceType
	IssueDate time.Time
	NetDays   int // 0 = client terms, falling back to the ledger default
	TaxRateID uint
	Notes     string
	Meta      model.Extensions
}

// CreateDraft numbers and persists a new draft. Items are added while
// the document stays in draft.
func (s *Service) CreateDraft(params CreateDraftParams) (*model.Invoice, error) {
	if params.ClientID == 0 {
		return nil, model.ValidationError{Field: "client_id", Reason: "required"}
	}
	if params.Type == "" {
		params.Type = model.TypeInvoice
	}
	if params.IssueDate.IsZero() {
		return nil, model.ValidationError{Field: "issue_date", Reason: "required"}
	}

	client, err := s.st.ClientByID(params.ClientID)
	if err != nil {
		return nil, err
	}

	netDays := params.NetDays
	if netDays <= 0 {
		netDays = client.TermsNetDays
	}
	if netDays <= 0 {
		netDays = s.defaultNetDays
	}

	var inv *model.Invoice
	err = s.st.InTx(func(tx *store.Store) error {
		prefix := s.numbering.prefixFor(params.Type)
		seq, err := tx.NextDocSeq(prefix)
		if err != nil {
			return err
		}
		inv = &model.Invoice{
			Number:    id.FormatDocNumber(prefix, seq),
			Type:      params.Type,
			ClientID:  params.ClientID,
			Status:    model.StatusDraft,
			IssueDate: params.IssueDate,
			DueDate:   params.IssueDate.AddDate(0, 0, netDays),
			TaxRateID: params.TaxRateID,
			Notes:     params.Notes,
			Meta:      params.Meta,
		}
		return tx.CreateInvoice(inv)
	})
	if err != nil {
		return nil, fmt.Errorf("creating draft: %w", err)
	}
	return inv, nil
}

// ItemParams holds the fields for one invoice line.
type ItemParams struct {
	Description      string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	DiscountType     model.DiscountType
	DiscountValue    decimal.Decimal
	TaxRateID        uint
	RevenueAccountID uint
}

// AddItem appends a line to a draft and recomputes its totals.
func (s *Service) AddItem(invoiceID uint, params ItemParams) (*model.Invoice, error) {
	if params.Description == "" {
		return nil, model.ValidationError{Field: "description", Reason: "required"}
	}

	var inv *model.Invoice
	err := s.st.InTx(func(tx *store.Store) error {
		var err error
		inv, err = s.draftForUpdate(tx, invoiceID)
		if err != nil {
			return err
		}
		inv.Items = append(inv.Items, model.InvoiceItem{
			InvoiceID:        inv.ID,
			Description:      params.Description,
			Quantity:         params.Quantity,
			UnitPrice:        params.UnitPrice,
			DiscountType:     params.DiscountType,
			DiscountValue:    params.DiscountValue,
			TaxRateID:        params.TaxRateID,
			RevenueAccountID: params.RevenueAccountID,
		})
		return s.recompute(tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// RemoveItem deletes a line from a draft and recomputes its totals.
func (s *Service) RemoveItem(invoiceID, itemID uint) (*model.Invoice, error) {
	var inv *model.Invoice
	err := s.st.InTx(func(tx *store.Store) error {
		var err error
		inv, err = s.draftForUpdate(tx, invoiceID)
		if err != nil {
			return err
		}
		found := false
		kept := inv.Items[:0]
		for _, it := range inv.Items {
			if it.ID == itemID {
				found = true
				continue
			}
			kept = append(kept, it)
		}
		if !found {
			return model.NotFoundError{Entity: "invoice item", Ref: fmt.Sprintf("%d", itemID)}
		}
		inv.Items = kept
		if err := tx.DeleteItem(itemID); err != nil {
			return err
		}
		return s.recompute(tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// SetDiscount sets the invoice-level discount on a draft.
func (s *Service) SetDiscount(invoiceID uint, discountType model.DiscountType, value decimal.Decimal) (*model.Invoice, error) {
	if discountType != model.DiscountPercentage && discountType != model.DiscountFixed {
		return nil, model.ValidationError{Field: "discount_type", Reason: fmt.Sprintf("unknown discount type %q", discountType)}
	}
	var inv *model.Invoice
	err := s.st.InTx(func(tx *store.Store) error {
		var err error
		inv, err = s.draftForUpdate(tx, invoiceID)
		if err != nil {
			return err
		}
		inv.DiscountType = discountType
		inv.DiscountValue = value
		return s.recompute(tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// SetShipping sets the shipping amount on a draft.
func (s *Service) SetShipping(invoiceID uint, amount decimal.Decimal) (*model.Invoice, error) {
	var inv *model.Invoice
	err := s.st.InTx(func(tx *store.Store) error {
		var err error
		inv, err = s.draftForUpdate(tx, invoiceID)
		if err != nil {
			return err
		}
		inv.Shipping = amount
		return s.recompute(tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Issue moves a draft to sent. Invoices and credit notes post to the
// journal in the same transaction; estimates carry no ledger effect.
// The document's monetary fields are final after this.
func (s *Service) Issue(invoiceID uint, issueDate time.Time) (*model.Invoice, error) {
	var inv *model.Invoice
	err := s.st.InTx(func(tx *store.Store) error {
		var err error
		inv, err = tx.InvoiceByID(invoiceID)
		if err != nil {
			return err
		}
		if inv.Status != model.StatusDraft {
			return model.InvalidTransitionError{Entity: "invoice", From: string(inv.Status), To: string(model.StatusSent)}
		}
		if len(inv.Items) == 0 {
			return model.ValidationError{Field: "items", Reason: "cannot issue an empty invoice"}
		}

		if !issueDate.IsZero() {
			terms := int(inv.DueDate.Sub(inv.IssueDate).Hours() / 24)
			inv.IssueDate = issueDate
			inv.DueDate = issueDate.AddDate(0, 0, terms)
		}
		if err := s.recompute(tx, inv); err != nil {
			return err
		}

		switch inv.Type {
		case model.TypeInvoice:
			if _, err := s.poster.PostInvoice(tx, inv); err != nil {
				return err
			}
		case model.TypeCreditNote:
			if _, err := s.poster.PostCreditNote(tx, inv); err != nil {
				return err
			}
		}

		inv.Status = model.StatusSent
		if err := tx.SaveInvoice(inv); err != nil {
			return err
		}
		if inv.Type == model.TypeEstimate {
			return nil
		}
		return s.adjustClientBalance(tx, inv, false)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// RecordDelivery stores the delivery collaborator's confirmation
// timestamp. Transport details are not interpreted.
func (s *Service) RecordDelivery(invoiceID uint, deliveredAt time.Time) error {
	return s.st.InTx(func(tx *store.Store) error {
		inv, err := tx.InvoiceByID(invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == model.StatusDraft {
			return model.InvalidTransitionError{Entity: "invoice", From: string(inv.Status), To: "delivered"}
		}
		inv.SentAt = &deliveredAt
		return tx.SaveInvoice(inv)
	})
}

// MarkViewed records that the client opened the invoice.
func (s *Service) MarkViewed(invoiceID uint, viewedAt time.Time) (*model.Invoice, error) {
	var inv *model.Invoice
	err := s.st.InTx(func(tx *store.Store) error {
		var err error
		inv, err = tx.InvoiceByID(invoiceID)
		if err != nil {
			return err
		}
		if !inv.Status.CanTransition(model.StatusViewed) {
			return model.InvalidTransitionError{Entity: "invoice", From: string(inv.Status), To: string(model.StatusViewed)}
		}
		inv.Status = model.StatusViewed
		inv.ViewedAt = &viewedAt
		return tx.SaveInvoice(inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Cancel terminates a draft or sent document. Cancelling a sent invoice
// posts a reversing entry so the ledger nets out; the original entry is
// never touched.
func (s *Service) Cancel(invoiceID uint) (*model.Invoice, error) {
	var inv *model.Invoice
	err := s.st.InTx(func(tx *store.Store) error {
		var err error
		inv, err = tx.InvoiceByID(invoiceID)
		if err != nil {
			return err
		}
		if !inv.Status.CanTransition(model.StatusCancelled) {
			return model.InvalidTransitionError{Entity: "invoice", From: string(inv.Status), To: string(model.StatusCancelled)}
		}

		wasPosted := inv.Status == model.StatusSent && inv.Type != model.TypeEstimate
		if wasPosted {
			if _, err := s.poster.PostInvoiceCancelled(tx, inv); err != nil {
				return err
			}
			if err := s.adjustClientBalance(tx, inv, true); err != nil {
				return err
			}
		}

		inv.Status = model.StatusCancelled
		return tx.SaveInvoice(inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// CreateCreditNote drafts a reversing credit note for a posted invoice,
// cloning its items and discounts. Issue it to post the reversal.
func (s *Service) CreateCreditNote(invoiceID uint, issueDate time.Time) (*model.Invoice, error) {
	var cn *model.Invoice
	err := s.st.InTx(func(tx *store.Store) error {
		orig, err := tx.InvoiceByID(invoiceID)
		if err != nil {
			return err
		}
		if orig.Status == model.StatusDraft || orig.Status == model.StatusCancelled {
			return model.InvalidTransitionError{Entity: "invoice", From: string(orig.Status), To: "credit_note"}
		}
		if orig.Type != model.TypeInvoice {
			return model.ValidationError{Field: "type", Reason: "credit notes reverse invoices only"}
		}

		seq, err := tx.NextDocSeq(s.numbering.CreditNote)
		if err != nil {
			return err
		}
		cn = &model.Invoice{
			Number:        id.FormatDocNumber(s.numbering.CreditNote, seq),
			Type:          model.TypeCreditNote,
			ClientID:      orig.ClientID,
			Status:        model.StatusDraft,
			IssueDate:     issueDate,
			DueDate:       issueDate,
			DiscountType:  orig.DiscountType,
			DiscountValue: orig.DiscountValue,
			Shipping:      orig.Shipping,
			TaxRateID:     orig.TaxRateID,
			ReversesID:    orig.ID,
			Notes:         fmt.Sprintf("Reverses %s", orig.Number),
		}
		for _, it := range orig.Items {
			cn.Items = append(cn.Items, model.InvoiceItem{
				Description:      it.Description,
				Quantity:         it.Quantity,
				UnitPrice:        it.UnitPrice,
				DiscountType:     it.DiscountType,
				DiscountValue:    it.DiscountValue,
				TaxRateID:        it.TaxRateID,
				RevenueAccountID: it.RevenueAccountID,
			})
		}
		if err := tx.CreateInvoice(cn); err != nil {
			return err
		}
		return s.recompute(tx, cn)
	})
	if err != nil {
		return nil, err
	}
	return cn, nil
}

// Get returns an invoice with its items.
func (s *Service) Get(invoiceID uint) (*model.Invoice, error) {
	return s.st.InvoiceByID(invoiceID)
}

// draftForUpdate loads an invoice and rejects mutation outside draft.
func (s *Service) draftForUpdate(tx *store.Store, invoiceID uint) (*model.Invoice, error) {
	inv, err := tx.InvoiceByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != model.StatusDraft {
		return nil, model.InvalidTransitionError{Entity: "invoice", From: string(inv.Status), To: "mutated"}
	}
	return inv, nil
}

// recompute runs the engine over the invoice's items and writes the
// derived amounts back onto the invoice and each line.
func (s *Service) recompute(tx *store.Store, inv *model.Invoice) error {
	in := Input{
		Lines:         make([]LineInput, len(inv.Items)),
		DiscountType:  inv.DiscountType,
		DiscountValue: inv.DiscountValue,
		TaxRateID:     inv.TaxRateID,
		Shipping:      inv.Shipping,
	}
	for i, it := range inv.Items {
		in.Lines[i] = LineInput{
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			DiscountType:  it.DiscountType,
			DiscountValue: it.DiscountValue,
			TaxRateID:     it.TaxRateID,
		}
	}

	totals, err := Compute(in, s.rates)
	if err != nil {
		return err
	}

	for i := range inv.Items {
		it := &inv.Items[i]
		it.InvoiceID = inv.ID
		it.LineSubtotal = totals.Lines[i].Subtotal
		it.LineTax = totals.Lines[i].Tax
		it.LineTotal = totals.Lines[i].Total
		if it.ID == 0 {
			if err := tx.CreateItem(it); err != nil {
				return err
			}
		} else if err := tx.SaveItem(it); err != nil {
			return err
		}
	}
	inv.Subtotal = totals.Subtotal
	inv.Discount = totals.Discount
	inv.TaxAmount = totals.Tax
	inv.Shipping = totals.Shipping
	inv.Total = totals.Total
	return tx.SaveInvoice(inv)
}

// adjustClientBalance keeps the client's running balance projection in
// step with open receivables. reverse undoes the document's effect.
func (s *Service) adjustClientBalance(tx *store.Store, inv *model.Invoice, reverse bool) error {
	client, err := tx.ClientByID(inv.ClientID)
	if err != nil {
		return err
	}
	amt := inv.AmountDue()
	if inv.Type == model.TypeCreditNote {
		amt = amt.Neg()
	}
	if reverse {
		amt = amt.Neg()
	}
	client.Balance = client.Balance.Add(amt)
	return tx.SaveClient(client)
}
