// Package posting converts financial events into balanced journal
// entries. An entry whose lines do not foot is an engine defect: the
// transaction aborts with a LedgerImbalanceError and nothing is
// persisted.
package posting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/id"
	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/money"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

// RateSource looks up tax rate records for liability-account routing.
type RateSource interface {
	Get(rateID uint) (*model.TaxRate, error)
}

// Bindings are the chart accounts the poster writes against.
type Bindings struct {
	ReceivableID uint
	PayableID    uint
	TaxPayableID uint
	CashID       uint
	SalesID      uint
	ShippingID   uint
}

// Poster emits balanced journal entries for ledger events. Every Post
// method must run inside the same store transaction as the event it
// records, so the event and its entry commit or roll back together.
type Poster struct {
	rates RateSource
	b     Bindings
}

// NewPoster creates a Poster.
func NewPoster(rates RateSource, b Bindings) *Poster {
	return &Poster{rates: rates, b: b}
}

// PostInvoice records an issued invoice: debit receivables for the
// total; credit each revenue account for its lines net of the invoice
// discount share; credit tax liability and shipping revenue.
func (p *Poster) PostInvoice(tx *store.Store, inv *model.Invoice) (*model.JournalEntry, error) {
	lines, err := p.invoiceLines(inv, false)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Invoice %s issued", inv.Number)
	return p.post(tx, postParams{
		Date:        inv.IssueDate,
		Description: desc,
		RefType:     model.RefInvoice,
		RefID:       inv.ID,
		Lines:       lines,
	})
}

// PostCreditNote records a credit note as the exact reverse of an
// invoice posting: credit receivables, debit revenue and tax.
func (p *Poster) PostCreditNote(tx *store.Store, cn *model.Invoice) (*model.JournalEntry, error) {
	lines, err := p.invoiceLines(cn, true)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Credit note %s issued", cn.Number)
	return p.post(tx, postParams{
		Date:        cn.IssueDate,
		Description: desc,
		RefType:     model.RefCreditNote,
		RefID:       cn.ID,
		Lines:       lines,
	})
}

// PostInvoiceCancelled reverses a posted document that is being
// cancelled. The original entry stays untouched; the reversal nets the
// ledger back out. A credit note already posted in the reversed
// direction, so cancelling one posts the invoice-direction lines.
func (p *Poster) PostInvoiceCancelled(tx *store.Store, inv *model.Invoice) (*model.JournalEntry, error) {
	lines, err := p.invoiceLines(inv, inv.Type != model.TypeCreditNote)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Invoice %s cancelled", inv.Number)
	return p.post(tx, postParams{
		Date:        inv.IssueDate,
		Description: desc,
		RefType:     model.RefInvoice,
		RefID:       inv.ID,
		Lines:       lines,
	})
}

// PostPayment records money received against receivables: debit cash,
// credit receivables for the allocated amount.
func (p *Poster) PostPayment(tx *store.Store, pay *model.Payment, allocated decimal.Decimal) (*model.JournalEntry, error) {
	lines := []model.JournalEntryLine{
		{AccountID: p.b.CashID, Debit: allocated, Memo: "payment received"},
		{AccountID: p.b.ReceivableID, Credit: allocated},
	}
	return p.post(tx, postParams{
		Date:        pay.Date,
		Description: fmt.Sprintf("Payment %s received", pay.Method),
		RefType:     model.RefPayment,
		RefID:       pay.ID,
		Lines:       lines,
	})
}

// PostExpensePaid records a paid expense: debit the category account for
// the pre-tax amount and tax payable for the tax, credit cash.
func (p *Poster) PostExpensePaid(tx *store.Store, e *model.Expense) (*model.JournalEntry, error) {
	lines := []model.JournalEntryLine{
		{AccountID: e.CategoryAccountID, Debit: e.Amount, Memo: e.Description},
	}
	if e.TaxAmount.IsPositive() {
		lines = append(lines, model.JournalEntryLine{AccountID: p.b.TaxPayableID, Debit: e.TaxAmount, Memo: "tax paid"})
	}
	lines = append(lines, model.JournalEntryLine{AccountID: p.b.CashID, Credit: e.Total()})
	entryDate := e.Date
	if e.PaidAt != nil {
		entryDate = *e.PaidAt
	}
	return p.post(tx, postParams{
		Date:        entryDate,
		Description: fmt.Sprintf("Expense paid: %s", e.Description),
		RefType:     model.RefExpense,
		RefID:       e.ID,
		Lines:       lines,
	})
}

// invoiceLines builds the credit/debit set for an invoice. reversed
// swaps every side, which is exactly a credit note.
func (p *Poster) invoiceLines(inv *model.Invoice, reversed bool) ([]model.JournalEntryLine, error) {
	if len(inv.Items) == 0 {
		return nil, model.ValidationError{Field: "items", Reason: "invoice has no items"}
	}

	bases := make([]decimal.Decimal, len(inv.Items))
	for i, it := range inv.Items {
		bases[i] = it.LineSubtotal
	}
	shares := money.Apportion(inv.Discount, bases)

	revenue := make(map[uint]decimal.Decimal)
	taxByAccount := make(map[uint]decimal.Decimal)
	ownTax := decimal.Zero

	for i, it := range inv.Items {
		acctID := it.RevenueAccountID
		if acctID == 0 {
			acctID = p.b.SalesID
		}
		revenue[acctID] = revenue[acctID].Add(it.LineSubtotal.Sub(shares[i]))

		if it.TaxRateID != 0 && it.LineTax.IsPositive() {
			liabID, err := p.taxAccount(it.TaxRateID)
			if err != nil {
				return nil, err
			}
			taxByAccount[liabID] = taxByAccount[liabID].Add(it.LineTax)
			ownTax = ownTax.Add(it.LineTax)
		}
	}

	// Whatever tax is not attributed to item rates came from the
	// invoice-level rate.
	if residual := inv.TaxAmount.Sub(ownTax); residual.IsPositive() {
		liabID, err := p.taxAccount(inv.TaxRateID)
		if err != nil {
			return nil, err
		}
		taxByAccount[liabID] = taxByAccount[liabID].Add(residual)
	}

	var lines []model.JournalEntryLine
	lines = append(lines, model.JournalEntryLine{AccountID: p.b.ReceivableID, Debit: inv.Total, Memo: inv.Number})
	for acctID, amt := range revenue {
		if amt.IsZero() {
			continue
		}
		lines = append(lines, model.JournalEntryLine{AccountID: acctID, Credit: amt})
	}
	for acctID, amt := range taxByAccount {
		lines = append(lines, model.JournalEntryLine{AccountID: acctID, Credit: amt, Memo: "tax collected"})
	}
	if inv.Shipping.IsPositive() {
		lines = append(lines, model.JournalEntryLine{AccountID: p.b.ShippingID, Credit: inv.Shipping, Memo: "shipping"})
	}

	if reversed {
		for i := range lines {
			lines[i].Debit, lines[i].Credit = lines[i].Credit, lines[i].Debit
		}
	}
	return lines, nil
}

func (p *Poster) taxAccount(rateID uint) (uint, error) {
	if rateID == 0 {
		return p.b.TaxPayableID, nil
	}
	rate, err := p.rates.Get(rateID)
	if err != nil {
		return 0, err
	}
	if rate.LiabilityAccountID != 0 {
		return rate.LiabilityAccountID, nil
	}
	return p.b.TaxPayableID, nil
}

type postParams struct {
	Date        time.Time
	Description string
	RefType     model.ReferenceType
	RefID       uint
	Lines       []model.JournalEntryLine
}

// post validates, numbers, persists and applies one entry. Caller must
// already be inside a store transaction; any error here rolls the whole
// event back.
func (p *Poster) post(tx *store.Store, params postParams) (*model.JournalEntry, error) {
	entry := &model.JournalEntry{
		Date:        params.Date,
		Description: params.Description,
		RefType:     params.RefType,
		RefID:       params.RefID,
		Posted:      true,
		Lines:       params.Lines,
	}

	for _, l := range entry.Lines {
		if !l.OneSided() {
			return nil, model.LedgerImbalanceError{
				Description: params.Description,
				Debits:      l.Debit.StringFixed(2),
				Credits:     l.Credit.StringFixed(2),
			}
		}
		if !money.TwoPlaces(l.Debit) || !money.TwoPlaces(l.Credit) {
			return nil, model.LedgerImbalanceError{
				Description: params.Description + " (sub-cent line)",
				Debits:      l.Debit.String(),
				Credits:     l.Credit.String(),
			}
		}
	}

	debits, credits := entry.Footings()
	if !debits.Equal(credits) {
		return nil, model.LedgerImbalanceError{
			Description: params.Description,
			Debits:      debits.StringFixed(2),
			Credits:     credits.StringFixed(2),
		}
	}

	seq, err := tx.NextEntrySeq(params.Date.Year(), int(params.Date.Month()))
	if err != nil {
		return nil, err
	}
	entry.Number = id.FormatEntryNumber(params.Date.Year(), int(params.Date.Month()), seq)

	if err := tx.CreateJournalEntry(entry); err != nil {
		return nil, fmt.Errorf("persisting journal entry: %w", err)
	}

	// Recompute cached balances for every touched account inside the
	// same transaction.
	for _, l := range entry.Lines {
		acct, err := tx.AccountByID(l.AccountID)
		if err != nil {
			return nil, err
		}
		acct.ApplyLine(l.Debit, l.Credit)
		if err := tx.SaveAccount(acct); err != nil {
			return nil, fmt.Errorf("updating balance for account %s: %w", acct.Code, err)
		}
	}

	return entry, nil
}

// ResolveBindings maps configured chart codes to account IDs.
func ResolveBindings(st *store.Store, cfg BindingCodes) (Bindings, error) {
	var b Bindings
	for _, bind := range []struct {
		code string
		dst  *uint
	}{
		{cfg.ReceivableCode, &b.ReceivableID},
		{cfg.PayableCode, &b.PayableID},
		{cfg.TaxPayableCode, &b.TaxPayableID},
		{cfg.CashCode, &b.CashID},
		{cfg.SalesCode, &b.SalesID},
		{cfg.ShippingCode, &b.ShippingID},
	} {
		acct, err := st.AccountByCode(bind.code)
		if err != nil {
			return Bindings{}, fmt.Errorf("resolving ledger binding %q: %w", bind.code, err)
		}
		*bind.dst = acct.ID
	}
	return b, nil
}

// BindingCodes are the chart codes a config binds the poster to.
type BindingCodes struct {
	ReceivableCode string
	PayableCode    string
	TaxPayableCode string
	CashCode       string
	SalesCode      string
	ShippingCode   string
}
