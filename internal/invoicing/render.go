package invoicing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
)

// RenderableInvoice is the boundary contract handed to the delivery
// collaborator (PDF/email). It carries everything needed to render the
// document and nothing about transport.
type RenderableInvoice struct {
	Number     string
	ClientName string
	Items      []RenderableItem
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	Total      decimal.Decimal
	AmountDue  decimal.Decimal
	IssueDate  time.Time
	DueDate    time.Time
	Notes      string
}

// RenderableItem is one displayable line.
type RenderableItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Renderable assembles the delivery payload for an invoice.
func (s *Service) Renderable(invoiceID uint) (*RenderableInvoice, error) {
	inv, err := s.st.InvoiceByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == model.StatusDraft {
		return nil, model.InvalidTransitionError{Entity: "invoice", From: string(inv.Status), To: "rendered"}
	}
	client, err := s.st.ClientByID(inv.ClientID)
	if err != nil {
		return nil, err
	}

	r := &RenderableInvoice{
		Number:     inv.Number,
		ClientName: client.Name,
		Subtotal:   inv.Subtotal,
		Discount:   inv.Discount,
		Tax:        inv.TaxAmount,
		Shipping:   inv.Shipping,
		Total:      inv.Total,
		AmountDue:  inv.AmountDue(),
		IssueDate:  inv.IssueDate,
		DueDate:    inv.DueDate,
		Notes:      inv.Notes,
	}
	for _, it := range inv.Items {
		r.Items = append(r.Items, RenderableItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return r, nil
}
