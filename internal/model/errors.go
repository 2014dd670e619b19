package model

import "fmt"

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

// InvalidTransitionError reports a document lifecycle move the state
// machine does not permit.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot go from %s to %s", e.Entity, e.From, e.To)
}

// OverpaymentError reports an allocation that would push an invoice's
// paid amount past its total.
type OverpaymentError struct {
	InvoiceNumber string
	Requested     string
	Room          string
}

func (e OverpaymentError) Error() string {
	return fmt.Sprintf("allocating %s against %s exceeds the %s still due", e.Requested, e.InvoiceNumber, e.Room)
}

// OverAllocationError reports allocations that together exceed the
// payment they draw from.
type OverAllocationError struct {
	PaymentAmount string
	Allocated     string
}

func (e OverAllocationError) Error() string {
	return fmt.Sprintf("allocations total %s but the payment is %s", e.Allocated, e.PaymentAmount)
}

// LedgerImbalanceError reports a journal entry whose debits and credits
// do not foot, or stored balances that no longer match posted activity.
type LedgerImbalanceError struct {
	Description string
	Debits      string
	Credits     string
}

func (e LedgerImbalanceError) Error() string {
	return fmt.Sprintf("ledger imbalance in %q: debits %s, credits %s", e.Description, e.Debits, e.Credits)
}
