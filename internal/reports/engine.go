// Package reports aggregates posted journal activity and invoice state
// into the standard financial statements. Everything here is read-only;
// partially posted entries are invisible by construction, so reports
// always see a consistent ledger.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

// Engine computes reports from the store.
type Engine struct {
	st *store.Store
}

// NewEngine creates an Engine.
func NewEngine(st *store.Store) *Engine {
	return &Engine{st: st}
}

// AccountLine is one account's contribution to a report section.
type AccountLine struct {
	Code    string
	Name    string
	Subtype string
	Amount  decimal.Decimal
}

// ProfitAndLoss summarizes revenue and expense activity over a period.
type ProfitAndLoss struct {
	From, To     time.Time
	Revenue      []AccountLine
	Expenses     []AccountLine
	RevenueTotal decimal.Decimal
	ExpenseTotal decimal.Decimal
	NetIncome    decimal.Decimal
}

// ProfitAndLoss reports revenue earned and expenses incurred between
// from and to, inclusive.
func (e *Engine) ProfitAndLoss(from, to time.Time) (*ProfitAndLoss, error) {
	accts, byID, err := e.accounts()
	if err != nil {
		return nil, err
	}
	activity, err := e.activity(from, to)
	if err != nil {
		return nil, err
	}

	pl := &ProfitAndLoss{
		From: from, To: to,
		RevenueTotal: decimal.Zero,
		ExpenseTotal: decimal.Zero,
	}
	for _, a := range accts {
		amt, ok := activity[a.ID]
		if !ok || amt.IsZero() {
			continue
		}
		// activity is stored in each account's normal direction.
		switch a.Type {
		case model.AccountTypeRevenue:
			pl.Revenue = append(pl.Revenue, line(byID[a.ID], amt))
			pl.RevenueTotal = pl.RevenueTotal.Add(amt)
		case model.AccountTypeExpense:
			pl.Expenses = append(pl.Expenses, line(byID[a.ID], amt))
			pl.ExpenseTotal = pl.ExpenseTotal.Add(amt)
		}
	}
	pl.NetIncome = pl.RevenueTotal.Sub(pl.ExpenseTotal)
	return pl, nil
}

// Section groups balance sheet lines under one account type.
type Section struct {
	Lines []AccountLine
	Total decimal.Decimal
}

// BalanceSheet is the position statement as of a date. Assets must equal
// liabilities plus equity once current earnings are folded in.
type BalanceSheet struct {
	AsOf            time.Time
	Assets          Section
	Liabilities     Section
	Equity          Section
	CurrentEarnings decimal.Decimal // net income not yet closed to equity
}

// BalanceSheet computes balances from posted lines up to asOf and checks
// the accounting equation. A mismatch means the ledger itself is
// corrupt, so it surfaces as a LedgerImbalanceError rather than a
// report.
func (e *Engine) BalanceSheet(asOf time.Time) (*BalanceSheet, error) {
	accts, byID, err := e.accounts()
	if err != nil {
		return nil, err
	}
	activity, err := e.activity(time.Time{}, asOf)
	if err != nil {
		return nil, err
	}

	bs := &BalanceSheet{AsOf: asOf}
	bs.Assets.Total = decimal.Zero
	bs.Liabilities.Total = decimal.Zero
	bs.Equity.Total = decimal.Zero
	bs.CurrentEarnings = decimal.Zero

	for _, a := range accts {
		amt, ok := activity[a.ID]
		if !ok {
			continue
		}
		switch a.Type {
		case model.AccountTypeAsset:
			bs.Assets.Lines = append(bs.Assets.Lines, line(byID[a.ID], amt))
			bs.Assets.Total = bs.Assets.Total.Add(amt)
		case model.AccountTypeLiability:
			bs.Liabilities.Lines = append(bs.Liabilities.Lines, line(byID[a.ID], amt))
			bs.Liabilities.Total = bs.Liabilities.Total.Add(amt)
		case model.AccountTypeEquity:
			bs.Equity.Lines = append(bs.Equity.Lines, line(byID[a.ID], amt))
			bs.Equity.Total = bs.Equity.Total.Add(amt)
		case model.AccountTypeRevenue:
			bs.CurrentEarnings = bs.CurrentEarnings.Add(amt)
		case model.AccountTypeExpense:
			bs.CurrentEarnings = bs.CurrentEarnings.Sub(amt)
		}
	}

	rhs := bs.Liabilities.Total.Add(bs.Equity.Total).Add(bs.CurrentEarnings)
	if !bs.Assets.Total.Equal(rhs) {
		return nil, model.LedgerImbalanceError{
			Description: "balance sheet equation",
			Debits:      bs.Assets.Total.StringFixed(2),
			Credits:     rhs.StringFixed(2),
		}
	}
	return bs, nil
}

// CashFlow is the simplified single-section operating statement.
type CashFlow struct {
	From, To         time.Time
	PaymentsReceived decimal.Decimal
	PaymentsSent     decimal.Decimal
	ExpensesPaid     decimal.Decimal
	Net              decimal.Decimal
}

// CashFlow derives cash movement from payments and paid expenses dated
// within the period.
func (e *Engine) CashFlow(from, to time.Time) (*CashFlow, error) {
	cf := &CashFlow{
		From: from, To: to,
		PaymentsReceived: decimal.Zero,
		PaymentsSent:     decimal.Zero,
		ExpensesPaid:     decimal.Zero,
	}

	payments, err := e.st.PaymentsBetween(from, to)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		switch p.Direction {
		case model.PaymentReceived:
			cf.PaymentsReceived = cf.PaymentsReceived.Add(p.Amount)
		case model.PaymentSent, model.PaymentRefund:
			cf.PaymentsSent = cf.PaymentsSent.Add(p.Amount)
		}
	}

	expenses, err := e.st.PaidExpensesBetween(from, to)
	if err != nil {
		return nil, err
	}
	for _, x := range expenses {
		cf.ExpensesPaid = cf.ExpensesPaid.Add(x.Total())
	}

	cf.Net = cf.PaymentsReceived.Sub(cf.PaymentsSent).Sub(cf.ExpensesPaid)
	return cf, nil
}

// AgingBucket names the standard receivable age ranges.
type AgingBucket string

const (
	BucketCurrent AgingBucket = "current"
	Bucket1To30   AgingBucket = "1-30"
	Bucket31To60  AgingBucket = "31-60"
	Bucket61To90  AgingBucket = "61-90"
	BucketOver90  AgingBucket = "90+"
)

// AgedInvoice is one open invoice placed in exactly one bucket.
type AgedInvoice struct {
	Number      string
	ClientID    uint
	DueDate     time.Time
	AmountDue   decimal.Decimal
	DaysPastDue int
	Bucket      AgingBucket
}

// ARAging buckets every open invoice's amount due by age.
type ARAging struct {
	AsOf     time.Time
	Invoices []AgedInvoice
	Buckets  map[AgingBucket]decimal.Decimal
	Total    decimal.Decimal
}

// ARAging reports open receivables bucketed by days past due as of a
// date. Each invoice lands in exactly one bucket, so the bucket totals
// partition the outstanding amount.
func (e *Engine) ARAging(asOf time.Time) (*ARAging, error) {
	open, err := e.st.OpenInvoices()
	if err != nil {
		return nil, err
	}

	r := &ARAging{
		AsOf:  asOf,
		Total: decimal.Zero,
		Buckets: map[AgingBucket]decimal.Decimal{
			BucketCurrent: decimal.Zero,
			Bucket1To30:   decimal.Zero,
			Bucket31To60:  decimal.Zero,
			Bucket61To90:  decimal.Zero,
			BucketOver90:  decimal.Zero,
		},
	}
	for i := range open {
		inv := &open[i]
		if inv.Type != model.TypeInvoice {
			continue
		}
		due := inv.AmountDue()
		if !due.IsPositive() {
			continue
		}
		days := inv.DaysPastDue(asOf)
		bucket := bucketFor(days)
		r.Invoices = append(r.Invoices, AgedInvoice{
			Number:      inv.Number,
			ClientID:    inv.ClientID,
			DueDate:     inv.DueDate,
			AmountDue:   due,
			DaysPastDue: days,
			Bucket:      bucket,
		})
		r.Buckets[bucket] = r.Buckets[bucket].Add(due)
		r.Total = r.Total.Add(due)
	}
	return r, nil
}

func bucketFor(daysPastDue int) AgingBucket {
	switch {
	case daysPastDue <= 0:
		return BucketCurrent
	case daysPastDue <= 30:
		return Bucket1To30
	case daysPastDue <= 60:
		return Bucket31To60
	case daysPastDue <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// TaxSummary nets tax collected on invoices against tax paid on
// expenses.
type TaxSummary struct {
	From, To     time.Time
	TaxCollected decimal.Decimal
	TaxPaid      decimal.Decimal
	NetOwed      decimal.Decimal
}

// TaxSummary sums tax on paid and partially paid invoices issued in the
// period, less tax on expenses dated in the period.
func (e *Engine) TaxSummary(from, to time.Time) (*TaxSummary, error) {
	ts := &TaxSummary{
		From: from, To: to,
		TaxCollected: decimal.Zero,
		TaxPaid:      decimal.Zero,
	}

	invs, err := e.st.InvoicesIssuedBetween(from, to)
	if err != nil {
		return nil, err
	}
	for i := range invs {
		inv := &invs[i]
		if inv.Type != model.TypeInvoice {
			continue
		}
		if inv.Status != model.StatusPaid && inv.Status != model.StatusPartial {
			continue
		}
		ts.TaxCollected = ts.TaxCollected.Add(inv.TaxAmount)
	}

	// Payment date, not incurred date: expense entries post at paid_at,
	// so the summary stays on the same basis as the ledger.
	exps, err := e.st.PaidExpensesBetween(from, to)
	if err != nil {
		return nil, err
	}
	for i := range exps {
		ts.TaxPaid = ts.TaxPaid.Add(exps[i].TaxAmount)
	}

	ts.NetOwed = ts.TaxCollected.Sub(ts.TaxPaid)
	return ts, nil
}

// activity sums posted lines per account in the account's normal
// direction: debits minus credits for debit-normal accounts, credits
// minus debits otherwise.
func (e *Engine) activity(from, to time.Time) (map[uint]decimal.Decimal, error) {
	lines, err := e.st.PostedLinesBetween(from, to)
	if err != nil {
		return nil, err
	}
	_, byID, err := e.accounts()
	if err != nil {
		return nil, err
	}

	sums := make(map[uint]decimal.Decimal)
	for _, l := range lines {
		a, ok := byID[l.AccountID]
		if !ok {
			continue
		}
		delta := l.Debit.Sub(l.Credit)
		if !a.Type.DebitNormal() {
			delta = delta.Neg()
		}
		sums[l.AccountID] = sums[l.AccountID].Add(delta)
	}
	return sums, nil
}

func (e *Engine) accounts() ([]model.Account, map[uint]model.Account, error) {
	accts, err := e.st.Accounts()
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uint]model.Account, len(accts))
	for _, a := range accts {
		byID[a.ID] = a
	}
	return accts, byID, nil
}

func line(a model.Account, amt decimal.Decimal) AccountLine {
	return AccountLine{Code: a.Code, Name: a.Name, Subtype: a.Subtype, Amount: amt}
}
