package reports

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook-dev/ledgerbook/internal/accounts"
	"github.com/ledgerbook-dev/ledgerbook/internal/expenses"
	"github.com/ledgerbook-dev/ledgerbook/internal/invoicing"
	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/payments"
	"github.com/ledgerbook-dev/ledgerbook/internal/posting"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
	"github.com/ledgerbook-dev/ledgerbook/internal/tax"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	st       *store.Store
	eng      *Engine
	invoices *invoicing.Service
	alloc    *payments.Allocator
	exps     *expenses.Service
	client   *model.Client
	vendor   *model.Vendor
	rate8    *model.TaxRate
	software *model.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := store.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, st.Migrate())
	require.NoError(t, accounts.NewService(st).Seed("llc_single_member"))

	rates := tax.NewEngine(st)
	rate8, err := rates.Create(tax.CreateParams{Name: "Sales Tax 8%", Percentage: dec("8")})
	require.NoError(t, err)

	b, err := posting.ResolveBindings(st, posting.BindingCodes{
		ReceivableCode: "1200", PayableCode: "2100", TaxPayableCode: "2200",
		CashCode: "1010", SalesCode: "4010", ShippingCode: "4090",
	})
	require.NoError(t, err)
	poster := posting.NewPoster(rates, b)

	client := &model.Client{Name: "Acme Corp", TermsNetDays: 30}
	require.NoError(t, st.CreateClient(client))
	vendor := &model.Vendor{Name: "Cloudy Hosting"}
	require.NoError(t, st.CreateVendor(vendor))
	software, err := st.AccountByCode("5020")
	require.NoError(t, err)

	invoices := invoicing.NewService(st, rates, poster, invoicing.Numbering{Invoice: "INV", Estimate: "EST", CreditNote: "CN"}, 30)
	return &fixture{
		st:       st,
		eng:      NewEngine(st),
		invoices: invoices,
		alloc:    payments.NewAllocator(st, poster),
		exps:     expenses.NewService(st, poster, invoices),
		client:   client,
		vendor:   vendor,
		rate8:    rate8,
		software: software,
	}
}

// seedActivity issues the worked-example invoice (total 97.20, tax
// 7.20), takes a 50.00 payment, and pays a 43.20 expense, all in
// January 2025.
func (f *fixture) seedActivity(t *testing.T) *model.Invoice {
	t.Helper()
	inv, err := f.invoices.CreateDraft(invoicing.CreateDraftParams{
		ClientID:  f.client.ID,
		IssueDate: date(2025, 1, 15),
		TaxRateID: f.rate8.ID,
	})
	require.NoError(t, err)
	_, err = f.invoices.AddItem(inv.ID, invoicing.ItemParams{Description: "Consulting", Quantity: dec("2"), UnitPrice: dec("50.00")})
	require.NoError(t, err)
	_, err = f.invoices.SetDiscount(inv.ID, model.DiscountPercentage, dec("10"))
	require.NoError(t, err)
	_, err = f.invoices.Issue(inv.ID, time.Time{})
	require.NoError(t, err)

	_, err = f.alloc.Receive(inv.ID, dec("50.00"), "check", date(2025, 1, 20))
	require.NoError(t, err)

	exp, err := f.exps.Record(expenses.RecordParams{
		VendorID:          f.vendor.ID,
		Description:       "Hosting",
		Amount:            dec("40.00"),
		TaxAmount:         dec("3.20"),
		CategoryAccountID: f.software.ID,
		Date:              date(2025, 1, 18),
	})
	require.NoError(t, err)
	_, err = f.exps.MarkPaid(exp.ID, date(2025, 1, 25))
	require.NoError(t, err)

	got, err := f.invoices.Get(inv.ID)
	require.NoError(t, err)
	return got
}

func TestProfitAndLoss(t *testing.T) {
	f := newFixture(t)
	f.seedActivity(t)

	pl, err := f.eng.ProfitAndLoss(date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	// Sales 90.00 net of discount; the 7.20 tax is a liability, not revenue.
	assert.True(t, pl.RevenueTotal.Equal(dec("90.00")))
	assert.True(t, pl.ExpenseTotal.Equal(dec("40.00")))
	assert.True(t, pl.NetIncome.Equal(dec("50.00")))
	require.Len(t, pl.Revenue, 1)
	assert.Equal(t, "4010", pl.Revenue[0].Code)
}

func TestProfitAndLoss_PeriodRestricted(t *testing.T) {
	f := newFixture(t)
	f.seedActivity(t)

	pl, err := f.eng.ProfitAndLoss(date(2025, 2, 1), date(2025, 2, 28))
	require.NoError(t, err)
	assert.True(t, pl.RevenueTotal.IsZero())
	assert.True(t, pl.ExpenseTotal.IsZero())
	assert.True(t, pl.NetIncome.IsZero())
}

func TestBalanceSheet_EquationHolds(t *testing.T) {
	f := newFixture(t)
	f.seedActivity(t)

	bs, err := f.eng.BalanceSheet(date(2025, 1, 31))
	require.NoError(t, err)

	// Cash 50.00 - 43.20 = 6.80, receivable 97.20 - 50.00 = 47.20.
	assert.True(t, bs.Assets.Total.Equal(dec("54.00")))
	// Tax payable 7.20 collected - 3.20 paid.
	assert.True(t, bs.Liabilities.Total.Equal(dec("4.00")))
	assert.True(t, bs.CurrentEarnings.Equal(dec("50.00")))
	rhs := bs.Liabilities.Total.Add(bs.Equity.Total).Add(bs.CurrentEarnings)
	assert.True(t, bs.Assets.Total.Equal(rhs))
}

func TestCashFlow(t *testing.T) {
	f := newFixture(t)
	f.seedActivity(t)

	cf, err := f.eng.CashFlow(date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	assert.True(t, cf.PaymentsReceived.Equal(dec("50.00")))
	assert.True(t, cf.ExpensesPaid.Equal(dec("43.20")))
	assert.True(t, cf.Net.Equal(dec("6.80")))
}

func TestARAging_Buckets(t *testing.T) {
	f := newFixture(t)

	// Due 2024-01-01: issue 30 days earlier under net-30 terms.
	inv, err := f.invoices.CreateDraft(invoicing.CreateDraftParams{ClientID: f.client.ID, IssueDate: date(2023, 12, 2)})
	require.NoError(t, err)
	_, err = f.invoices.AddItem(inv.ID, invoicing.ItemParams{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100.00")})
	require.NoError(t, err)
	issued, err := f.invoices.Issue(inv.ID, time.Time{})
	require.NoError(t, err)
	require.True(t, issued.DueDate.Equal(date(2024, 1, 1)))

	r, err := f.eng.ARAging(date(2024, 3, 15))
	require.NoError(t, err)
	require.Len(t, r.Invoices, 1)
	assert.Equal(t, 74, r.Invoices[0].DaysPastDue)
	assert.Equal(t, Bucket61To90, r.Invoices[0].Bucket)
	assert.True(t, r.Buckets[Bucket61To90].Equal(dec("100.00")))
	assert.True(t, r.Total.Equal(dec("100.00")))
}

func TestARAging_PartitionsExactly(t *testing.T) {
	f := newFixture(t)

	// Three invoices landing in distinct buckets as of 2024-03-15.
	for _, issue := range []time.Time{
		date(2024, 1, 10), // due 2024-02-09, 35 days past: 31-60
		date(2024, 2, 10), // due 2024-03-11, 4 days past: 1-30
		date(2024, 3, 1),  // due 2024-03-31, not yet due: current
	} {
		inv, err := f.invoices.CreateDraft(invoicing.CreateDraftParams{ClientID: f.client.ID, IssueDate: issue})
		require.NoError(t, err)
		_, err = f.invoices.AddItem(inv.ID, invoicing.ItemParams{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100.00")})
		require.NoError(t, err)
		_, err = f.invoices.Issue(inv.ID, time.Time{})
		require.NoError(t, err)
	}

	r, err := f.eng.ARAging(date(2024, 3, 15))
	require.NoError(t, err)
	require.Len(t, r.Invoices, 3)

	sum := decimal.Zero
	for _, amt := range r.Buckets {
		sum = sum.Add(amt)
	}
	assert.True(t, sum.Equal(r.Total), "bucket totals partition the outstanding amount")
	assert.True(t, r.Buckets[Bucket31To60].Equal(dec("100.00")))
	assert.True(t, r.Buckets[Bucket1To30].Equal(dec("100.00")))
	assert.True(t, r.Buckets[BucketCurrent].Equal(dec("100.00")))
	assert.True(t, r.Buckets[BucketOver90].IsZero())
}

func TestARAging_ExcludesPaidAndDrafts(t *testing.T) {
	f := newFixture(t)
	inv := f.seedActivity(t) // partial, 47.20 still due

	// A draft never shows up.
	_, err := f.invoices.CreateDraft(invoicing.CreateDraftParams{ClientID: f.client.ID, IssueDate: date(2025, 1, 20)})
	require.NoError(t, err)

	r, err := f.eng.ARAging(date(2025, 1, 31))
	require.NoError(t, err)
	require.Len(t, r.Invoices, 1)
	assert.Equal(t, inv.Number, r.Invoices[0].Number)
	assert.True(t, r.Total.Equal(dec("47.20")))

	// Settle the invoice; the report empties.
	_, err = f.alloc.Receive(inv.ID, dec("47.20"), "check", date(2025, 2, 1))
	require.NoError(t, err)
	r, err = f.eng.ARAging(date(2025, 2, 2))
	require.NoError(t, err)
	assert.Empty(t, r.Invoices)
	assert.True(t, r.Total.IsZero())
}

func TestTaxSummary(t *testing.T) {
	f := newFixture(t)
	f.seedActivity(t)

	ts, err := f.eng.TaxSummary(date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	assert.True(t, ts.TaxCollected.Equal(dec("7.20")), "partial invoices count")
	assert.True(t, ts.TaxPaid.Equal(dec("3.20")))
	assert.True(t, ts.NetOwed.Equal(dec("4.00")))
}

func TestTaxSummary_ExpenseTaxFallsInPaymentPeriod(t *testing.T) {
	f := newFixture(t)

	// Incurred in January, paid in February. The entry posts at the paid
	// date, so the tax belongs to February.
	exp, err := f.exps.Record(expenses.RecordParams{
		VendorID:          f.vendor.ID,
		Description:       "Hosting",
		Amount:            dec("40.00"),
		TaxAmount:         dec("3.20"),
		CategoryAccountID: f.software.ID,
		Date:              date(2025, 1, 18),
	})
	require.NoError(t, err)
	_, err = f.exps.MarkPaid(exp.ID, date(2025, 2, 10))
	require.NoError(t, err)

	jan, err := f.eng.TaxSummary(date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	assert.True(t, jan.TaxPaid.IsZero(), "got %s", jan.TaxPaid)

	feb, err := f.eng.TaxSummary(date(2025, 2, 1), date(2025, 2, 28))
	require.NoError(t, err)
	assert.True(t, feb.TaxPaid.Equal(dec("3.20")))
	assert.True(t, feb.NetOwed.Equal(dec("-3.20")))
}

func TestTaxSummary_UnpaidInvoiceExcluded(t *testing.T) {
	f := newFixture(t)

	inv, err := f.invoices.CreateDraft(invoicing.CreateDraftParams{
		ClientID: f.client.ID, IssueDate: date(2025, 1, 15), TaxRateID: f.rate8.ID,
	})
	require.NoError(t, err)
	_, err = f.invoices.AddItem(inv.ID, invoicing.ItemParams{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100.00")})
	require.NoError(t, err)
	_, err = f.invoices.Issue(inv.ID, time.Time{})
	require.NoError(t, err)

	ts, err := f.eng.TaxSummary(date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	assert.True(t, ts.TaxCollected.IsZero(), "sent but unpaid invoices do not count yet")
}
