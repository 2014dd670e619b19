package expenses

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook-dev/ledgerbook/internal/accounts"
	"github.com/ledgerbook-dev/ledgerbook/internal/invoicing"
	"github.com/ledgerbook-dev/ledgerbook/internal/model"
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
	svc      *Service
	invoices *invoicing.Service
	vendor   *model.Vendor
	client   *model.Client
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
	b, err := posting.ResolveBindings(st, posting.BindingCodes{
		ReceivableCode: "1200", PayableCode: "2100", TaxPayableCode: "2200",
		CashCode: "1010", SalesCode: "4010", ShippingCode: "4090",
	})
	require.NoError(t, err)
	poster := posting.NewPoster(rates, b)

	vendor := &model.Vendor{Name: "Cloudy Hosting", TermsNetDays: 15}
	require.NoError(t, st.CreateVendor(vendor))
	client := &model.Client{Name: "Acme Corp", TermsNetDays: 30}
	require.NoError(t, st.CreateClient(client))

	software, err := st.AccountByCode("5020")
	require.NoError(t, err)

	invoices := invoicing.NewService(st, rates, poster, invoicing.Numbering{Invoice: "INV", Estimate: "EST", CreditNote: "CN"}, 30)
	return &fixture{
		st:       st,
		svc:      NewService(st, poster, invoices),
		invoices: invoices,
		vendor:   vendor,
		client:   client,
		software: software,
	}
}

func TestRecord(t *testing.T) {
	f := newFixture(t)

	exp, err := f.svc.Record(RecordParams{
		VendorID:          f.vendor.ID,
		Description:       "Hosting, January",
		Amount:            dec("40.00"),
		TaxAmount:         dec("3.20"),
		CategoryAccountID: f.software.ID,
		Date:              date(2025, 1, 5),
	})
	require.NoError(t, err)
	assert.False(t, exp.Paid)
	assert.True(t, exp.Total().Equal(dec("43.20")))

	vendor, err := f.st.VendorByID(f.vendor.ID)
	require.NoError(t, err)
	assert.True(t, vendor.Balance.Equal(dec("43.20")), "vendor balance projects unpaid expenses")
}

func TestRecord_Validation(t *testing.T) {
	f := newFixture(t)
	var verr model.ValidationError

	_, err := f.svc.Record(RecordParams{VendorID: f.vendor.ID, Amount: dec("10"), CategoryAccountID: f.software.ID, Date: date(2025, 1, 5)})
	require.ErrorAs(t, err, &verr, "description required")

	_, err = f.svc.Record(RecordParams{VendorID: f.vendor.ID, Description: "x", Amount: dec("0"), CategoryAccountID: f.software.ID, Date: date(2025, 1, 5)})
	require.ErrorAs(t, err, &verr, "amount must be positive")

	_, err = f.svc.Record(RecordParams{VendorID: f.vendor.ID, Description: "x", Amount: dec("10"), CategoryAccountID: f.software.ID, Date: date(2025, 1, 5), Billable: true})
	require.ErrorAs(t, err, &verr, "billable needs a client")

	// Category must be an expense account.
	cash, err := f.st.AccountByCode("1010")
	require.NoError(t, err)
	_, err = f.svc.Record(RecordParams{VendorID: f.vendor.ID, Description: "x", Amount: dec("10"), CategoryAccountID: cash.ID, Date: date(2025, 1, 5)})
	require.ErrorAs(t, err, &verr)

	var nf model.NotFoundError
	_, err = f.svc.Record(RecordParams{VendorID: 999, Description: "x", Amount: dec("10"), CategoryAccountID: f.software.ID, Date: date(2025, 1, 5)})
	require.ErrorAs(t, err, &nf)
}

func TestMarkPaid_PostsAndClearsVendorBalance(t *testing.T) {
	f := newFixture(t)
	exp, err := f.svc.Record(RecordParams{
		VendorID:          f.vendor.ID,
		Description:       "Hosting, January",
		Amount:            dec("40.00"),
		TaxAmount:         dec("3.20"),
		CategoryAccountID: f.software.ID,
		Date:              date(2025, 1, 5),
	})
	require.NoError(t, err)

	paid, err := f.svc.MarkPaid(exp.ID, date(2025, 1, 10))
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	require.NotNil(t, paid.PaidAt)

	cash, err := f.st.AccountByCode("1010")
	require.NoError(t, err)
	assert.True(t, cash.Balance.Equal(dec("-43.20")))

	software, err := f.st.AccountByCode("5020")
	require.NoError(t, err)
	assert.True(t, software.Balance.Equal(dec("40.00")))

	// Tax paid reduces what is owed to the authority.
	taxPayable, err := f.st.AccountByCode("2200")
	require.NoError(t, err)
	assert.True(t, taxPayable.Balance.Equal(dec("-3.20")))

	vendor, err := f.st.VendorByID(f.vendor.ID)
	require.NoError(t, err)
	assert.True(t, vendor.Balance.IsZero())

	entries, err := f.st.JournalEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Date.Equal(date(2025, 1, 10)), "entry carries the paid date")

	_, err = f.svc.MarkPaid(exp.ID, date(2025, 1, 11))
	var terr model.InvalidTransitionError
	require.ErrorAs(t, err, &terr)
}

func TestBillToInvoice(t *testing.T) {
	f := newFixture(t)
	exp, err := f.svc.Record(RecordParams{
		VendorID:          f.vendor.ID,
		Description:       "Client-site travel",
		Amount:            dec("120.00"),
		CategoryAccountID: f.software.ID,
		Date:              date(2025, 1, 5),
		Billable:          true,
		BillableClientID:  f.client.ID,
	})
	require.NoError(t, err)

	draft, err := f.invoices.CreateDraft(invoicing.CreateDraftParams{ClientID: f.client.ID, IssueDate: date(2025, 1, 15)})
	require.NoError(t, err)

	inv, err := f.svc.BillToInvoice(exp.ID, draft.ID)
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Client-site travel", inv.Items[0].Description)
	assert.True(t, inv.Total.Equal(dec("120.00")))

	got, err := f.svc.Get(exp.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.BilledInvoiceID)

	// Billing twice is rejected.
	_, err = f.svc.BillToInvoice(exp.ID, draft.ID)
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBillToInvoice_WrongClient(t *testing.T) {
	f := newFixture(t)
	other := &model.Client{Name: "Globex", TermsNetDays: 30}
	require.NoError(t, f.st.CreateClient(other))

	exp, err := f.svc.Record(RecordParams{
		VendorID:          f.vendor.ID,
		Description:       "Travel",
		Amount:            dec("50.00"),
		CategoryAccountID: f.software.ID,
		Date:              date(2025, 1, 5),
		Billable:          true,
		BillableClientID:  f.client.ID,
	})
	require.NoError(t, err)

	draft, err := f.invoices.CreateDraft(invoicing.CreateDraftParams{ClientID: other.ID, IssueDate: date(2025, 1, 15)})
	require.NoError(t, err)

	_, err = f.svc.BillToInvoice(exp.ID, draft.ID)
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBillToInvoice_NotBillable(t *testing.T) {
	f := newFixture(t)
	exp, err := f.svc.Record(RecordParams{
		VendorID:          f.vendor.ID,
		Description:       "Internal tooling",
		Amount:            dec("50.00"),
		CategoryAccountID: f.software.ID,
		Date:              date(2025, 1, 5),
	})
	require.NoError(t, err)

	draft, err := f.invoices.CreateDraft(invoicing.CreateDraftParams{ClientID: f.client.ID, IssueDate: date(2025, 1, 15)})
	require.NoError(t, err)

	_, err = f.svc.BillToInvoice(exp.ID, draft.ID)
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
}
