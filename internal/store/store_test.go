package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := Open(dsn)
	require.NoError(t, err)
	require.NoError(t, st.Migrate())
	return st
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAccountRoundTrip(t *testing.T) {
	st := newTestStore(t)

	acct := &model.Account{Code: "1200", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Subtype: "current"}
	require.NoError(t, st.CreateAccount(acct))
	require.NotZero(t, acct.ID)

	got, err := st.AccountByCode("1200")
	require.NoError(t, err)
	assert.Equal(t, "Accounts Receivable", got.Name)
	assert.True(t, got.Balance.IsZero())
}

func TestAccountByID_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.AccountByID(99)
	require.Error(t, err)
	var nf model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "account", nf.Entity)
}

func TestNextDocSeq(t *testing.T) {
	st := newTestStore(t)
	client := &model.Client{Name: "Acme"}
	require.NoError(t, st.CreateClient(client))

	seq, err := st.NextDocSeq("INV")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	require.NoError(t, st.CreateInvoice(&model.Invoice{Number: "INV-000001", ClientID: client.ID, Status: model.StatusDraft}))
	require.NoError(t, st.CreateInvoice(&model.Invoice{Number: "INV-000005", ClientID: client.ID, Status: model.StatusDraft}))
	// A different prefix must not bleed into the sequence.
	require.NoError(t, st.CreateInvoice(&model.Invoice{Number: "CN-000009", ClientID: client.ID, Type: model.TypeCreditNote, Status: model.StatusDraft}))

	seq, err = st.NextDocSeq("INV")
	require.NoError(t, err)
	assert.Equal(t, 6, seq)

	seq, err = st.NextDocSeq("CN")
	require.NoError(t, err)
	assert.Equal(t, 10, seq)
}

func TestNextEntrySeq(t *testing.T) {
	st := newTestStore(t)

	seq, err := st.NextEntrySeq(2025, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	require.NoError(t, st.CreateJournalEntry(&model.JournalEntry{Number: "2025-01-003", Date: date(2025, 1, 10), Posted: true}))
	require.NoError(t, st.CreateJournalEntry(&model.JournalEntry{Number: "2025-02-001", Date: date(2025, 2, 1), Posted: true}))

	seq, err = st.NextEntrySeq(2025, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, seq)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	st := newTestStore(t)

	err := st.InTx(func(tx *Store) error {
		if err := tx.CreateAccount(&model.Account{Code: "1000", Name: "Cash", Type: model.AccountTypeAsset}); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	_, err = st.AccountByCode("1000")
	var nf model.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestPostedLinesBetween(t *testing.T) {
	st := newTestStore(t)

	entry := &model.JournalEntry{
		Number: "2025-01-001",
		Date:   date(2025, 1, 15),
		Posted: true,
		Lines: []model.JournalEntryLine{
			{AccountID: 1, Debit: dec("97.20")},
			{AccountID: 2, Credit: dec("97.20")},
		},
	}
	require.NoError(t, st.CreateJournalEntry(entry))

	// Unposted entries are invisible to aggregation.
	require.NoError(t, st.CreateJournalEntry(&model.JournalEntry{
		Number: "2025-01-002",
		Date:   date(2025, 1, 16),
		Posted: false,
		Lines: []model.JournalEntryLine{
			{AccountID: 1, Debit: dec("5.00")},
			{AccountID: 2, Credit: dec("5.00")},
		},
	}))

	lines, err := st.PostedLinesBetween(date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	lines, err = st.PostedLinesBetween(date(2025, 2, 1), date(2025, 2, 28))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestClaimSchedule(t *testing.T) {
	st := newTestStore(t)
	now := date(2024, 2, 1)
	stale := now.Add(-10 * time.Minute)

	sc := &model.RecurringSchedule{
		TemplateInvoiceID: 1,
		Frequency:         model.FreqMonthly,
		Interval:          1,
		NextDueDate:       now,
		Active:            true,
	}
	require.NoError(t, st.CreateSchedule(sc))

	ok, err := st.ClaimSchedule(sc.ID, "worker-a", now, stale)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second claim while the first is live must fail.
	ok, err = st.ClaimSchedule(sc.ID, "worker-b", now, stale)
	require.NoError(t, err)
	assert.False(t, ok)

	// Once the first claim goes stale the row is claimable again.
	later := now.Add(time.Hour)
	ok, err = st.ClaimSchedule(sc.ID, "worker-b", later, later.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllocatedAgainst(t *testing.T) {
	st := newTestStore(t)

	p := &model.Payment{
		Direction: model.PaymentReceived,
		Amount:    dec("100.00"),
		Date:      date(2025, 1, 1),
		Allocations: []model.PaymentAllocation{
			{InvoiceID: 7, Amount: dec("60.00")},
			{InvoiceID: 8, Amount: dec("40.00")},
		},
	}
	require.NoError(t, st.CreatePayment(p))

	sum, err := st.AllocatedAgainst(7)
	require.NoError(t, err)
	assert.True(t, sum.Equal(dec("60.00")))
}
