package accounts

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := store.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, st.Migrate())
	return NewService(st), st
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)

	acct, err := svc.Create(CreateParams{Code: "1200", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Subtype: "current"})
	require.NoError(t, err)
	assert.NotZero(t, acct.ID)
	assert.True(t, acct.Balance.IsZero())
}

func TestCreate_DuplicateCode(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(CreateParams{Code: "1200", Name: "AR", Type: model.AccountTypeAsset})
	require.NoError(t, err)

	_, err = svc.Create(CreateParams{Code: "1200", Name: "AR again", Type: model.AccountTypeAsset})
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "code", verr.Field)
}

func TestCreate_BadInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(CreateParams{Name: "No code", Type: model.AccountTypeAsset})
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Create(CreateParams{Code: "9000", Name: "Bad type", Type: "mystery"})
	require.ErrorAs(t, err, &verr)
}

func TestCreate_ParentTypeMismatch(t *testing.T) {
	svc, _ := newTestService(t)

	parent, err := svc.Create(CreateParams{Code: "4000", Name: "Revenue", Type: model.AccountTypeRevenue})
	require.NoError(t, err)

	_, err = svc.Create(CreateParams{Code: "5100", Name: "Rent", Type: model.AccountTypeExpense, ParentID: parent.ID})
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "parent_id", verr.Field)

	child, err := svc.Create(CreateParams{Code: "4010", Name: "Service Revenue", Type: model.AccountTypeRevenue, ParentID: parent.ID})
	require.NoError(t, err)

	kids, err := svc.Children(parent.ID)
	require.NoError(t, err)
	require.Len(t, kids, 1)
	assert.Equal(t, child.ID, kids[0].ID)
}

func TestCreate_ParentNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(CreateParams{Code: "4010", Name: "Service Revenue", Type: model.AccountTypeRevenue, ParentID: 42})
	var nf model.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestSeed(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Seed("llc_single_member"))

	ar, err := svc.ByCode("1200")
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeAsset, ar.Type)

	tax, err := svc.ByCode("2200")
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeLiability, tax.Type)

	// Seeding twice must not duplicate.
	require.NoError(t, svc.Seed("llc_single_member"))
	all, err := svc.All()
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultChart("llc_single_member")))
}

func TestVerifyBalances(t *testing.T) {
	svc, st := newTestService(t)
	require.NoError(t, svc.Seed("llc_single_member"))

	cash, err := svc.ByCode("1010")
	require.NoError(t, err)
	revenue, err := svc.ByCode("4010")
	require.NoError(t, err)

	// Post a balanced entry and update caches the way the poster does.
	require.NoError(t, st.CreateJournalEntry(&model.JournalEntry{
		Number: "2025-01-001",
		Posted: true,
		Lines: []model.JournalEntryLine{
			{AccountID: cash.ID, Debit: dec("100.00")},
			{AccountID: revenue.ID, Credit: dec("100.00")},
		},
	}))
	cash.ApplyLine(dec("100.00"), decimal.Zero)
	require.NoError(t, st.SaveAccount(cash))
	revenue.ApplyLine(decimal.Zero, dec("100.00"))
	require.NoError(t, st.SaveAccount(revenue))

	mismatches, err := svc.VerifyBalances()
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	// Corrupt one cache and the check must name it.
	cash.Balance = dec("123.45")
	require.NoError(t, st.SaveAccount(cash))

	mismatches, err = svc.VerifyBalances()
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "1010", mismatches[0].Code)
	assert.True(t, mismatches[0].Computed.Equal(dec("100.00")))
}
