package tax

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := store.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, st.Migrate())
	return NewEngine(st), st
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateAndResolve(t *testing.T) {
	eng, _ := newTestEngine(t)

	rate, err := eng.Create(CreateParams{Name: "Sales Tax 8%", Percentage: dec("8")})
	require.NoError(t, err)

	pct, err := eng.Resolve(rate.ID)
	require.NoError(t, err)
	assert.True(t, pct.Equal(dec("8")))
}

func TestResolve_ZeroIsNoRate(t *testing.T) {
	eng, _ := newTestEngine(t)

	pct, err := eng.Resolve(0)
	require.NoError(t, err)
	assert.True(t, pct.IsZero())
}

func TestResolve_NotFound(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.Resolve(42)
	var nf model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "tax rate", nf.Entity)
}

func TestCreate_Validation(t *testing.T) {
	eng, st := newTestEngine(t)

	var verr model.ValidationError
	_, err := eng.Create(CreateParams{Percentage: dec("8")})
	require.ErrorAs(t, err, &verr)

	_, err = eng.Create(CreateParams{Name: "Negative", Percentage: dec("-1")})
	require.ErrorAs(t, err, &verr)

	// Linked account must be a liability.
	cash := &model.Account{Code: "1010", Name: "Cash", Type: model.AccountTypeAsset}
	require.NoError(t, st.CreateAccount(cash))
	_, err = eng.Create(CreateParams{Name: "VAT", Percentage: dec("20"), LiabilityAccountID: cash.ID})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "liability_account_id", verr.Field)
}
