package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Test Biz", "llc_single_member")
	cfg.Numbering.InvoicePrefix = "ACME"
	cfg.Database.DSN = "test.db"

	path := filepath.Join(t.TempDir(), "ledgerbook.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Business.Name, got.Business.Name)
	assert.Equal(t, cfg.Business.EntityType, got.Business.EntityType)
	assert.Equal(t, "ACME", got.Numbering.InvoicePrefix)
	assert.Equal(t, cfg.Terms.DefaultNetDays, got.Terms.DefaultNetDays)
	assert.Equal(t, cfg.Ledger.ReceivableCode, got.Ledger.ReceivableCode)
	assert.Equal(t, "test.db", got.Database.DSN)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Company", "llc_single_member")

	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, "llc_single_member", cfg.Business.EntityType)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "INV", cfg.Numbering.InvoicePrefix)
	assert.Equal(t, "CN", cfg.Numbering.CreditNotePrefix)
	assert.Equal(t, 30, cfg.Terms.DefaultNetDays)
	assert.Equal(t, "1200", cfg.Ledger.ReceivableCode)
	assert.Equal(t, "2200", cfg.Ledger.TaxPayableCode)
	assert.Equal(t, "ledgerbook.db", cfg.Database.DSN)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDSNOverrideFromEnv(t *testing.T) {
	cfg := Default("Test Biz", "llc_single_member")
	path := filepath.Join(t.TempDir(), "ledgerbook.yaml")
	require.NoError(t, Save(path, cfg))

	t.Setenv("LEDGERBOOK_DSN", "postgres://localhost/ledger")
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/ledger", got.Database.DSN)
}
