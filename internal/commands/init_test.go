package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook-dev/ledgerbook/internal/commands"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

func runLedgerbook(t *testing.T, args ...string) error {
	t.Helper()
	cmd := commands.NewRootCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	err := runLedgerbook(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	expectedDirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	err := runLedgerbook(t, "init", dir, "--name", "My Company")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "ledgerbook.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: My Company")
	assert.Contains(t, contents, "entity_type: llc_single_member")
	assert.Contains(t, contents, "invoice_prefix: INV")
	assert.Contains(t, contents, "receivable_code: \"1200\"")
}

func TestInit_SeedsChart(t *testing.T) {
	dir := t.TempDir()
	err := runLedgerbook(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(dir, "ledgerbook.db"))
	require.NoError(t, err)

	accts, err := st.Accounts()
	require.NoError(t, err)
	assert.Len(t, accts, 19, "default chart has 19 accounts")

	ar, err := st.AccountByCode("1200")
	require.NoError(t, err)
	assert.Equal(t, "Accounts Receivable", ar.Name)
}

func TestInit_RefusesExistingLedger(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runLedgerbook(t, "init", dir, "--name", "Test Biz"))

	err := runLedgerbook(t, "init", dir, "--name", "Test Biz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	err := runLedgerbook(t, "init", dir)
	require.Error(t, err, "init without --name should fail")
}
