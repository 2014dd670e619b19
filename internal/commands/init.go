package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/accounts"
	"github.com/ledgerbook-dev/ledgerbook/internal/config"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var entityType string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, name, entityType)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&entityType, "entity-type", "llc_single_member", "entity type")

	return cmd
}

func runInit(dir, name, entityType string) error {
	for _, d := range []string{"logs", "import", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, configFile)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists in %s", configFile, dir)
	}
	cfg := config.Default(name, entityType)
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	dsn := cfg.Database.DSN
	if !filepath.IsAbs(dsn) {
		dsn = filepath.Join(dir, dsn)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return err
	}
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	if err := accounts.NewService(st).Seed(entityType); err != nil {
		return fmt.Errorf("seeding chart of accounts: %w", err)
	}

	fmt.Printf("Initialized ledger for %s at %s\n", name, dir)
	return nil
}
