// Package store wraps gorm with the typed queries the ledger services
// need. All cross-entity invariants are enforced inside InTx: either the
// whole unit commits or none of it does, so partial postings are never
// observable.
package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
)

// Store provides persistence for the ledger. A Store handed to an InTx
// callback is scoped to that transaction.
type Store struct {
	db *gorm.DB
}

// Open connects to the database behind dsn. DSNs starting with
// "postgres://" or containing "host=" use the postgres driver; anything
// else is treated as a sqlite path or URI.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database DSN")
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var (
		db  *gorm.DB
		err error
	)
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates or updates the schema for every ledger table.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&model.Account{},
		&model.TaxRate{},
		&model.Client{},
		&model.Vendor{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.Payment{},
		&model.PaymentAllocation{},
		&model.Expense{},
		&model.JournalEntry{},
		&model.JournalEntryLine{},
		&model.RecurringSchedule{},
		&model.BankTransaction{},
	)
}

// InTx runs fn inside one database transaction. fn receives a Store
// scoped to the transaction; returning an error rolls everything back.
func (s *Store) InTx(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// notFound maps gorm's record-not-found onto the domain error kind.
func notFound(err error, entity, ref string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NotFoundError{Entity: entity, Ref: ref}
	}
	return err
}
