package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ledgerbook-dev/ledgerbook/internal/auditlog"
	"github.com/ledgerbook-dev/ledgerbook/internal/bankfeed"
	"github.com/ledgerbook-dev/ledgerbook/internal/config"
	"github.com/ledgerbook-dev/ledgerbook/internal/expenses"
	"github.com/ledgerbook-dev/ledgerbook/internal/invoicing"
	"github.com/ledgerbook-dev/ledgerbook/internal/payments"
	"github.com/ledgerbook-dev/ledgerbook/internal/posting"
	"github.com/ledgerbook-dev/ledgerbook/internal/recurring"
	"github.com/ledgerbook-dev/ledgerbook/internal/reports"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
	"github.com/ledgerbook-dev/ledgerbook/internal/tax"
)

// configFile is the project configuration at the ledger root.
const configFile = "ledgerbook.yaml"

// app wires the configured services for one command invocation.
type app struct {
	root     string
	cfg      *config.Config
	st       *store.Store
	rates    *tax.Engine
	poster   *posting.Poster
	invoices *invoicing.Service
	alloc    *payments.Allocator
	expenses *expenses.Service
	sched    *recurring.Scheduler
	reports  *reports.Engine
	feed     *bankfeed.Feed
}

// openApp loads the ledger at dir and builds its services.
func openApp(dir string) (*app, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, configFile))
	if err != nil {
		return nil, err
	}

	dsn := cfg.Database.DSN
	if !filepath.IsAbs(dsn) && filepath.Ext(dsn) == ".db" {
		dsn = filepath.Join(root, dsn)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	rates := tax.NewEngine(st)
	bindings, err := posting.ResolveBindings(st, posting.BindingCodes{
		ReceivableCode: cfg.Ledger.ReceivableCode,
		PayableCode:    cfg.Ledger.PayableCode,
		TaxPayableCode: cfg.Ledger.TaxPayableCode,
		CashCode:       cfg.Ledger.CashCode,
		SalesCode:      cfg.Ledger.SalesCode,
		ShippingCode:   cfg.Ledger.ShippingCode,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving ledger bindings: %w", err)
	}
	poster := posting.NewPoster(rates, bindings)

	invoices := invoicing.NewService(st, rates, poster, invoicing.Numbering{
		Invoice:    cfg.Numbering.InvoicePrefix,
		Estimate:   cfg.Numbering.EstimatePrefix,
		CreditNote: cfg.Numbering.CreditNotePrefix,
	}, cfg.Terms.DefaultNetDays)

	return &app{
		root:     root,
		cfg:      cfg,
		st:       st,
		rates:    rates,
		poster:   poster,
		invoices: invoices,
		alloc:    payments.NewAllocator(st, poster),
		expenses: expenses.NewService(st, poster, invoices),
		sched:    recurring.NewScheduler(st, invoices),
		reports:  reports.NewEngine(st),
		feed:     bankfeed.NewFeed(st, bankfeed.DefaultRegistry()),
	}, nil
}

// audit appends one action to the ledger's audit log. Log failures are
// surfaced but only after the underlying operation committed.
func (a *app) audit(action, details, reference string) error {
	return auditlog.Append(a.root, []auditlog.Entry{{
		Timestamp: time.Now().UTC(),
		Actor:     "cli",
		Action:    action,
		Details:   details,
		Reference: reference,
	}})
}

// parseDate parses a YYYY-MM-DD flag value; empty means now.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}
