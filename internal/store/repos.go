package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ledgerbook-dev/ledgerbook/internal/id"
	"github.com/ledgerbook-dev/ledgerbook/internal/model"
)

// --- accounts ---

func (s *Store) CreateAccount(a *model.Account) error {
	return s.db.Create(a).Error
}

func (s *Store) SaveAccount(a *model.Account) error {
	return s.db.Save(a).Error
}

func (s *Store) AccountByID(accountID uint) (*model.Account, error) {
	var a model.Account
	if err := s.db.First(&a, accountID).Error; err != nil {
		return nil, notFound(err, "account", strconv.FormatUint(uint64(accountID), 10))
	}
	return &a, nil
}

func (s *Store) AccountByCode(code string) (*model.Account, error) {
	var a model.Account
	if err := s.db.Where("code = ?", code).First(&a).Error; err != nil {
		return nil, notFound(err, "account", code)
	}
	return &a, nil
}

func (s *Store) Accounts() ([]model.Account, error) {
	var accts []model.Account
	if err := s.db.Order("code").Find(&accts).Error; err != nil {
		return nil, err
	}
	return accts, nil
}

func (s *Store) AccountsByType(t model.AccountType) ([]model.Account, error) {
	var accts []model.Account
	if err := s.db.Where("type = ?", t).Order("code").Find(&accts).Error; err != nil {
		return nil, err
	}
	return accts, nil
}

// --- tax rates ---

func (s *Store) CreateTaxRate(r *model.TaxRate) error {
	return s.db.Create(r).Error
}

func (s *Store) TaxRateByID(rateID uint) (*model.TaxRate, error) {
	var r model.TaxRate
	if err := s.db.First(&r, rateID).Error; err != nil {
		return nil, notFound(err, "tax rate", strconv.FormatUint(uint64(rateID), 10))
	}
	return &r, nil
}

// --- clients and vendors ---

func (s *Store) CreateClient(c *model.Client) error { return s.db.Create(c).Error }
func (s *Store) SaveClient(c *model.Client) error   { return s.db.Save(c).Error }

func (s *Store) ClientByID(clientID uint) (*model.Client, error) {
	var c model.Client
	if err := s.db.First(&c, clientID).Error; err != nil {
		return nil, notFound(err, "client", strconv.FormatUint(uint64(clientID), 10))
	}
	return &c, nil
}

func (s *Store) Clients() ([]model.Client, error) {
	var cs []model.Client
	if err := s.db.Order("name").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (s *Store) CreateVendor(v *model.Vendor) error { return s.db.Create(v).Error }
func (s *Store) SaveVendor(v *model.Vendor) error   { return s.db.Save(v).Error }

func (s *Store) VendorByID(vendorID uint) (*model.Vendor, error) {
	var v model.Vendor
	if err := s.db.First(&v, vendorID).Error; err != nil {
		return nil, notFound(err, "vendor", strconv.FormatUint(uint64(vendorID), 10))
	}
	return &v, nil
}

func (s *Store) Vendors() ([]model.Vendor, error) {
	var vs []model.Vendor
	if err := s.db.Order("name").Find(&vs).Error; err != nil {
		return nil, err
	}
	return vs, nil
}

// --- invoices ---

func (s *Store) CreateInvoice(inv *model.Invoice) error {
	return s.db.Create(inv).Error
}

// SaveInvoice persists the invoice row only; items are saved explicitly
// by the invoicing service so derived line amounts never depend on
// association write-back behavior.
func (s *Store) SaveInvoice(inv *model.Invoice) error {
	return s.db.Omit(clause.Associations).Save(inv).Error
}

func (s *Store) InvoiceByID(invoiceID uint) (*model.Invoice, error) {
	var inv model.Invoice
	if err := s.db.Preload("Items").First(&inv, invoiceID).Error; err != nil {
		return nil, notFound(err, "invoice", strconv.FormatUint(uint64(invoiceID), 10))
	}
	return &inv, nil
}

func (s *Store) InvoiceByNumber(number string) (*model.Invoice, error) {
	var inv model.Invoice
	if err := s.db.Preload("Items").Where("number = ?", number).First(&inv).Error; err != nil {
		return nil, notFound(err, "invoice", number)
	}
	return &inv, nil
}

// InvoiceForUpdate loads an invoice under a row lock so concurrent
// allocations against it serialize. On engines without SELECT ... FOR
// UPDATE (sqlite) the enclosing transaction provides the serialization.
func (s *Store) InvoiceForUpdate(invoiceID uint) (*model.Invoice, error) {
	var inv model.Invoice
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, invoiceID).Error
	if err != nil {
		return nil, notFound(err, "invoice", strconv.FormatUint(uint64(invoiceID), 10))
	}
	return &inv, nil
}

// NextDocSeq returns the next sequence number for documents numbered
// under prefix. Call inside the same transaction as the insert.
func (s *Store) NextDocSeq(prefix string) (int, error) {
	var numbers []string
	if err := s.db.Model(&model.Invoice{}).
		Where("number LIKE ?", prefix+"-%").
		Pluck("number", &numbers).Error; err != nil {
		return 0, err
	}
	maxSeq := 0
	for _, n := range numbers {
		p, seq, err := id.ParseDocNumber(n)
		if err != nil || p != prefix {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

// OpenInvoices returns non-draft, non-cancelled invoices with a balance
// outstanding.
func (s *Store) OpenInvoices() ([]model.Invoice, error) {
	var invs []model.Invoice
	err := s.db.
		Where("status IN ?", []model.InvoiceStatus{model.StatusSent, model.StatusViewed, model.StatusPartial}).
		Order("due_date").
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

func (s *Store) InvoicesIssuedBetween(from, to time.Time) ([]model.Invoice, error) {
	var invs []model.Invoice
	err := between(s.db, "issue_date", from, to).
		Order("issue_date").
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

func (s *Store) CreateItem(item *model.InvoiceItem) error { return s.db.Create(item).Error }
func (s *Store) SaveItem(item *model.InvoiceItem) error   { return s.db.Save(item).Error }

func (s *Store) DeleteItem(itemID uint) error {
	res := s.db.Delete(&model.InvoiceItem{}, itemID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.NotFoundError{Entity: "invoice item", Ref: strconv.FormatUint(uint64(itemID), 10)}
	}
	return nil
}

// between bounds a date column; a zero time leaves that side open.
func between(db *gorm.DB, col string, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		db = db.Where(col+" >= ?", from)
	}
	if !to.IsZero() {
		db = db.Where(col+" <= ?", to)
	}
	return db
}

// --- payments ---

func (s *Store) CreatePayment(p *model.Payment) error {
	return s.db.Create(p).Error
}

func (s *Store) PaymentByID(paymentID uint) (*model.Payment, error) {
	var p model.Payment
	if err := s.db.Preload("Allocations").First(&p, paymentID).Error; err != nil {
		return nil, notFound(err, "payment", strconv.FormatUint(uint64(paymentID), 10))
	}
	return &p, nil
}

func (s *Store) SavePayment(p *model.Payment) error {
	return s.db.Omit(clause.Associations).Save(p).Error
}

func (s *Store) PaymentsBetween(from, to time.Time) ([]model.Payment, error) {
	var pays []model.Payment
	err := between(s.db, "date", from, to).
		Order("date").
		Find(&pays).Error
	if err != nil {
		return nil, err
	}
	return pays, nil
}

// AllocatedAgainst sums all allocations recorded against an invoice.
func (s *Store) AllocatedAgainst(invoiceID uint) (decimal.Decimal, error) {
	var allocs []model.PaymentAllocation
	if err := s.db.Where("invoice_id = ?", invoiceID).Find(&allocs).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, a := range allocs {
		sum = sum.Add(a.Amount)
	}
	return sum, nil
}

// --- expenses ---

func (s *Store) CreateExpense(e *model.Expense) error { return s.db.Create(e).Error }
func (s *Store) SaveExpense(e *model.Expense) error   { return s.db.Save(e).Error }

func (s *Store) ExpenseByID(expenseID uint) (*model.Expense, error) {
	var e model.Expense
	if err := s.db.First(&e, expenseID).Error; err != nil {
		return nil, notFound(err, "expense", strconv.FormatUint(uint64(expenseID), 10))
	}
	return &e, nil
}

func (s *Store) PaidExpensesBetween(from, to time.Time) ([]model.Expense, error) {
	var exps []model.Expense
	err := between(s.db.Where("paid = ?", true), "paid_at", from, to).
		Order("paid_at").
		Find(&exps).Error
	if err != nil {
		return nil, err
	}
	return exps, nil
}

func (s *Store) ExpensesBetween(from, to time.Time) ([]model.Expense, error) {
	var exps []model.Expense
	err := between(s.db, "date", from, to).
		Order("date").
		Find(&exps).Error
	if err != nil {
		return nil, err
	}
	return exps, nil
}

// --- journal ---

func (s *Store) CreateJournalEntry(e *model.JournalEntry) error {
	return s.db.Create(e).Error
}

// NextEntrySeq returns the next journal sequence for a month. Call
// inside the same transaction as the insert.
func (s *Store) NextEntrySeq(year, month int) (int, error) {
	like := fmt.Sprintf("%04d-%02d-%%", year, month)
	var numbers []string
	if err := s.db.Model(&model.JournalEntry{}).
		Where("number LIKE ?", like).
		Pluck("number", &numbers).Error; err != nil {
		return 0, err
	}
	maxSeq := 0
	for _, n := range numbers {
		_, _, seq, err := id.ParseEntryNumber(n)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

func (s *Store) JournalEntries() ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	if err := s.db.Preload("Lines").Order("number").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// PostedLine is one journal line flattened with its entry's date, the
// shape the report queries aggregate over.
type PostedLine struct {
	AccountID uint
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Date      time.Time
}

// PostedLinesBetween returns every posted line dated within [from, to].
// Zero time bounds are open on that side.
func (s *Store) PostedLinesBetween(from, to time.Time) ([]PostedLine, error) {
	q := s.db.Table("journal_entry_lines").
		Select("journal_entry_lines.account_id, journal_entry_lines.debit, journal_entry_lines.credit, journal_entries.date").
		Joins("JOIN journal_entries ON journal_entries.id = journal_entry_lines.entry_id").
		Where("journal_entries.posted = ?", true)
	if !from.IsZero() {
		q = q.Where("journal_entries.date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("journal_entries.date <= ?", to)
	}

	var lines []PostedLine
	if err := q.Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// --- recurring schedules ---

func (s *Store) CreateSchedule(sc *model.RecurringSchedule) error { return s.db.Create(sc).Error }
func (s *Store) SaveSchedule(sc *model.RecurringSchedule) error   { return s.db.Save(sc).Error }

func (s *Store) ScheduleByID(scheduleID uint) (*model.RecurringSchedule, error) {
	var sc model.RecurringSchedule
	if err := s.db.First(&sc, scheduleID).Error; err != nil {
		return nil, notFound(err, "schedule", strconv.FormatUint(uint64(scheduleID), 10))
	}
	return &sc, nil
}

// DueSchedules returns active schedules whose next due date has arrived.
func (s *Store) DueSchedules(asOf time.Time) ([]model.RecurringSchedule, error) {
	var scs []model.RecurringSchedule
	err := s.db.
		Where("active = ? AND next_due_date <= ?", true, asOf).
		Order("id").
		Find(&scs).Error
	if err != nil {
		return nil, err
	}
	return scs, nil
}

// ClaimSchedule stamps a claim token on a schedule row if it is
// unclaimed, or its previous claim went stale before staleBefore.
// Returns false when another worker holds a live claim. The write
// commits immediately so a crash mid-generation leaves a stale,
// retryable claim rather than a double fire.
func (s *Store) ClaimSchedule(scheduleID uint, token string, now, staleBefore time.Time) (bool, error) {
	res := s.db.Model(&model.RecurringSchedule{}).
		Where("id = ? AND active = ? AND (claim_token = '' OR claim_token IS NULL OR claimed_at < ?)",
			scheduleID, true, staleBefore).
		Updates(map[string]any{"claim_token": token, "claimed_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// --- bank transactions ---

func (s *Store) CreateBankTransaction(t *model.BankTransaction) error {
	return s.db.Create(t).Error
}

func (s *Store) SaveBankTransaction(t *model.BankTransaction) error {
	return s.db.Save(t).Error
}

func (s *Store) BankTransactionByID(txnID uint) (*model.BankTransaction, error) {
	var t model.BankTransaction
	if err := s.db.First(&t, txnID).Error; err != nil {
		return nil, notFound(err, "bank transaction", strconv.FormatUint(uint64(txnID), 10))
	}
	return &t, nil
}

func (s *Store) BankTransactionByReference(ref string) (*model.BankTransaction, error) {
	var t model.BankTransaction
	if err := s.db.Where("reference = ?", ref).First(&t).Error; err != nil {
		return nil, notFound(err, "bank transaction", ref)
	}
	return &t, nil
}

func (s *Store) UnmatchedBankTransactions() ([]model.BankTransaction, error) {
	var txns []model.BankTransaction
	err := s.db.
		Where("matched_kind = '' OR matched_kind IS NULL").
		Order("date").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
