// Package accounts maintains the chart of accounts: the account tree,
// its cached balances, and consistency checks against the journal.
package accounts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/store"
)

// timeZero as either bound of PostedLinesBetween leaves that side open.
var timeZero time.Time

// Service provides chart-of-accounts operations over a store.
type Service struct {
	st *store.Store
}

// NewService creates an accounts Service.
func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

// CreateParams holds the fields for a new account.
type CreateParams struct {
	Code        string
	Name        string
	Type        model.AccountType
	Subtype     string
	ParentID    uint
	Description string
}

// Create validates and persists a new account. The parent, when set,
// must exist and have the same type; the tree stays acyclic because a
// new node cannot be its own ancestor.
func (s *Service) Create(params CreateParams) (*model.Account, error) {
	if params.Code == "" {
		return nil, model.ValidationError{Field: "code", Reason: "required"}
	}
	if params.Name == "" {
		return nil, model.ValidationError{Field: "name", Reason: "required"}
	}
	if !params.Type.Valid() {
		return nil, model.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown account type %q", params.Type)}
	}
	if _, err := s.st.AccountByCode(params.Code); err == nil {
		return nil, model.ValidationError{Field: "code", Reason: fmt.Sprintf("account code %q already exists", params.Code)}
	}

	if params.ParentID != 0 {
		parent, err := s.st.AccountByID(params.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Type != params.Type {
			return nil, model.ValidationError{Field: "parent_id", Reason: "parent account type must match"}
		}
	}

	acct := &model.Account{
		Code:        params.Code,
		Name:        params.Name,
		Type:        params.Type,
		Subtype:     params.Subtype,
		ParentID:    params.ParentID,
		Description: params.Description,
		Balance:     decimal.Zero,
	}
	if err := s.st.CreateAccount(acct); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}
	return acct, nil
}

// Get returns an account by ID.
func (s *Service) Get(accountID uint) (*model.Account, error) {
	return s.st.AccountByID(accountID)
}

// ByCode returns an account by its chart code.
func (s *Service) ByCode(code string) (*model.Account, error) {
	return s.st.AccountByCode(code)
}

// All returns every account ordered by code.
func (s *Service) All() ([]model.Account, error) {
	return s.st.Accounts()
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(t model.AccountType) ([]model.Account, error) {
	return s.st.AccountsByType(t)
}

// Children returns the direct children of an account.
func (s *Service) Children(accountID uint) ([]model.Account, error) {
	all, err := s.st.Accounts()
	if err != nil {
		return nil, err
	}
	var kids []model.Account
	for _, a := range all {
		if a.ParentID == accountID {
			kids = append(kids, a)
		}
	}
	return kids, nil
}

// BalanceMismatch describes one account whose cached balance has
// drifted from the journal.
type BalanceMismatch struct {
	AccountID uint
	Code      string
	Cached    decimal.Decimal
	Computed  decimal.Decimal
}

// VerifyBalances recomputes every account balance from the posted
// journal and returns the accounts whose cache disagrees. An empty
// result means the projection is consistent.
func (s *Service) VerifyBalances() ([]BalanceMismatch, error) {
	accts, err := s.st.Accounts()
	if err != nil {
		return nil, err
	}
	lines, err := s.st.PostedLinesBetween(timeZero, timeZero)
	if err != nil {
		return nil, err
	}

	computed := make(map[uint]decimal.Decimal, len(accts))
	byID := make(map[uint]model.Account, len(accts))
	for _, a := range accts {
		computed[a.ID] = decimal.Zero
		byID[a.ID] = a
	}
	for _, l := range lines {
		a, ok := byID[l.AccountID]
		if !ok {
			continue
		}
		signed := l.Debit.Sub(l.Credit)
		if !a.Type.DebitNormal() {
			signed = signed.Neg()
		}
		computed[l.AccountID] = computed[l.AccountID].Add(signed)
	}

	var mismatches []BalanceMismatch
	for _, a := range accts {
		if !a.Balance.Equal(computed[a.ID]) {
			mismatches = append(mismatches, BalanceMismatch{
				AccountID: a.ID,
				Code:      a.Code,
				Cached:    a.Balance,
				Computed:  computed[a.ID],
			})
		}
	}
	return mismatches, nil
}
