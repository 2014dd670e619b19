package accounts

import "github.com/ledgerbook-dev/ledgerbook/internal/model"

// DefaultChart returns the default chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "llc_single_member":
		return smallBusinessChart()
	default:
		return smallBusinessChart()
	}
}

func smallBusinessChart() []model.Account {
	return []model.Account{
		{Code: "1010", Name: "Business Checking", Type: model.AccountTypeAsset, Subtype: "current", Description: "Primary checking account"},
		{Code: "1020", Name: "Business Savings", Type: model.AccountTypeAsset, Subtype: "current", Description: "Savings account"},
		{Code: "1050", Name: "Undeposited Funds", Type: model.AccountTypeAsset, Subtype: "current", Description: "Payments received, not yet deposited"},
		{Code: "1200", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Subtype: "current", Description: "Amounts owed by clients"},
		{Code: "1500", Name: "Equipment", Type: model.AccountTypeAsset, Subtype: "fixed", Description: "Computers and equipment"},
		{Code: "2010", Name: "Credit Card", Type: model.AccountTypeLiability, Subtype: "current", Description: "Business credit card"},
		{Code: "2100", Name: "Accounts Payable", Type: model.AccountTypeLiability, Subtype: "current", Description: "Amounts owed to vendors"},
		{Code: "2200", Name: "Sales Tax Payable", Type: model.AccountTypeLiability, Subtype: "current", Description: "Tax collected, owed to the authority"},
		{Code: "2500", Name: "Long-Term Loan", Type: model.AccountTypeLiability, Subtype: "long-term", Description: "Loans due past one year"},
		{Code: "3010", Name: "Owner's Equity", Type: model.AccountTypeEquity, Description: "Owner's equity"},
		{Code: "3020", Name: "Retained Earnings", Type: model.AccountTypeEquity, Description: "Accumulated prior-year earnings"},
		{Code: "4010", Name: "Service Revenue", Type: model.AccountTypeRevenue},
		{Code: "4020", Name: "Product Revenue", Type: model.AccountTypeRevenue},
		{Code: "4090", Name: "Shipping Revenue", Type: model.AccountTypeRevenue, Description: "Shipping charged to clients"},
		{Code: "5010", Name: "Advertising & Marketing", Type: model.AccountTypeExpense, Description: "Advertising costs"},
		{Code: "5020", Name: "Software & SaaS", Type: model.AccountTypeExpense, Description: "Software subscriptions"},
		{Code: "5030", Name: "Office Supplies", Type: model.AccountTypeExpense, Description: "Office supplies and expenses"},
		{Code: "5040", Name: "Professional Services", Type: model.AccountTypeExpense, Description: "Legal, accounting, consulting"},
		{Code: "5050", Name: "Shipping & Postage", Type: model.AccountTypeExpense, Description: "Postage and shipping costs"},
	}
}

// Seed inserts the default chart for an entity type into the store,
// skipping codes that already exist.
func (s *Service) Seed(entityType string) error {
	for _, a := range DefaultChart(entityType) {
		if _, err := s.st.AccountByCode(a.Code); err == nil {
			continue
		}
		acct := a
		if err := s.st.CreateAccount(&acct); err != nil {
			return err
		}
	}
	return nil
}
