package model

import "github.com/shopspring/decimal"

// AccountType classifies trial-balance accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
	AccountTypeUnknown   AccountType = "unknown"
)

// Statement is the financial statement an account reports into.
type Statement string

const (
	StatementBalanceSheet Statement = "balance_sheet"
	StatementIncome       Statement = "income_statement"
	StatementUnknown      Statement = ""
)

// StatementFor maps an account type to its financial statement.
// Pure function: asset/liability/equity report on the balance sheet,
// revenue/expense on the income statement.
func StatementFor(t AccountType) Statement {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity:
		return StatementBalanceSheet
	case AccountTypeRevenue, AccountTypeExpense:
		return StatementIncome
	default:
		return StatementUnknown
	}
}

// Area is a financial-statement area, the grouping unit for lead schedules.
type Area string

const (
	AreaCash               Area = "cash"
	AreaReceivables        Area = "receivables"
	AreaInventory          Area = "inventory"
	AreaPrepaidExpenses    Area = "prepaid_expenses"
	AreaFixedAssets        Area = "fixed_assets"
	AreaOtherAssets        Area = "other_assets"
	AreaPayables           Area = "payables"
	AreaAccruedLiabilities Area = "accrued_liabilities"
	AreaDebt               Area = "debt"
	AreaOtherLiabilities   Area = "other_liabilities"
	AreaEquity             Area = "equity"
	AreaRevenue            Area = "revenue"
	AreaCostOfSales        Area = "cost_of_sales"
	AreaOperatingExpenses  Area = "operating_expenses"
	AreaOther              Area = "other"
)

// ImportedAccount is one classified row of a parsed ledger export, before
// it is committed as a TrialBalanceAccount. Debit and credit balances are
// non-negative; polarity comes from the column, not the cell.
type ImportedAccount struct {
	Row              int // source file row, 1-based including header
	AccountNumber    string
	AccountName      string
	DebitBalance     decimal.Decimal
	CreditBalance    decimal.Decimal
	BeginningBalance decimal.Decimal
	Type             AccountType
	Statement        Statement
	Area             Area
	Confidence       float64
}

// TrialBalanceAccount is a persisted account within a trial-balance batch.
// Balances are signed with debits positive. Created at import, mutated only
// through adjustments, removed only on batch rollback.
type TrialBalanceAccount struct {
	ID                string
	BatchID           string
	ScheduleID        string // empty when not linked to a lead schedule
	AccountNumber     string
	AccountName       string
	Type              AccountType
	Statement         Statement
	Area              Area
	BeginningBalance  decimal.Decimal
	EndingBalance     decimal.Decimal
	AuditAdjustments  decimal.Decimal
	Reclassifications decimal.Decimal
	FinalBalance      decimal.Decimal
}

// IsMapped reports whether the account is linked to a lead schedule.
func (a TrialBalanceAccount) IsMapped() bool {
	return a.ScheduleID != ""
}

// RecomputeFinal re-derives the final balance from its components.
func (a *TrialBalanceAccount) RecomputeFinal() {
	a.FinalBalance = a.EndingBalance.Add(a.AuditAdjustments).Add(a.Reclassifications)
}
