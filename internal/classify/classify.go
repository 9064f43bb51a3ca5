// Package classify infers account types from chart-of-accounts numbering
// conventions and account-name keywords. Classification is advisory: the
// validator only warns on low confidence, it never blocks an import.
package classify

import (
	"strings"

	"github.com/tickmark-dev/tickmark/internal/model"
)

// Confidence tiers. The numbering convention is authoritative when present;
// keyword matches are a weaker signal; anything else is a guess the
// validator will flag as unclassified.
const (
	ConfidenceNumeric = 0.9
	ConfidenceKeyword = 0.6
	ConfidenceNone    = 0.2
)

// Suggestion is the classifier's output for one account. The statement is
// always a pure function of the type.
type Suggestion struct {
	Type       model.AccountType
	Statement  model.Statement
	Area       model.Area
	Confidence float64
}

// Classify infers an account's type, statement, and area from its number
// and name. Deterministic: identical input always yields identical output.
//
// Primary rule is the leading-digit convention (1 asset, 2 liability,
// 3 equity, 4 revenue, 5+ expense); the account name refines the area.
// When the convention is absent, keyword matching on the name decides the
// type at lower confidence.
func Classify(accountNumber, accountName string) Suggestion {
	name := strings.ToLower(accountName)

	kwType, kwArea, kwMatched := keywordMatch(name)

	if t, ok := leadingDigitType(accountNumber); ok {
		area := kwArea
		// Only trust the keyword area when it agrees with the numeric type.
		if !kwMatched || areaType(kwArea) != t {
			area = defaultArea(t)
		}
		return Suggestion{
			Type:       t,
			Statement:  model.StatementFor(t),
			Area:       area,
			Confidence: ConfidenceNumeric,
		}
	}

	if kwMatched {
		return Suggestion{
			Type:       kwType,
			Statement:  model.StatementFor(kwType),
			Area:       kwArea,
			Confidence: ConfidenceKeyword,
		}
	}

	return Suggestion{
		Type:       model.AccountTypeUnknown,
		Statement:  model.StatementUnknown,
		Area:       model.AreaOther,
		Confidence: ConfidenceNone,
	}
}

// leadingDigitType applies the 1..5+ numbering convention to the first
// character of the account number. A leading zero is treated as no
// convention; some systems zero-pad memo accounts.
func leadingDigitType(accountNumber string) (model.AccountType, bool) {
	s := strings.TrimSpace(accountNumber)
	if s == "" {
		return model.AccountTypeUnknown, false
	}
	switch s[0] {
	case '1':
		return model.AccountTypeAsset, true
	case '2':
		return model.AccountTypeLiability, true
	case '3':
		return model.AccountTypeEquity, true
	case '4':
		return model.AccountTypeRevenue, true
	case '5', '6', '7', '8', '9':
		return model.AccountTypeExpense, true
	default:
		return model.AccountTypeUnknown, false
	}
}

// keywordRule maps a name fragment to a type and area. Order matters:
// earlier rules are more specific ("note payable" before "payable" would
// be redundant, but "cost of" must precede the generic expense words).
type keywordRule struct {
	fragment string
	accType  model.AccountType
	area     model.Area
}

var keywordRules = []keywordRule{
	{"cash", model.AccountTypeAsset, model.AreaCash},
	{"petty", model.AccountTypeAsset, model.AreaCash},
	{"bank", model.AccountTypeAsset, model.AreaCash},
	{"receivable", model.AccountTypeAsset, model.AreaReceivables},
	{"inventory", model.AccountTypeAsset, model.AreaInventory},
	{"prepaid", model.AccountTypeAsset, model.AreaPrepaidExpenses},
	{"equipment", model.AccountTypeAsset, model.AreaFixedAssets},
	{"property", model.AccountTypeAsset, model.AreaFixedAssets},
	{"building", model.AccountTypeAsset, model.AreaFixedAssets},
	{"land", model.AccountTypeAsset, model.AreaFixedAssets},
	{"vehicle", model.AccountTypeAsset, model.AreaFixedAssets},
	{"furniture", model.AccountTypeAsset, model.AreaFixedAssets},
	{"accumulated depreciation", model.AccountTypeAsset, model.AreaFixedAssets},
	{"payable", model.AccountTypeLiability, model.AreaPayables},
	{"accrued", model.AccountTypeLiability, model.AreaAccruedLiabilities},
	{"loan", model.AccountTypeLiability, model.AreaDebt},
	{"mortgage", model.AccountTypeLiability, model.AreaDebt},
	{"bond", model.AccountTypeLiability, model.AreaDebt},
	{"deferred", model.AccountTypeLiability, model.AreaOtherLiabilities},
	{"retained earnings", model.AccountTypeEquity, model.AreaEquity},
	{"common stock", model.AccountTypeEquity, model.AreaEquity},
	{"capital", model.AccountTypeEquity, model.AreaEquity},
	{"equity", model.AccountTypeEquity, model.AreaEquity},
	{"dividend", model.AccountTypeEquity, model.AreaEquity},
	{"drawings", model.AccountTypeEquity, model.AreaEquity},
	{"revenue", model.AccountTypeRevenue, model.AreaRevenue},
	{"sales", model.AccountTypeRevenue, model.AreaRevenue},
	{"fees earned", model.AccountTypeRevenue, model.AreaRevenue},
	{"income", model.AccountTypeRevenue, model.AreaRevenue},
	{"cost of goods", model.AccountTypeExpense, model.AreaCostOfSales},
	{"cost of sales", model.AccountTypeExpense, model.AreaCostOfSales},
	{"cogs", model.AccountTypeExpense, model.AreaCostOfSales},
	{"salaries", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"wages", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"payroll", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"rent", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"utilities", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"insurance expense", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"advertising", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"supplies expense", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"depreciation expense", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"interest expense", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"travel", model.AccountTypeExpense, model.AreaOperatingExpenses},
	{"expense", model.AccountTypeExpense, model.AreaOperatingExpenses},
}

func keywordMatch(name string) (model.AccountType, model.Area, bool) {
	for _, r := range keywordRules {
		if strings.Contains(name, r.fragment) {
			return r.accType, r.area, true
		}
	}
	return model.AccountTypeUnknown, model.AreaOther, false
}

func defaultArea(t model.AccountType) model.Area {
	switch t {
	case model.AccountTypeAsset:
		return model.AreaOtherAssets
	case model.AccountTypeLiability:
		return model.AreaOtherLiabilities
	case model.AccountTypeEquity:
		return model.AreaEquity
	case model.AccountTypeRevenue:
		return model.AreaRevenue
	case model.AccountTypeExpense:
		return model.AreaOperatingExpenses
	default:
		return model.AreaOther
	}
}

func areaType(a model.Area) model.AccountType {
	switch a {
	case model.AreaCash, model.AreaReceivables, model.AreaInventory,
		model.AreaPrepaidExpenses, model.AreaFixedAssets, model.AreaOtherAssets:
		return model.AccountTypeAsset
	case model.AreaPayables, model.AreaAccruedLiabilities, model.AreaDebt,
		model.AreaOtherLiabilities:
		return model.AccountTypeLiability
	case model.AreaEquity:
		return model.AccountTypeEquity
	case model.AreaRevenue:
		return model.AccountTypeRevenue
	case model.AreaCostOfSales, model.AreaOperatingExpenses:
		return model.AccountTypeExpense
	default:
		return model.AccountTypeUnknown
	}
}
