package trialbalance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tickmark-dev/tickmark/internal/model"
)

// DefaultEpsilon is the tolerated debit/credit variance. Rounding noise up
// to a cent is normal in client exports; anything beyond it is a real
// imbalance. Configurable because non-USD rounding conventions differ.
var DefaultEpsilon = decimal.New(1, -2) // 0.01

// UnclassifiedConfidence is the classifier confidence below which an
// account is flagged as unclassified.
const UnclassifiedConfidence = 0.5

// IssueKind classifies a finding so callers can react by class instead
// of matching message text.
type IssueKind string

const (
	KindMissingAccountNumber IssueKind = "missing_account_number"
	KindMissingAccountName   IssueKind = "missing_account_name"
	KindDuplicateAccount     IssueKind = "duplicate_account_number"
	KindImbalance            IssueKind = "imbalance"
	KindUnclassified         IssueKind = "unclassified"
	KindAmbiguousEntry       IssueKind = "ambiguous_entry"
	KindImportNote           IssueKind = "import_note"
)

// Issue is one validation finding, tied to its source row where possible.
// Row 0 means the finding applies to the batch as a whole.
type Issue struct {
	Kind    IssueKind
	Row     int
	Message string
}

// Summary totals an import batch for display alongside findings.
type Summary struct {
	TotalAccounts int
	TotalDebits   decimal.Decimal
	TotalCredits  decimal.Decimal
	Variance      decimal.Decimal
	IsBalanced    bool
}

// ValidationResult is data, not an error: the operator sees every finding
// at once and fixes the export without re-uploading blind.
type ValidationResult struct {
	IsValid  bool
	Errors   []Issue
	Warnings []Issue
	Summary  Summary
}

// Validate checks an import batch for structural problems and double-entry
// balance. Pure and synchronous; safe to run concurrently for live preview.
// Errors block import (absent a forced override for imbalance only);
// warnings never do.
func Validate(accounts []model.ImportedAccount, epsilon decimal.Decimal) ValidationResult {
	var result ValidationResult

	// Structural errors: identity fields are non-negotiable.
	for _, a := range accounts {
		if a.AccountNumber == "" {
			result.Errors = append(result.Errors, Issue{Kind: KindMissingAccountNumber, Row: a.Row, Message: "missing account number"})
		}
		if a.AccountName == "" {
			result.Errors = append(result.Errors, Issue{Kind: KindMissingAccountName, Row: a.Row, Message: "missing account name"})
		}
	}

	// Duplicate account numbers within the batch.
	firstRow := make(map[string]int)
	for _, a := range accounts {
		if a.AccountNumber == "" {
			continue
		}
		if prev, seen := firstRow[a.AccountNumber]; seen {
			result.Errors = append(result.Errors, Issue{
				Kind:    KindDuplicateAccount,
				Row:     a.Row,
				Message: fmt.Sprintf("duplicate account number %s (first seen on row %d)", a.AccountNumber, prev),
			})
			continue
		}
		firstRow[a.AccountNumber] = a.Row
	}

	// Double-entry balance across the batch.
	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	for _, a := range accounts {
		totalDebits = totalDebits.Add(a.DebitBalance)
		totalCredits = totalCredits.Add(a.CreditBalance)
	}
	variance := totalDebits.Sub(totalCredits)
	balanced := variance.Abs().LessThanOrEqual(epsilon)
	if !balanced {
		result.Errors = append(result.Errors, Issue{
			Kind: KindImbalance,
			Message: fmt.Sprintf("overall imbalance: debits %s != credits %s (variance %s)",
				totalDebits.StringFixed(2), totalCredits.StringFixed(2), variance.StringFixed(2)),
		})
	}

	// Warnings: worth a look, never worth blocking the workflow.
	for _, a := range accounts {
		if a.Confidence < UnclassifiedConfidence {
			result.Warnings = append(result.Warnings, Issue{
				Kind:    KindUnclassified,
				Row:     a.Row,
				Message: fmt.Sprintf("unclassified account %q (confidence %.2f)", a.AccountName, a.Confidence),
			})
		}
		if !a.DebitBalance.IsZero() && !a.CreditBalance.IsZero() && !a.DebitBalance.Equal(a.CreditBalance) {
			result.Warnings = append(result.Warnings, Issue{
				Kind:    KindAmbiguousEntry,
				Row:     a.Row,
				Message: "ambiguous entry: both debit and credit balances present",
			})
		}
	}

	result.Summary = Summary{
		TotalAccounts: len(accounts),
		TotalDebits:   totalDebits,
		TotalCredits:  totalCredits,
		Variance:      variance,
		IsBalanced:    balanced,
	}
	result.IsValid = len(result.Errors) == 0
	return result
}

// onlyImbalance reports whether every error in the result is the batch
// imbalance finding. Only that class of error is force-overridable.
func onlyImbalance(result ValidationResult) bool {
	if len(result.Errors) == 0 {
		return false
	}
	for _, e := range result.Errors {
		if e.Kind != KindImbalance {
			return false
		}
	}
	return true
}
