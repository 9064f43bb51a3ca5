// Package importer turns parsed ledger-export tables into typed
// ImportedAccount values. Untyped rows stop at this boundary: everything
// downstream works with classified accounts and exact decimals.
package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tickmark-dev/tickmark/internal/classify"
	"github.com/tickmark-dev/tickmark/internal/model"
	"github.com/tickmark-dev/tickmark/internal/parse"
)

// RowWarning flags a recoverable oddity on one source row. Warnings never
// block an import; they surface in the validation result for the operator.
type RowWarning struct {
	Row     int
	Message string
}

// ImportRows converts table rows into ImportedAccounts using the column
// mapping. Unparsable amounts default to zero with a row warning rather
// than being dropped. Debit/credit polarity comes from column identity;
// a sign embedded in the cell is stripped (and flagged) so heterogeneous
// exports cannot silently invert balances.
func ImportRows(table *parse.Table, mapping parse.Mapping) ([]model.ImportedAccount, []RowWarning, error) {
	if err := mapping.Validate(); err != nil {
		return nil, nil, err
	}

	var accounts []model.ImportedAccount
	var warnings []RowWarning

	for i, row := range table.Rows {
		rowNum := i + 2 // 1-based, after the header row

		acct := model.ImportedAccount{
			Row:           rowNum,
			AccountNumber: strings.TrimSpace(cell(row, mapping.AccountNumber)),
			AccountName:   strings.TrimSpace(cell(row, mapping.AccountName)),
		}

		acct.DebitBalance = parseColumn(row, mapping.Debit, rowNum, "debit", &warnings)
		acct.CreditBalance = parseColumn(row, mapping.Credit, rowNum, "credit", &warnings)

		if mapping.Beginning >= 0 {
			raw := cell(row, mapping.Beginning)
			if strings.TrimSpace(raw) != "" {
				v, ok := ParseAmount(raw)
				if !ok {
					warnings = append(warnings, RowWarning{
						Row:     rowNum,
						Message: fmt.Sprintf("unparsable beginning balance %q, defaulting to zero", raw),
					})
				}
				acct.BeginningBalance = v
			}
		}

		suggestion := classify.Classify(acct.AccountNumber, acct.AccountName)
		acct.Type = suggestion.Type
		acct.Statement = suggestion.Statement
		acct.Area = suggestion.Area
		acct.Confidence = suggestion.Confidence

		accounts = append(accounts, acct)
	}

	return accounts, warnings, nil
}

// parseColumn parses a debit or credit cell into a non-negative balance.
func parseColumn(row []string, col, rowNum int, side string, warnings *[]RowWarning) decimal.Decimal {
	raw := cell(row, col)
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero
	}

	v, ok := ParseAmount(raw)
	if !ok {
		*warnings = append(*warnings, RowWarning{
			Row:     rowNum,
			Message: fmt.Sprintf("unparsable %s %q, defaulting to zero", side, raw),
		})
		return decimal.Zero
	}

	if v.IsNegative() {
		*warnings = append(*warnings, RowWarning{
			Row:     rowNum,
			Message: fmt.Sprintf("negative amount in %s column, polarity taken from column", side),
		})
		v = v.Abs()
	}
	return v
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// ParseAmount parses a currency-formatted cell into a decimal, stripping
// currency symbols, thousands separators, and whitespace, and honoring the
// parenthesis-as-negative convention. Returns false when nothing numeric
// remains.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			b.WriteRune(r)
		case r == ',', r == ' ', r == '$', r == '€', r == '£', r == '¥':
			// formatting noise
		default:
			return decimal.Zero, false
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero, false
	}

	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		v = v.Neg()
	}
	return v, true
}
