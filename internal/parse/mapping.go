package parse

import (
	"fmt"
	"strings"
)

// Field names a canonical trial-balance column.
type Field string

const (
	FieldAccountNumber Field = "account_number"
	FieldAccountName   Field = "account_name"
	FieldDebit         Field = "debit_balance"
	FieldCredit        Field = "credit_balance"
	FieldBeginning     Field = "beginning_balance"
)

// MappingError indicates required columns could not be assigned. Fatal to
// the import attempt; the operator must supply overrides.
type MappingError struct {
	Missing []Field
}

func (e *MappingError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return "unmapped required columns: " + strings.Join(names, ", ")
}

// Mapping assigns canonical fields to column indexes. -1 means unmapped.
// Beginning balance is optional; the rest are required.
type Mapping struct {
	AccountNumber int
	AccountName   int
	Debit         int
	Credit        int
	Beginning     int
}

// EmptyMapping returns a Mapping with every field unassigned.
func EmptyMapping() Mapping {
	return Mapping{AccountNumber: -1, AccountName: -1, Debit: -1, Credit: -1, Beginning: -1}
}

// MapColumns scans headers case-insensitively for name fragments and
// pre-populates a Mapping. Polarity is inferred from header text only,
// never from cell contents, so a miscaptioned column cannot silently
// invert signs. First matching header wins per field.
func MapColumns(headers []string) Mapping {
	m := EmptyMapping()

	for i, raw := range headers {
		h := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case m.AccountNumber < 0 && hasAccountWord(h) && containsAny(h, "number", "code", "#", "no."):
			m.AccountNumber = i
		case m.AccountName < 0 && hasAccountWord(h) && containsAny(h, "name", "description", "title"):
			m.AccountName = i
		case m.Beginning < 0 && containsAny(h, "beginning", "opening") && strings.Contains(h, "balance"):
			m.Beginning = i
		case m.Debit < 0 && strings.Contains(h, "debit"):
			m.Debit = i
		case m.Credit < 0 && strings.Contains(h, "credit"):
			m.Credit = i
		}
	}

	// Second pass: a bare "account" column with the number already taken
	// is almost always the name ("Account #", "Account" pairs).
	if m.AccountName < 0 && m.AccountNumber >= 0 {
		for i, raw := range headers {
			h := strings.ToLower(strings.TrimSpace(raw))
			if i != m.AccountNumber && hasAccountWord(h) {
				m.AccountName = i
				break
			}
		}
	}

	return m
}

func hasAccountWord(h string) bool {
	return strings.Contains(h, "account") || strings.Contains(h, "acct")
}

func containsAny(h string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(h, s) {
			return true
		}
	}
	return false
}

// Override assigns a field to a column, replacing any heuristic choice.
func (m *Mapping) Override(field Field, col int) error {
	switch field {
	case FieldAccountNumber:
		m.AccountNumber = col
	case FieldAccountName:
		m.AccountName = col
	case FieldDebit:
		m.Debit = col
	case FieldCredit:
		m.Credit = col
	case FieldBeginning:
		m.Beginning = col
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// Validate reports a MappingError when any required field is unmapped.
func (m Mapping) Validate() error {
	var missing []Field
	if m.AccountNumber < 0 {
		missing = append(missing, FieldAccountNumber)
	}
	if m.AccountName < 0 {
		missing = append(missing, FieldAccountName)
	}
	if m.Debit < 0 {
		missing = append(missing, FieldDebit)
	}
	if m.Credit < 0 {
		missing = append(missing, FieldCredit)
	}
	if len(missing) > 0 {
		return &MappingError{Missing: missing}
	}
	return nil
}
