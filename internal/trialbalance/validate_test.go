package trialbalance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickmark-dev/tickmark/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func acct(row int, number, name, debit, credit string) model.ImportedAccount {
	return model.ImportedAccount{
		Row:           row,
		AccountNumber: number,
		AccountName:   name,
		DebitBalance:  dec(debit),
		CreditBalance: dec(credit),
		Confidence:    0.9,
	}
}

func TestValidate_BalancedBatch(t *testing.T) {
	// Cash debit 1000 against Revenue credit 1000.
	accounts := []model.ImportedAccount{
		acct(2, "1000", "Cash", "1000.00", "0"),
		acct(3, "4000", "Revenue", "0", "1000.00"),
	}

	result := Validate(accounts, DefaultEpsilon)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.True(t, result.Summary.IsBalanced)
	assert.Equal(t, "0.00", result.Summary.Variance.StringFixed(2))
	assert.Equal(t, 2, result.Summary.TotalAccounts)
	assert.Equal(t, "1000.00", result.Summary.TotalDebits.StringFixed(2))
}

func TestValidate_Imbalance(t *testing.T) {
	// Cash debit 1000 against Revenue credit 900: variance 100.
	accounts := []model.ImportedAccount{
		acct(2, "1000", "Cash", "1000.00", "0"),
		acct(3, "4000", "Revenue", "0", "900.00"),
	}

	result := Validate(accounts, DefaultEpsilon)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindImbalance, result.Errors[0].Kind)
	assert.Contains(t, result.Errors[0].Message, "overall imbalance")
	assert.Equal(t, "100.00", result.Summary.Variance.StringFixed(2))
	assert.False(t, result.Summary.IsBalanced)
}

func TestValidate_IssueKinds(t *testing.T) {
	a := acct(0, "", "Mystery", "100.00", "40.00")
	a.Confidence = 0.2
	accounts := []model.ImportedAccount{a}

	result := Validate(accounts, DefaultEpsilon)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, KindMissingAccountNumber, result.Errors[0].Kind)
	assert.Equal(t, KindImbalance, result.Errors[1].Kind)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, KindUnclassified, result.Warnings[0].Kind)
	assert.Equal(t, KindAmbiguousEntry, result.Warnings[1].Kind)
}

func TestValidate_VarianceWithinEpsilon(t *testing.T) {
	accounts := []model.ImportedAccount{
		acct(2, "1000", "Cash", "1000.00", "0"),
		acct(3, "4000", "Revenue", "0", "999.99"),
	}

	result := Validate(accounts, DefaultEpsilon)
	assert.True(t, result.IsValid, "a one-cent variance is rounding noise")
	assert.True(t, result.Summary.IsBalanced)

	// A tighter epsilon turns the same batch invalid.
	result = Validate(accounts, decimal.Zero.Add(dec("0.001")))
	assert.False(t, result.IsValid)
}

func TestValidate_MissingIdentityFields(t *testing.T) {
	accounts := []model.ImportedAccount{
		acct(2, "", "Cash", "100.00", "0"),
		acct(3, "4000", "", "0", "100.00"),
	}

	result := Validate(accounts, DefaultEpsilon)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "missing account number")
	assert.Equal(t, 3, result.Errors[1].Row)
	assert.Contains(t, result.Errors[1].Message, "missing account name")
}

func TestValidate_DuplicateAccountNumbers(t *testing.T) {
	accounts := []model.ImportedAccount{
		acct(2, "1000", "Cash", "50.00", "0"),
		acct(3, "1000", "Cash again", "0", "50.00"),
	}

	result := Validate(accounts, DefaultEpsilon)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "duplicate account number 1000")
}

func TestValidate_UnclassifiedWarning(t *testing.T) {
	a := acct(2, "X1", "Mystery", "100.00", "0")
	a.Confidence = 0.2
	b := acct(3, "4000", "Revenue", "0", "100.00")

	result := Validate([]model.ImportedAccount{a, b}, DefaultEpsilon)
	assert.True(t, result.IsValid, "warnings never block import")
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 2, result.Warnings[0].Row)
	assert.Contains(t, result.Warnings[0].Message, "unclassified")
}

func TestValidate_AmbiguousEntryWarning(t *testing.T) {
	a := acct(2, "1000", "Cash", "100.00", "40.00")
	b := acct(3, "4000", "Revenue", "0", "60.00")

	result := Validate([]model.ImportedAccount{a, b}, DefaultEpsilon)
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "ambiguous entry")

	// Equal debit and credit on one row is a wash, not ambiguous.
	a.CreditBalance = dec("100.00")
	b.CreditBalance = dec("0")
	result = Validate([]model.ImportedAccount{a, b}, DefaultEpsilon)
	assert.Empty(t, result.Warnings)
}

func TestValidate_EmptyBatch(t *testing.T) {
	result := Validate(nil, DefaultEpsilon)
	assert.True(t, result.IsValid)
	assert.Equal(t, 0, result.Summary.TotalAccounts)
	assert.True(t, result.Summary.IsBalanced)
}
