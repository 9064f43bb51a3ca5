package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickmark-dev/tickmark/internal/model"
	"github.com/tickmark-dev/tickmark/internal/parse"
)

func mustParse(t *testing.T, text string) *parse.Table {
	t.Helper()
	table, err := parse.Parse(text)
	require.NoError(t, err)
	return table
}

func TestImportRows_Basic(t *testing.T) {
	table := mustParse(t, "Account Number,Account Name,Debit,Credit\n"+
		"1000,Cash,\"1,000.00\",\n"+
		"4000,Revenue,,\"$1,000.00\"\n")

	accounts, warnings, err := ImportRows(table, parse.MapColumns(table.Headers))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, accounts, 2)

	cash := accounts[0]
	assert.Equal(t, "1000", cash.AccountNumber)
	assert.Equal(t, "Cash", cash.AccountName)
	assert.Equal(t, "1000.00", cash.DebitBalance.StringFixed(2))
	assert.True(t, cash.CreditBalance.IsZero())
	assert.Equal(t, model.AccountTypeAsset, cash.Type)
	assert.Equal(t, 2, cash.Row)

	rev := accounts[1]
	assert.Equal(t, "1000.00", rev.CreditBalance.StringFixed(2))
	assert.Equal(t, model.AccountTypeRevenue, rev.Type)
	assert.Equal(t, 3, rev.Row)
}

func TestImportRows_UnparsableDefaultsToZeroWithWarning(t *testing.T) {
	table := mustParse(t, "Account Number,Account Name,Debit,Credit\n1000,Cash,n/a,\n")

	accounts, warnings, err := ImportRows(table, parse.MapColumns(table.Headers))
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].DebitBalance.IsZero())

	require.Len(t, warnings, 1)
	assert.Equal(t, 2, warnings[0].Row)
	assert.Contains(t, warnings[0].Message, "unparsable debit")
}

func TestImportRows_SignFromColumnIdentity(t *testing.T) {
	// Parenthesized negative in the debit column: magnitude kept, polarity
	// comes from the column, and the operator is warned.
	table := mustParse(t, "Account Number,Account Name,Debit,Credit\n1000,Cash,(250.00),\n")

	accounts, warnings, err := ImportRows(table, parse.MapColumns(table.Headers))
	require.NoError(t, err)
	assert.Equal(t, "250.00", accounts[0].DebitBalance.StringFixed(2))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "polarity taken from column")
}

func TestImportRows_BeginningBalance(t *testing.T) {
	table := mustParse(t, "Account Number,Account Name,Beginning Balance,Debit,Credit\n"+
		"1000,Cash,\"(1,500.00)\",2000.00,\n")

	accounts, warnings, err := ImportRows(table, parse.MapColumns(table.Headers))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "-1500.00", accounts[0].BeginningBalance.StringFixed(2))
}

func TestImportRows_UnmappedColumnsFatal(t *testing.T) {
	table := mustParse(t, "Col1,Col2\nx,y\n")
	_, _, err := ImportRows(table, parse.MapColumns(table.Headers))
	var merr *parse.MappingError
	require.ErrorAs(t, err, &merr)
}

func TestImportRows_ShortRow(t *testing.T) {
	table := mustParse(t, "Account Number,Account Name,Debit,Credit\n1000,Cash\n")
	accounts, _, err := ImportRows(table, parse.MapColumns(table.Headers))
	require.NoError(t, err)
	assert.True(t, accounts[0].DebitBalance.IsZero())
	assert.True(t, accounts[0].CreditBalance.IsZero())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"1,234.56", "1234.56", true},
		{"$1,234.56", "1234.56", true},
		{"(500.00)", "-500.00", true},
		{"($2,000)", "-2000.00", true},
		{"  42 ", "42.00", true},
		{"-17.50", "-17.50", true},
		{"€99,00", "9900.00", true}, // comma treated as thousands separator
		{"", "0.00", false},
		{"n/a", "0.00", false},
		{"12.3.4", "0.00", false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.raw)
		assert.Equal(t, tt.ok, ok, "ParseAmount(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got.StringFixed(2), "ParseAmount(%q)", tt.raw)
	}
}

func TestQuickBooksProfile(t *testing.T) {
	table := mustParse(t, "Account,Debit,Credit\n"+
		"1000 · Checking,\"5,000.00\",\n"+
		"4000 · Sales,,\"5,000.00\"\n"+
		"TOTAL,\"5,000.00\",\"5,000.00\"\n")

	p := &QuickBooksProfile{}
	mapping, err := p.Prepare(table)
	require.NoError(t, err)

	accounts, _, err := ImportRows(table, mapping)
	require.NoError(t, err)
	require.Len(t, accounts, 2, "TOTAL row should be dropped")
	assert.Equal(t, "1000", accounts[0].AccountNumber)
	assert.Equal(t, "Checking", accounts[0].AccountName)
	assert.Equal(t, "Sales", accounts[1].AccountName)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("generic"))
	assert.NotNil(t, r.Get("QuickBooks"))
	assert.Nil(t, r.Get("netledger"))

	assert.Panics(t, func() { r.Register(&GenericProfile{}) })
}

func TestScanAndMarkProcessed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "import"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "import", "tb.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "import", "notes.pdf"), []byte("x"), 0o644))

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "tb.csv", files[0].Name)

	require.NoError(t, MarkProcessed(root, "tb.csv"))
	files, err = Scan(root)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = os.Stat(filepath.Join(root, "import", "processed", "tb.csv"))
	assert.NoError(t, err)
}

func TestScan_NoInbox(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}
