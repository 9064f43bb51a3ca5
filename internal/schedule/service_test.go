package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tickmark-dev/tickmark/internal/model"
	"github.com/tickmark-dev/tickmark/internal/risk"
	"github.com/tickmark-dev/tickmark/internal/trialbalance"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

type fixture struct {
	tb    *trialbalance.Service
	sched *Service
	batch model.TrialBalance
}

func imported(row int, number, name, debit, credit string) model.ImportedAccount {
	a := model.ImportedAccount{
		Row:           row,
		AccountNumber: number,
		AccountName:   name,
		DebitBalance:  dec(debit),
		CreditBalance: dec(credit),
		Confidence:    0.9,
	}
	a.Type = model.AccountTypeAsset
	a.Statement = model.StatementBalanceSheet
	a.Area = model.AreaCash
	return a
}

func newFixture(t *testing.T, accounts ...model.ImportedAccount) *fixture {
	t.Helper()
	root := t.TempDir()
	tb := trialbalance.NewService(root, zap.NewNop())
	sched := NewService(root, zap.NewNop(), tb)

	batch, result, err := tb.CommitImport(trialbalance.CommitParams{
		EngagementID:  "eng-1",
		PeriodType:    model.PeriodAnnual,
		PeriodEndDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Accounts:      accounts,
	})
	require.NoError(t, err)
	require.True(t, result.IsValid)

	return &fixture{tb: tb, sched: sched, batch: batch}
}

func balancedPair(t *testing.T) *fixture {
	t.Helper()
	cash := imported(2, "1000", "Cash", "1000.00", "0")
	rev := imported(3, "4000", "Revenue", "0", "1000.00")
	rev.Type = model.AccountTypeRevenue
	rev.Statement = model.StatementIncome
	rev.Area = model.AreaRevenue
	return newFixture(t, cash, rev)
}

func TestCreate_DuplicateNumber(t *testing.T) {
	f := balancedPair(t)

	_, err := f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-1", ScheduleName: "Cash", Area: model.AreaCash, RiskLevel: model.RiskLow})
	require.NoError(t, err)

	_, err = f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-1", ScheduleName: "More Cash", Area: model.AreaCash, RiskLevel: model.RiskLow})
	var derr *DuplicateScheduleNumberError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "A-1", derr.Number)

	_, err = f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleName: "No Number"})
	assert.Error(t, err)
}

func TestCreate_StartsAtZero(t *testing.T) {
	f := balancedPair(t)
	s, err := f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-1", ScheduleName: "Cash", Area: model.AreaCash})
	require.NoError(t, err)
	assert.True(t, s.FinalBalance.IsZero(), "balances start at zero pending linking")
	assert.Equal(t, model.StateUnprepared, s.State())
}

func TestLinkUnlinkRollup(t *testing.T) {
	f := balancedPair(t)
	accounts, err := f.tb.Accounts(f.batch.ID)
	require.NoError(t, err)
	cash, revenue := accounts[0], accounts[1]

	s, err := f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-1", ScheduleName: "Cash", Area: model.AreaCash})
	require.NoError(t, err)

	// Adjust Cash +50 first: final 1050.
	_, err = f.tb.RecordAdjustment(cash.ID, dec("50.00"), false)
	require.NoError(t, err)

	require.NoError(t, f.sched.Link(s.ID, cash.ID))
	require.NoError(t, f.sched.Link(s.ID, revenue.ID))

	got, err := f.sched.Schedule(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", got.FinalBalance.StringFixed(2), "1050 + (-1000)")
	assert.Equal(t, "0.00", got.EndingBalance.StringFixed(2))
	assert.Equal(t, "50.00", got.AuditAdjustments.StringFixed(2))

	// Unlink recomputes from scratch.
	require.NoError(t, f.sched.Unlink(s.ID, revenue.ID))
	got, err = f.sched.Schedule(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "1050.00", got.FinalBalance.StringFixed(2))

	// Rollup always equals the sum over currently linked accounts.
	members, err := f.tb.AccountsBySchedule(s.ID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, a := range members {
		sum = sum.Add(a.FinalBalance)
	}
	assert.True(t, got.FinalBalance.Equal(sum))
}

func TestLink_AccountAlreadyLinkedElsewhere(t *testing.T) {
	f := balancedPair(t)
	accounts, err := f.tb.Accounts(f.batch.ID)
	require.NoError(t, err)

	first, err := f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-1", ScheduleName: "Cash", Area: model.AreaCash})
	require.NoError(t, err)
	second, err := f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-2", ScheduleName: "Also Cash", Area: model.AreaCash})
	require.NoError(t, err)

	require.NoError(t, f.sched.Link(first.ID, accounts[0].ID))
	err = f.sched.Link(second.ID, accounts[0].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already linked")

	// Relinking to the same schedule is a no-op, not an error.
	require.NoError(t, f.sched.Link(first.ID, accounts[0].ID))
}

func TestRefreshForAccount(t *testing.T) {
	f := balancedPair(t)
	accounts, err := f.tb.Accounts(f.batch.ID)
	require.NoError(t, err)
	cash := accounts[0]

	s, err := f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-1", ScheduleName: "Cash", Area: model.AreaCash})
	require.NoError(t, err)
	require.NoError(t, f.sched.Link(s.ID, cash.ID))

	_, err = f.tb.RecordAdjustment(cash.ID, dec("-100.00"), true)
	require.NoError(t, err)
	require.NoError(t, f.sched.RefreshForAccount(cash.ID))

	got, err := f.sched.Schedule(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "900.00", got.FinalBalance.StringFixed(2))
	assert.Equal(t, "-100.00", got.Reclassifications.StringFixed(2))

	// Unlinked accounts refresh to nothing.
	rev := accounts[1]
	require.NoError(t, f.sched.RefreshForAccount(rev.ID))
}

func TestAutoGenerate(t *testing.T) {
	cashOp := imported(2, "1000", "Cash - Operating", "90000.00", "0")
	cashPay := imported(3, "1010", "Cash - Payroll", "30000.00", "0")
	ar := imported(4, "1200", "Accounts Receivable", "5000.00", "0")
	ar.Area = model.AreaReceivables
	rev := imported(5, "4000", "Product Revenue", "0", "125000.00")
	rev.Type = model.AccountTypeRevenue
	rev.Statement = model.StatementIncome
	rev.Area = model.AreaRevenue

	f := newFixture(t, cashOp, cashPay, ar, rev)

	assessor := risk.NewStatic(map[string]string{"revenue": "high"})
	created, err := f.sched.AutoGenerate(AutoParams{
		EngagementID: "eng-1",
		BatchID:      f.batch.ID,
		Materiality:  dec("10000"),
		Risk:         assessor,
	})
	require.NoError(t, err)
	require.Len(t, created, 3, "cash stem, receivable stem, revenue stem")

	byNumber := make(map[string]model.LeadSchedule)
	for _, s := range created {
		byNumber[s.ScheduleNumber] = s
	}

	cashSched, ok := byNumber["A-1"]
	require.True(t, ok, "cash area takes section A")
	assert.Equal(t, "Cash", cashSched.ScheduleName)
	assert.Equal(t, "120000.00", cashSched.FinalBalance.StringFixed(2), "both cash accounts grouped")
	// 120000 > 10 x 10000: significant on magnitude.
	assert.True(t, cashSched.SignificantAccount)
	assert.Equal(t, model.RiskModerate, cashSched.RiskLevel)

	arSched, ok := byNumber["B-1"]
	require.True(t, ok)
	assert.Equal(t, "5000.00", arSched.FinalBalance.StringFixed(2))
	assert.False(t, arSched.SignificantAccount, "small balance, moderate risk")

	revSched, ok := byNumber["S-1"]
	require.True(t, ok)
	assert.Equal(t, model.RiskHigh, revSched.RiskLevel)
	assert.True(t, revSched.SignificantAccount, "high-risk area is significant regardless of size")

	// Materiality derivation happens on read, per schedule.
	assert.True(t, cashSched.IsMaterial(dec("10000")))
	assert.False(t, arSched.IsMaterial(dec("10000")))
}

func TestAutoGenerate_SkipsLinkedAccounts(t *testing.T) {
	f := balancedPair(t)
	accounts, err := f.tb.Accounts(f.batch.ID)
	require.NoError(t, err)

	manual, err := f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-9", ScheduleName: "Cash", Area: model.AreaCash})
	require.NoError(t, err)
	require.NoError(t, f.sched.Link(manual.ID, accounts[0].ID))

	created, err := f.sched.AutoGenerate(AutoParams{
		EngagementID: "eng-1",
		BatchID:      f.batch.ID,
		Materiality:  dec("10000"),
	})
	require.NoError(t, err)
	require.Len(t, created, 1, "only the unlinked revenue account groups")
	assert.Equal(t, model.AreaRevenue, created[0].Area)
}

func TestSignOff_Ordering(t *testing.T) {
	f := balancedPair(t)
	s, err := f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-1", ScheduleName: "Cash", Area: model.AreaCash})
	require.NoError(t, err)

	// Reviewer before preparer always fails.
	_, err = f.sched.SignOff(s.ID, model.RoleReviewer, "msmith")
	var oerr *OutOfOrderSignOffError
	require.ErrorAs(t, err, &oerr)

	signed, err := f.sched.SignOff(s.ID, model.RolePreparer, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", signed.PreparedBy)
	assert.False(t, signed.PreparedAt.IsZero())
	assert.Equal(t, model.StatePreparerSigned, signed.State())

	// Preparer cannot sign twice.
	_, err = f.sched.SignOff(s.ID, model.RolePreparer, "jdoe")
	require.Error(t, err)

	signed, err = f.sched.SignOff(s.ID, model.RoleReviewer, "msmith")
	require.NoError(t, err)
	assert.Equal(t, "msmith", signed.ReviewedBy)
	assert.Equal(t, model.StateReviewerSigned, signed.State())

	// Unknown role.
	_, err = f.sched.SignOff(s.ID, model.SignOffRole("partner"), "x")
	require.Error(t, err)
}

func TestReviewerSignedLocksSchedule(t *testing.T) {
	f := balancedPair(t)
	accounts, err := f.tb.Accounts(f.batch.ID)
	require.NoError(t, err)
	cash := accounts[0]

	s, err := f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-1", ScheduleName: "Cash", Area: model.AreaCash})
	require.NoError(t, err)
	require.NoError(t, f.sched.Link(s.ID, cash.ID))

	_, err = f.sched.SignOff(s.ID, model.RolePreparer, "jdoe")
	require.NoError(t, err)
	_, err = f.sched.SignOff(s.ID, model.RoleReviewer, "msmith")
	require.NoError(t, err)

	var lerr *LockedScheduleError

	// Membership mutations are rejected.
	err = f.sched.Link(s.ID, accounts[1].ID)
	require.ErrorAs(t, err, &lerr)
	err = f.sched.Unlink(s.ID, cash.ID)
	require.ErrorAs(t, err, &lerr)

	// The adjustment path asks Guard before touching a member account.
	err = f.sched.Guard(cash.ID)
	require.ErrorAs(t, err, &lerr)

	// Accounts off any schedule are unguarded.
	require.NoError(t, f.sched.Guard(accounts[1].ID))

	// Further reviewer sign-off attempts are rejected too.
	_, err = f.sched.SignOff(s.ID, model.RoleReviewer, "other")
	require.Error(t, err)
	_, err = f.sched.SignOff(s.ID, model.RolePreparer, "other")
	require.ErrorAs(t, err, &lerr)
}

func TestByNumber(t *testing.T) {
	f := balancedPair(t)
	created, err := f.sched.Create(CreateParams{EngagementID: "eng-1", ScheduleNumber: "A-1", ScheduleName: "Cash", Area: model.AreaCash})
	require.NoError(t, err)

	got, err := f.sched.ByNumber("A-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.sched.ByNumber("Q-9")
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestBuildIndex(t *testing.T) {
	accounts := []model.TrialBalanceAccount{
		{ID: "a1", ScheduleID: "s1"},
		{ID: "a2", ScheduleID: "s1"},
		{ID: "a3"},
	}
	idx := BuildIndex(accounts)
	assert.Equal(t, "s1", idx.ByAccount["a1"])
	assert.Len(t, idx.BySchedule["s1"], 2)
	_, ok := idx.ByAccount["a3"]
	assert.False(t, ok)
}

func TestStem(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Cash - Operating", "cash"},
		{"Petty Cash", "cash"},
		{"Accounts Receivable", "receivable"},
		{"Trade Receivables", "receivable"},
		{"Salaries Expense", "salar"},
		{"Misc Holding", "misc"},
		{"12345", "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stem(tt.name), "stem(%q)", tt.name)
	}
}
