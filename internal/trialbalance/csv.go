package trialbalance

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tickmark-dev/tickmark/internal/model"
)

const dateFormat = "2006-01-02"

// batches.csv layout.
const (
	batchNumFields   = 10
	batchColID       = 0
	batchColEngage   = 1
	batchColPeriod   = 2
	batchColEnd      = 3
	batchColSource   = 4
	batchColLocked   = 5
	batchColDebits   = 6
	batchColCredits  = 7
	batchColVariance = 8
	batchColImported = 9
)

var batchHeader = []string{"id", "engagement_id", "period_type", "period_end", "source_system", "locked", "total_debits", "total_credits", "variance", "imported_at"}

// accounts.csv layout.
const (
	acctNumFields  = 13
	acctColID      = 0
	acctColBatch   = 1
	acctColSched   = 2
	acctColNumber  = 3
	acctColName    = 4
	acctColType    = 5
	acctColStmt    = 6
	acctColArea    = 7
	acctColBegin   = 8
	acctColEnd     = 9
	acctColAdj     = 10
	acctColReclass = 11
	acctColFinal   = 12
)

var acctHeader = []string{"id", "batch_id", "schedule_id", "account_number", "account_name", "account_type", "statement", "area", "beginning_balance", "ending_balance", "audit_adjustments", "reclassifications", "final_balance"}

// MarshalBatch converts a TrialBalance to a CSV row.
func MarshalBatch(b model.TrialBalance) []string {
	row := make([]string, batchNumFields)
	row[batchColID] = b.ID
	row[batchColEngage] = b.EngagementID
	row[batchColPeriod] = string(b.PeriodType)
	row[batchColEnd] = b.PeriodEndDate.Format(dateFormat)
	row[batchColSource] = b.SourceSystem
	row[batchColLocked] = strconv.FormatBool(b.IsLocked)
	row[batchColDebits] = b.TotalDebits.StringFixed(2)
	row[batchColCredits] = b.TotalCredits.StringFixed(2)
	row[batchColVariance] = b.Variance.StringFixed(2)
	row[batchColImported] = b.ImportedAt.UTC().Format(time.RFC3339)
	return row
}

// UnmarshalBatch converts a CSV row to a TrialBalance.
func UnmarshalBatch(record []string) (model.TrialBalance, error) {
	if len(record) != batchNumFields {
		return model.TrialBalance{}, fmt.Errorf("expected %d fields, got %d", batchNumFields, len(record))
	}

	end, err := time.Parse(dateFormat, record[batchColEnd])
	if err != nil {
		return model.TrialBalance{}, fmt.Errorf("parsing period_end %q: %w", record[batchColEnd], err)
	}

	imported, err := time.Parse(time.RFC3339, record[batchColImported])
	if err != nil {
		return model.TrialBalance{}, fmt.Errorf("parsing imported_at %q: %w", record[batchColImported], err)
	}

	locked, err := strconv.ParseBool(record[batchColLocked])
	if err != nil {
		return model.TrialBalance{}, fmt.Errorf("parsing locked %q: %w", record[batchColLocked], err)
	}

	debits, err := parseDec(record[batchColDebits], "total_debits")
	if err != nil {
		return model.TrialBalance{}, err
	}
	credits, err := parseDec(record[batchColCredits], "total_credits")
	if err != nil {
		return model.TrialBalance{}, err
	}
	variance, err := parseDec(record[batchColVariance], "variance")
	if err != nil {
		return model.TrialBalance{}, err
	}

	return model.TrialBalance{
		ID:            record[batchColID],
		EngagementID:  record[batchColEngage],
		PeriodType:    model.PeriodType(record[batchColPeriod]),
		PeriodEndDate: end,
		SourceSystem:  record[batchColSource],
		IsLocked:      locked,
		TotalDebits:   debits,
		TotalCredits:  credits,
		Variance:      variance,
		ImportedAt:    imported,
	}, nil
}

// MarshalAccount converts a TrialBalanceAccount to a CSV row.
func MarshalAccount(a model.TrialBalanceAccount) []string {
	row := make([]string, acctNumFields)
	row[acctColID] = a.ID
	row[acctColBatch] = a.BatchID
	row[acctColSched] = a.ScheduleID
	row[acctColNumber] = a.AccountNumber
	row[acctColName] = a.AccountName
	row[acctColType] = string(a.Type)
	row[acctColStmt] = string(a.Statement)
	row[acctColArea] = string(a.Area)
	row[acctColBegin] = a.BeginningBalance.StringFixed(2)
	row[acctColEnd] = a.EndingBalance.StringFixed(2)
	row[acctColAdj] = a.AuditAdjustments.StringFixed(2)
	row[acctColReclass] = a.Reclassifications.StringFixed(2)
	row[acctColFinal] = a.FinalBalance.StringFixed(2)
	return row
}

// UnmarshalAccount converts a CSV row to a TrialBalanceAccount.
func UnmarshalAccount(record []string) (model.TrialBalanceAccount, error) {
	if len(record) != acctNumFields {
		return model.TrialBalanceAccount{}, fmt.Errorf("expected %d fields, got %d", acctNumFields, len(record))
	}

	a := model.TrialBalanceAccount{
		ID:            record[acctColID],
		BatchID:       record[acctColBatch],
		ScheduleID:    record[acctColSched],
		AccountNumber: record[acctColNumber],
		AccountName:   record[acctColName],
		Type:          model.AccountType(record[acctColType]),
		Statement:     model.Statement(record[acctColStmt]),
		Area:          model.Area(record[acctColArea]),
	}

	var err error
	if a.BeginningBalance, err = parseDec(record[acctColBegin], "beginning_balance"); err != nil {
		return model.TrialBalanceAccount{}, err
	}
	if a.EndingBalance, err = parseDec(record[acctColEnd], "ending_balance"); err != nil {
		return model.TrialBalanceAccount{}, err
	}
	if a.AuditAdjustments, err = parseDec(record[acctColAdj], "audit_adjustments"); err != nil {
		return model.TrialBalanceAccount{}, err
	}
	if a.Reclassifications, err = parseDec(record[acctColReclass], "reclassifications"); err != nil {
		return model.TrialBalanceAccount{}, err
	}
	if a.FinalBalance, err = parseDec(record[acctColFinal], "final_balance"); err != nil {
		return model.TrialBalanceAccount{}, err
	}
	return a, nil
}

func parseDec(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}

func readBatchRows(r io.Reader) ([]model.TrialBalance, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = batchNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading batches CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var batches []model.TrialBalance
	for i, rec := range records[1:] {
		b, err := UnmarshalBatch(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func readAccountRows(r io.Reader) ([]model.TrialBalanceAccount, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = acctNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var accounts []model.TrialBalanceAccount
	for i, rec := range records[1:] {
		a, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func writeBatchRows(w io.Writer, batches []model.TrialBalance) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(batchHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, b := range batches {
		if err := cw.Write(MarshalBatch(b)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

func writeAccountRows(w io.Writer, accounts []model.TrialBalanceAccount) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(acctHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range accounts {
		if err := cw.Write(MarshalAccount(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
