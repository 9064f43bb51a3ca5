package schedule

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tickmark-dev/tickmark/internal/model"
)

// schedules.csv layout.
const (
	numFields      = 18
	colID          = 0
	colEngage      = 1
	colNumber      = 2
	colName        = 3
	colArea        = 4
	colRisk        = 5
	colSignificant = 6
	colBegin       = 7
	colEnd         = 8
	colAdj         = 9
	colReclass     = 10
	colFinal       = 11
	colPreparedBy  = 12
	colPreparedAt  = 13
	colReviewedBy  = 14
	colReviewedAt  = 15
	colProcedures  = 16
	colTesting     = 17
)

var header = []string{"id", "engagement_id", "schedule_number", "schedule_name", "area", "risk_level", "significant_account", "beginning_balance", "ending_balance", "audit_adjustments", "reclassifications", "final_balance", "prepared_by", "prepared_at", "reviewed_by", "reviewed_at", "procedures_completed", "testing_strategy"}

// MarshalSchedule converts a LeadSchedule to a CSV row.
func MarshalSchedule(s model.LeadSchedule) []string {
	row := make([]string, numFields)
	row[colID] = s.ID
	row[colEngage] = s.EngagementID
	row[colNumber] = s.ScheduleNumber
	row[colName] = s.ScheduleName
	row[colArea] = string(s.Area)
	row[colRisk] = string(s.RiskLevel)
	row[colSignificant] = strconv.FormatBool(s.SignificantAccount)
	row[colBegin] = s.BeginningBalance.StringFixed(2)
	row[colEnd] = s.EndingBalance.StringFixed(2)
	row[colAdj] = s.AuditAdjustments.StringFixed(2)
	row[colReclass] = s.Reclassifications.StringFixed(2)
	row[colFinal] = s.FinalBalance.StringFixed(2)
	row[colPreparedBy] = s.PreparedBy
	if !s.PreparedAt.IsZero() {
		row[colPreparedAt] = s.PreparedAt.UTC().Format(time.RFC3339)
	}
	row[colReviewedBy] = s.ReviewedBy
	if !s.ReviewedAt.IsZero() {
		row[colReviewedAt] = s.ReviewedAt.UTC().Format(time.RFC3339)
	}
	row[colProcedures] = s.ProceduresCompleted
	row[colTesting] = s.TestingStrategy
	return row
}

// UnmarshalSchedule converts a CSV row to a LeadSchedule.
func UnmarshalSchedule(record []string) (model.LeadSchedule, error) {
	if len(record) != numFields {
		return model.LeadSchedule{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	significant, err := strconv.ParseBool(record[colSignificant])
	if err != nil {
		return model.LeadSchedule{}, fmt.Errorf("parsing significant_account %q: %w", record[colSignificant], err)
	}

	s := model.LeadSchedule{
		ID:                  record[colID],
		EngagementID:        record[colEngage],
		ScheduleNumber:      record[colNumber],
		ScheduleName:        record[colName],
		Area:                model.Area(record[colArea]),
		RiskLevel:           model.RiskLevel(record[colRisk]),
		SignificantAccount:  significant,
		PreparedBy:          record[colPreparedBy],
		ReviewedBy:          record[colReviewedBy],
		ProceduresCompleted: record[colProcedures],
		TestingStrategy:     record[colTesting],
	}

	for _, f := range []struct {
		col  int
		name string
		dst  *decimal.Decimal
	}{
		{colBegin, "beginning_balance", &s.BeginningBalance},
		{colEnd, "ending_balance", &s.EndingBalance},
		{colAdj, "audit_adjustments", &s.AuditAdjustments},
		{colReclass, "reclassifications", &s.Reclassifications},
		{colFinal, "final_balance", &s.FinalBalance},
	} {
		if record[f.col] == "" {
			continue
		}
		d, err := decimal.NewFromString(record[f.col])
		if err != nil {
			return model.LeadSchedule{}, fmt.Errorf("parsing %s %q: %w", f.name, record[f.col], err)
		}
		*f.dst = d
	}

	if record[colPreparedAt] != "" {
		if s.PreparedAt, err = time.Parse(time.RFC3339, record[colPreparedAt]); err != nil {
			return model.LeadSchedule{}, fmt.Errorf("parsing prepared_at %q: %w", record[colPreparedAt], err)
		}
	}
	if record[colReviewedAt] != "" {
		if s.ReviewedAt, err = time.Parse(time.RFC3339, record[colReviewedAt]); err != nil {
			return model.LeadSchedule{}, fmt.Errorf("parsing reviewed_at %q: %w", record[colReviewedAt], err)
		}
	}

	return s, nil
}

func readScheduleRows(r io.Reader) ([]model.LeadSchedule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading schedules CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var schedules []model.LeadSchedule
	for i, rec := range records[1:] {
		s, err := UnmarshalSchedule(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

func writeScheduleRows(w io.Writer, schedules []model.LeadSchedule) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, s := range schedules {
		if err := cw.Write(MarshalSchedule(s)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
