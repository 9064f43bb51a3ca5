package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType describes the reporting period a trial balance covers.
type PeriodType string

const (
	PeriodAnnual    PeriodType = "annual"
	PeriodQuarterly PeriodType = "quarterly"
	PeriodMonthly   PeriodType = "monthly"
	PeriodInterim   PeriodType = "interim"
)

// TrialBalance is one imported batch of account balances for an engagement.
// Totals and variance are derived at import and fixed for the life of the
// batch; adjustments live on the accounts, not here.
type TrialBalance struct {
	ID            string
	EngagementID  string
	PeriodType    PeriodType
	PeriodEndDate time.Time
	SourceSystem  string
	IsLocked      bool
	TotalDebits   decimal.Decimal
	TotalCredits  decimal.Decimal
	Variance      decimal.Decimal
	ImportedAt    time.Time
}
