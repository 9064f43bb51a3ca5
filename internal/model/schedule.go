package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskLevel is the assessed audit risk for a financial-statement area.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// SignOffState is the workflow state of a lead schedule.
type SignOffState string

const (
	StateUnprepared     SignOffState = "unprepared"
	StatePreparerSigned SignOffState = "preparer_signed"
	StateReviewerSigned SignOffState = "reviewer_signed"
)

// SignOffRole identifies who is signing a schedule.
type SignOffRole string

const (
	RolePreparer SignOffRole = "preparer"
	RoleReviewer SignOffRole = "reviewer"
)

// LeadSchedule is an audit workpaper aggregating linked trial-balance
// accounts under one financial-statement area. All balance fields are
// rollups over the currently linked accounts, recomputed from scratch
// whenever membership or a member balance changes.
type LeadSchedule struct {
	ID                 string
	EngagementID       string
	ScheduleNumber     string
	ScheduleName       string
	Area               Area
	RiskLevel          RiskLevel
	SignificantAccount bool
	BeginningBalance   decimal.Decimal
	EndingBalance      decimal.Decimal
	AuditAdjustments   decimal.Decimal
	Reclassifications  decimal.Decimal
	FinalBalance       decimal.Decimal
	PreparedBy         string
	PreparedAt         time.Time
	ReviewedBy         string
	ReviewedAt         time.Time

	// Owned by the procedure-execution side of the workpaper system;
	// carried here read-only for reporting.
	ProceduresCompleted string
	TestingStrategy     string
}

// State derives the sign-off state from the recorded signatures.
func (s LeadSchedule) State() SignOffState {
	switch {
	case s.ReviewedBy != "":
		return StateReviewerSigned
	case s.PreparedBy != "":
		return StatePreparerSigned
	default:
		return StateUnprepared
	}
}

// IsMaterial reports whether the schedule's final balance exceeds the
// materiality threshold in magnitude. Always derived, never stored.
func (s LeadSchedule) IsMaterial(threshold decimal.Decimal) bool {
	return s.FinalBalance.Abs().GreaterThan(threshold)
}
