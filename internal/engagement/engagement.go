// Package engagement wires the core services over one engagement
// workspace and owns the cross-service flows: an adjustment refreshes the
// linked schedule's rollup, a reviewer-signed schedule blocks member
// mutations, and every override or sign-off lands in the audit trail.
package engagement

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tickmark-dev/tickmark/internal/auditlog"
	"github.com/tickmark-dev/tickmark/internal/config"
	"github.com/tickmark-dev/tickmark/internal/gitops"
	"github.com/tickmark-dev/tickmark/internal/importer"
	"github.com/tickmark-dev/tickmark/internal/model"
	"github.com/tickmark-dev/tickmark/internal/parse"
	"github.com/tickmark-dev/tickmark/internal/risk"
	"github.com/tickmark-dev/tickmark/internal/schedule"
	"github.com/tickmark-dev/tickmark/internal/trialbalance"
)

// Engagement is the composition root over one workspace directory.
type Engagement struct {
	Root         string
	Config       *config.Config
	TrialBalance *trialbalance.Service
	Schedules    *schedule.Service
	Risk         risk.Assessor
	Profiles     *importer.Registry

	logger *zap.Logger
}

// Open loads the workspace config and wires the services.
func Open(root string, logger *zap.Logger) (*Engagement, error) {
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading engagement config: %w", err)
	}

	tb := trialbalance.NewService(root, logger)
	return &Engagement{
		Root:         root,
		Config:       cfg,
		TrialBalance: tb,
		Schedules:    schedule.NewService(root, logger, tb),
		Risk:         risk.NewStatic(cfg.Risk),
		Profiles:     importer.DefaultRegistry(),
		logger:       logger,
	}, nil
}

// ImportParams describes one import attempt.
type ImportParams struct {
	Text          string
	SourceSystem  string // empty means the configured default
	Overrides     map[parse.Field]int
	PeriodType    model.PeriodType
	PeriodEndDate time.Time
	DryRun        bool
	Force         bool
	User          string
}

// ImportOutcome is what the operator sees after an import attempt.
type ImportOutcome struct {
	Batch     model.TrialBalance
	Result    trialbalance.ValidationResult
	Committed bool
}

// Import runs the full pipeline: parse, map (profile plus operator
// overrides), classify, import, validate, and, unless dry-running,
// commit. A forced commit of an unbalanced batch is written to the audit
// trail; it never happens silently.
func (e *Engagement) Import(p ImportParams) (ImportOutcome, error) {
	sourceSystem := p.SourceSystem
	if sourceSystem == "" {
		sourceSystem = e.Config.Import.SourceSystem
	}
	profile := e.Profiles.Get(sourceSystem)
	if profile == nil {
		return ImportOutcome{}, fmt.Errorf("unknown source system %q", sourceSystem)
	}

	table, err := parse.Parse(p.Text)
	if err != nil {
		return ImportOutcome{}, err
	}

	mapping, err := profile.Prepare(table)
	if len(p.Overrides) > 0 {
		for field, col := range p.Overrides {
			if oerr := mapping.Override(field, col); oerr != nil {
				return ImportOutcome{}, oerr
			}
		}
		err = mapping.Validate()
	}
	if err != nil {
		return ImportOutcome{}, err
	}

	accounts, rowWarnings, err := importer.ImportRows(table, mapping)
	if err != nil {
		return ImportOutcome{}, err
	}

	epsilon := e.Config.Import.EpsilonDecimal()
	if epsilon.IsZero() {
		epsilon = trialbalance.DefaultEpsilon
	}

	if p.DryRun {
		result := trialbalance.Validate(accounts, epsilon)
		mergeRowWarnings(&result, rowWarnings)
		return ImportOutcome{Result: result}, nil
	}

	batch, result, err := e.TrialBalance.CommitImport(trialbalance.CommitParams{
		EngagementID:  e.Config.Engagement.ID,
		PeriodType:    p.PeriodType,
		PeriodEndDate: p.PeriodEndDate,
		SourceSystem:  sourceSystem,
		Accounts:      accounts,
		Epsilon:       epsilon,
		Force:         p.Force,
	})
	mergeRowWarnings(&result, rowWarnings)
	if err != nil {
		return ImportOutcome{Result: result}, err
	}

	action := auditlog.ActionImport
	details := fmt.Sprintf("%d accounts, variance %s", result.Summary.TotalAccounts, batch.Variance.StringFixed(2))
	if !result.IsValid {
		action = auditlog.ActionForcedImport
		details += " (imbalance overridden)"
	}
	if err := auditlog.Record(e.Root, p.User, action, batch.ID, details); err != nil {
		return ImportOutcome{}, err
	}

	e.commit(fmt.Sprintf("import: trial balance %s (%d accounts)", batch.PeriodEndDate.Format("2006-01-02"), result.Summary.TotalAccounts))
	return ImportOutcome{Batch: batch, Result: result, Committed: true}, nil
}

func mergeRowWarnings(result *trialbalance.ValidationResult, warnings []importer.RowWarning) {
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, trialbalance.Issue{Kind: trialbalance.KindImportNote, Row: w.Row, Message: w.Message})
	}
}

// RecordAdjustment posts an audit adjustment or reclassification to an
// account, refreshes the linked schedule rollup, and audit-trails the
// entry. Blocked when the account's schedule is reviewer-signed or its
// batch is locked.
func (e *Engagement) RecordAdjustment(accountID string, amount decimal.Decimal, isReclassification bool, user string) (model.TrialBalanceAccount, error) {
	if err := e.Schedules.Guard(accountID); err != nil {
		return model.TrialBalanceAccount{}, err
	}

	account, err := e.TrialBalance.RecordAdjustment(accountID, amount, isReclassification)
	if err != nil {
		return model.TrialBalanceAccount{}, err
	}

	if err := e.Schedules.RefreshForAccount(accountID); err != nil {
		return model.TrialBalanceAccount{}, err
	}

	action := auditlog.ActionAdjustment
	if isReclassification {
		action = auditlog.ActionReclassification
	}
	details := fmt.Sprintf("account %s amount %s final %s", account.AccountNumber, amount.StringFixed(2), account.FinalBalance.StringFixed(2))
	if err := auditlog.Record(e.Root, user, action, accountID, details); err != nil {
		return model.TrialBalanceAccount{}, err
	}

	e.commit(fmt.Sprintf("adjust: %s by %s", account.AccountNumber, amount.StringFixed(2)))
	return account, nil
}

// CreateSchedule creates a manually numbered lead schedule.
func (e *Engagement) CreateSchedule(p schedule.CreateParams, user string) (model.LeadSchedule, error) {
	p.EngagementID = e.Config.Engagement.ID
	sched, err := e.Schedules.Create(p)
	if err != nil {
		return model.LeadSchedule{}, err
	}
	if err := auditlog.Record(e.Root, user, auditlog.ActionScheduleCreate, sched.ID, sched.ScheduleNumber); err != nil {
		return model.LeadSchedule{}, err
	}
	e.commit("schedule: create " + sched.ScheduleNumber)
	return sched, nil
}

// AutoGenerateSchedules groups a batch's unlinked accounts into candidate
// schedules. Materiality falls back to the engagement config; it must be
// set somewhere.
func (e *Engagement) AutoGenerateSchedules(batchID string, materiality decimal.Decimal, user string) ([]model.LeadSchedule, error) {
	if materiality.IsZero() {
		materiality = e.Config.Materiality.ThresholdDecimal()
	}
	if materiality.IsZero() {
		return nil, fmt.Errorf("materiality threshold required: set materiality.threshold in %s or pass one", config.FileName)
	}

	created, err := e.Schedules.AutoGenerate(schedule.AutoParams{
		EngagementID: e.Config.Engagement.ID,
		BatchID:      batchID,
		Materiality:  materiality,
		Risk:         e.Risk,
	})
	if err != nil {
		return created, err
	}

	if err := auditlog.Record(e.Root, user, auditlog.ActionScheduleCreate, batchID, fmt.Sprintf("auto-generated %d schedules", len(created))); err != nil {
		return created, err
	}
	e.commit(fmt.Sprintf("schedule: auto-generate %d from batch", len(created)))
	return created, nil
}

// LinkAccount links an account to a schedule addressed by number.
func (e *Engagement) LinkAccount(scheduleNumber, accountID, user string) error {
	sched, err := e.Schedules.ByNumber(scheduleNumber)
	if err != nil {
		return err
	}
	if err := e.Schedules.Link(sched.ID, accountID); err != nil {
		return err
	}
	if err := auditlog.Record(e.Root, user, auditlog.ActionLink, accountID, "schedule "+scheduleNumber); err != nil {
		return err
	}
	e.commit("schedule: link account to " + scheduleNumber)
	return nil
}

// UnlinkAccount removes an account from a schedule addressed by number.
func (e *Engagement) UnlinkAccount(scheduleNumber, accountID, user string) error {
	sched, err := e.Schedules.ByNumber(scheduleNumber)
	if err != nil {
		return err
	}
	if err := e.Schedules.Unlink(sched.ID, accountID); err != nil {
		return err
	}
	if err := auditlog.Record(e.Root, user, auditlog.ActionUnlink, accountID, "schedule "+scheduleNumber); err != nil {
		return err
	}
	e.commit("schedule: unlink account from " + scheduleNumber)
	return nil
}

// SignOff records a preparer or reviewer signature on a schedule
// addressed by number.
func (e *Engagement) SignOff(scheduleNumber string, role model.SignOffRole, signer string) (model.LeadSchedule, error) {
	sched, err := e.Schedules.ByNumber(scheduleNumber)
	if err != nil {
		return model.LeadSchedule{}, err
	}
	signed, err := e.Schedules.SignOff(sched.ID, role, signer)
	if err != nil {
		return model.LeadSchedule{}, err
	}
	if err := auditlog.Record(e.Root, signer, auditlog.ActionSignOff, signed.ID, fmt.Sprintf("%s as %s", signed.ScheduleNumber, role)); err != nil {
		return model.LeadSchedule{}, err
	}
	e.commit(fmt.Sprintf("signoff: %s by %s (%s)", signed.ScheduleNumber, signer, role))
	return signed, nil
}

// SetBatchLock locks or unlocks a batch.
func (e *Engagement) SetBatchLock(batchID string, locked bool, user string) error {
	if err := e.TrialBalance.SetLocked(batchID, locked); err != nil {
		return err
	}
	action := auditlog.ActionLock
	msg := "lock: batch"
	if !locked {
		action = auditlog.ActionUnlock
		msg = "unlock: batch"
	}
	if err := auditlog.Record(e.Root, user, action, batchID, ""); err != nil {
		return err
	}
	e.commit(msg)
	return nil
}

// RollbackBatch removes a batch and its accounts, then recomputes the
// rollups of every schedule that lost members. Refused when any of the
// batch's accounts sits on a reviewer-signed schedule; rollback is a
// membership mutation like any other.
func (e *Engagement) RollbackBatch(batchID, user string) error {
	accounts, err := e.TrialBalance.Accounts(batchID)
	if err != nil {
		return err
	}
	idx := schedule.BuildIndex(accounts)
	for _, members := range idx.BySchedule {
		if err := e.Schedules.Guard(members[0]); err != nil {
			return err
		}
	}

	if err := e.TrialBalance.Rollback(batchID); err != nil {
		return err
	}
	for scheduleID := range idx.BySchedule {
		if err := e.Schedules.Recompute(scheduleID); err != nil {
			return err
		}
	}
	if err := auditlog.Record(e.Root, user, auditlog.ActionRollback, batchID, ""); err != nil {
		return err
	}
	e.commit("rollback: batch " + batchID)
	return nil
}

// commit auto-commits the workspace when configured. Failures are logged,
// not fatal: the workpaper mutation already happened.
func (e *Engagement) commit(message string) {
	if !e.Config.Git.AutoCommit || !gitops.IsRepo(e.Root) || !gitops.HasChanges(e.Root) {
		return
	}
	hash, err := gitops.CommitAll(e.Root, message, e.Config.Git.AuthorName, e.Config.Git.AuthorEmail)
	if err != nil {
		e.logger.Warn("auto-commit failed", zap.String("message", message), zap.Error(err))
		return
	}
	e.logger.Debug("workspace committed", zap.String("hash", hash), zap.String("message", message))
}
