package schedule

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tickmark-dev/tickmark/internal/model"
	"github.com/tickmark-dev/tickmark/internal/risk"
	"github.com/tickmark-dev/tickmark/internal/schednum"
)

// SignificantMultiple is the firm policy constant: a schedule whose final
// balance exceeds this multiple of materiality is a significant account
// regardless of area risk.
const SignificantMultiple = 10

const (
	storeDir      = "schedules"
	schedulesFile = "schedules.csv"
)

// AccountSource is the trial-balance side of the store, as seen by the
// aggregator. Linking goes through it so batch-lock enforcement lives in
// one place.
type AccountSource interface {
	Accounts(batchID string) ([]model.TrialBalanceAccount, error)
	Account(id string) (model.TrialBalanceAccount, error)
	AccountsBySchedule(scheduleID string) ([]model.TrialBalanceAccount, error)
	SetSchedule(accountID, scheduleID string) (model.TrialBalanceAccount, error)
}

// Service persists lead schedules and owns membership and rollups. Every
// balance on a schedule is a from-scratch sum over its linked accounts;
// nothing is patched incrementally, so no update path can drift.
type Service struct {
	root     string
	logger   *zap.Logger
	accounts AccountSource
}

// NewService creates a schedule Service rooted at an engagement dir.
func NewService(root string, logger *zap.Logger, accounts AccountSource) *Service {
	return &Service{root: root, logger: logger, accounts: accounts}
}

// CreateParams holds operator input for a manually created schedule.
type CreateParams struct {
	EngagementID    string
	ScheduleNumber  string
	ScheduleName    string
	Area            model.Area
	RiskLevel       model.RiskLevel
	TestingStrategy string
}

// Create adds a manually numbered schedule with zero balances, pending
// linking. The number must be unique within the engagement.
func (s *Service) Create(p CreateParams) (model.LeadSchedule, error) {
	if p.ScheduleNumber == "" {
		return model.LeadSchedule{}, fmt.Errorf("schedule number is required")
	}

	all, err := s.Schedules()
	if err != nil {
		return model.LeadSchedule{}, err
	}
	for _, existing := range all {
		if existing.ScheduleNumber == p.ScheduleNumber {
			return model.LeadSchedule{}, &DuplicateScheduleNumberError{Number: p.ScheduleNumber}
		}
	}

	sched := model.LeadSchedule{
		ID:              uuid.New().String(),
		EngagementID:    p.EngagementID,
		ScheduleNumber:  p.ScheduleNumber,
		ScheduleName:    p.ScheduleName,
		Area:            p.Area,
		RiskLevel:       p.RiskLevel,
		TestingStrategy: p.TestingStrategy,
	}

	if err := s.writeSchedules(append(all, sched)); err != nil {
		return model.LeadSchedule{}, err
	}
	s.logger.Info("schedule created",
		zap.String("schedule_number", sched.ScheduleNumber),
		zap.String("area", string(sched.Area)))
	return sched, nil
}

// AutoParams drives auto-generation over one batch.
type AutoParams struct {
	EngagementID string
	BatchID      string
	Materiality  decimal.Decimal
	Risk         risk.Assessor
}

// AutoGenerate groups the batch's unlinked accounts by financial-statement
// area and account-name stem, creates one candidate schedule per group,
// links the members, and rolls up. A schedule is flagged significant when
// its final balance magnitude exceeds SignificantMultiple times materiality
// or the risk assessment marks its area high.
func (s *Service) AutoGenerate(p AutoParams) ([]model.LeadSchedule, error) {
	batchAccounts, err := s.accounts.Accounts(p.BatchID)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		area model.Area
		stem string
	}
	groups := make(map[groupKey][]model.TrialBalanceAccount)
	var order []groupKey
	for _, a := range batchAccounts {
		if a.IsMapped() {
			continue
		}
		key := groupKey{area: a.Area, stem: stem(a.AccountName)}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], a)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].area != order[j].area {
			return order[i].area < order[j].area
		}
		return order[i].stem < order[j].stem
	})

	existing, err := s.Schedules()
	if err != nil {
		return nil, err
	}
	numbers := make([]string, len(existing))
	for i, e := range existing {
		numbers[i] = e.ScheduleNumber
	}
	alloc := schednum.NewAllocator(numbers)

	var created []model.LeadSchedule
	for _, key := range order {
		areaRisk := model.RiskModerate
		if p.Risk != nil {
			areaRisk = p.Risk.AreaRisk(key.area)
		}

		sched, err := s.Create(CreateParams{
			EngagementID:   p.EngagementID,
			ScheduleNumber: alloc.Next(key.area),
			ScheduleName:   stemTitle(key.stem),
			Area:           key.area,
			RiskLevel:      areaRisk,
		})
		if err != nil {
			return created, err
		}

		for _, a := range groups[key] {
			if _, err := s.accounts.SetSchedule(a.ID, sched.ID); err != nil {
				return created, fmt.Errorf("linking %s to %s: %w", a.AccountNumber, sched.ScheduleNumber, err)
			}
		}
		if err := s.Recompute(sched.ID); err != nil {
			return created, err
		}

		sched, err = s.Schedule(sched.ID)
		if err != nil {
			return created, err
		}
		significant := areaRisk == model.RiskHigh ||
			sched.FinalBalance.Abs().GreaterThan(p.Materiality.Mul(decimal.NewFromInt(SignificantMultiple)))
		if significant != sched.SignificantAccount {
			sched.SignificantAccount = significant
			if err := s.save(sched); err != nil {
				return created, err
			}
		}
		created = append(created, sched)
	}

	s.logger.Info("schedules auto-generated",
		zap.String("batch_id", p.BatchID),
		zap.Int("count", len(created)))
	return created, nil
}

// Link attaches an account to a schedule and rolls the schedule up. Fails
// with LockedScheduleError once the schedule is reviewer-signed, and
// refuses accounts already linked elsewhere: an account belongs to at most
// one schedule.
func (s *Service) Link(scheduleID, accountID string) error {
	sched, err := s.Schedule(scheduleID)
	if err != nil {
		return err
	}
	if err := s.guardMutable(sched); err != nil {
		return err
	}

	a, err := s.accounts.Account(accountID)
	if err != nil {
		return err
	}
	if a.IsMapped() && a.ScheduleID != scheduleID {
		return fmt.Errorf("account %s already linked to another schedule; unlink it first", a.AccountNumber)
	}

	if _, err := s.accounts.SetSchedule(accountID, scheduleID); err != nil {
		return err
	}
	return s.Recompute(scheduleID)
}

// Unlink detaches an account and rolls the schedule up.
func (s *Service) Unlink(scheduleID, accountID string) error {
	sched, err := s.Schedule(scheduleID)
	if err != nil {
		return err
	}
	if err := s.guardMutable(sched); err != nil {
		return err
	}

	a, err := s.accounts.Account(accountID)
	if err != nil {
		return err
	}
	if a.ScheduleID != scheduleID {
		return fmt.Errorf("account %s is not linked to schedule %s", a.AccountNumber, sched.ScheduleNumber)
	}

	if _, err := s.accounts.SetSchedule(accountID, ""); err != nil {
		return err
	}
	return s.Recompute(scheduleID)
}

// Recompute re-derives every rollup balance on a schedule as an exact sum
// over its currently linked accounts. Called after every link, unlink, or
// member adjustment; always from scratch.
func (s *Service) Recompute(scheduleID string) error {
	sched, err := s.Schedule(scheduleID)
	if err != nil {
		return err
	}

	members, err := s.accounts.AccountsBySchedule(scheduleID)
	if err != nil {
		return err
	}

	sched.BeginningBalance = decimal.Zero
	sched.EndingBalance = decimal.Zero
	sched.AuditAdjustments = decimal.Zero
	sched.Reclassifications = decimal.Zero
	sched.FinalBalance = decimal.Zero
	for _, a := range members {
		sched.BeginningBalance = sched.BeginningBalance.Add(a.BeginningBalance)
		sched.EndingBalance = sched.EndingBalance.Add(a.EndingBalance)
		sched.AuditAdjustments = sched.AuditAdjustments.Add(a.AuditAdjustments)
		sched.Reclassifications = sched.Reclassifications.Add(a.Reclassifications)
		sched.FinalBalance = sched.FinalBalance.Add(a.FinalBalance)
	}

	return s.save(sched)
}

// RefreshForAccount recomputes the rollup of whichever schedule the
// account is linked to, if any. The adjustment path calls this.
func (s *Service) RefreshForAccount(accountID string) error {
	a, err := s.accounts.Account(accountID)
	if err != nil {
		return err
	}
	if !a.IsMapped() {
		return nil
	}
	return s.Recompute(a.ScheduleID)
}

// SignOff records a preparer or reviewer signature. Preparer sign-off is
// valid only from the unprepared state; reviewer sign-off requires a
// recorded preparer and fails with OutOfOrderSignOffError otherwise.
func (s *Service) SignOff(scheduleID string, role model.SignOffRole, signer string) (model.LeadSchedule, error) {
	sched, err := s.Schedule(scheduleID)
	if err != nil {
		return model.LeadSchedule{}, err
	}

	switch role {
	case model.RolePreparer:
		switch sched.State() {
		case model.StateReviewerSigned:
			return model.LeadSchedule{}, &LockedScheduleError{ScheduleNumber: sched.ScheduleNumber}
		case model.StatePreparerSigned:
			return model.LeadSchedule{}, fmt.Errorf("schedule %s already prepared by %s", sched.ScheduleNumber, sched.PreparedBy)
		}
		sched.PreparedBy = signer
		sched.PreparedAt = time.Now().UTC()
	case model.RoleReviewer:
		switch sched.State() {
		case model.StateUnprepared:
			return model.LeadSchedule{}, &OutOfOrderSignOffError{ScheduleNumber: sched.ScheduleNumber}
		case model.StateReviewerSigned:
			return model.LeadSchedule{}, fmt.Errorf("schedule %s already reviewed by %s", sched.ScheduleNumber, sched.ReviewedBy)
		}
		sched.ReviewedBy = signer
		sched.ReviewedAt = time.Now().UTC()
	default:
		return model.LeadSchedule{}, fmt.Errorf("unknown sign-off role %q", role)
	}

	if err := s.save(sched); err != nil {
		return model.LeadSchedule{}, err
	}
	s.logger.Info("schedule signed off",
		zap.String("schedule_number", sched.ScheduleNumber),
		zap.String("role", string(role)),
		zap.String("signer", signer))
	return sched, nil
}

// Guard reports a LockedScheduleError when the schedule holding this
// account is reviewer-signed. The adjustment path checks this before
// touching the account.
func (s *Service) Guard(accountID string) error {
	a, err := s.accounts.Account(accountID)
	if err != nil {
		return err
	}
	if !a.IsMapped() {
		return nil
	}
	sched, err := s.Schedule(a.ScheduleID)
	if err != nil {
		return err
	}
	return s.guardMutable(sched)
}

func (s *Service) guardMutable(sched model.LeadSchedule) error {
	if sched.State() == model.StateReviewerSigned {
		return &LockedScheduleError{ScheduleNumber: sched.ScheduleNumber}
	}
	return nil
}

// Schedules returns all persisted schedules.
func (s *Service) Schedules() ([]model.LeadSchedule, error) {
	f, err := os.Open(filepath.Join(s.root, storeDir, schedulesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening schedules: %w", err)
	}
	defer f.Close()
	return readScheduleRows(f)
}

// Schedule returns one schedule by ID.
func (s *Service) Schedule(id string) (model.LeadSchedule, error) {
	all, err := s.Schedules()
	if err != nil {
		return model.LeadSchedule{}, err
	}
	for _, sched := range all {
		if sched.ID == id {
			return sched, nil
		}
	}
	return model.LeadSchedule{}, &NotFoundError{ID: id}
}

// ByNumber returns one schedule by its schedule number.
func (s *Service) ByNumber(number string) (model.LeadSchedule, error) {
	all, err := s.Schedules()
	if err != nil {
		return model.LeadSchedule{}, err
	}
	for _, sched := range all {
		if sched.ScheduleNumber == number {
			return sched, nil
		}
	}
	return model.LeadSchedule{}, &NotFoundError{ID: number}
}

// BuildIndex returns the membership index for a set of accounts: account
// to schedule, and schedule to member accounts. O(1) membership checks for
// callers that would otherwise rescan per lookup.
func BuildIndex(accounts []model.TrialBalanceAccount) Index {
	idx := Index{
		ByAccount:  make(map[string]string),
		BySchedule: make(map[string][]string),
	}
	for _, a := range accounts {
		if !a.IsMapped() {
			continue
		}
		idx.ByAccount[a.ID] = a.ScheduleID
		idx.BySchedule[a.ScheduleID] = append(idx.BySchedule[a.ScheduleID], a.ID)
	}
	return idx
}

// Index maps membership both directions.
type Index struct {
	ByAccount  map[string]string
	BySchedule map[string][]string
}

func (s *Service) save(sched model.LeadSchedule) error {
	all, err := s.Schedules()
	if err != nil {
		return err
	}

	found := false
	for i := range all {
		if all[i].ID == sched.ID {
			all[i] = sched
			found = true
			break
		}
	}
	if !found {
		all = append(all, sched)
	}
	return s.writeSchedules(all)
}

func (s *Service) writeSchedules(schedules []model.LeadSchedule) error {
	dir := filepath.Join(s.root, storeDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating schedules dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, schedulesFile))
	if err != nil {
		return fmt.Errorf("creating schedules file: %w", err)
	}
	defer f.Close()

	return writeScheduleRows(f, schedules)
}
