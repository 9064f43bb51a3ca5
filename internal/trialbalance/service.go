package trialbalance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tickmark-dev/tickmark/internal/model"
)

const (
	storeDir     = "trialbalance"
	batchesFile  = "batches.csv"
	accountsFile = "accounts.csv"
)

// Service persists trial-balance batches and their accounts under an
// engagement root and owns every balance mutation on them. The hosting
// layer must serialize calls per batch; the service itself holds no locks.
type Service struct {
	root   string
	logger *zap.Logger
}

// NewService creates a trial-balance Service rooted at an engagement dir.
func NewService(root string, logger *zap.Logger) *Service {
	return &Service{root: root, logger: logger}
}

// CommitParams holds everything needed to persist a validated import.
type CommitParams struct {
	EngagementID  string
	PeriodType    model.PeriodType
	PeriodEndDate time.Time
	SourceSystem  string
	Accounts      []model.ImportedAccount
	Epsilon       decimal.Decimal // zero means DefaultEpsilon
	Force         bool            // override an imbalance error only
}

// CommitImport validates the imported accounts and persists them as a new
// batch. An out-of-balance batch is rejected unless Force is set; Force
// never overrides structural errors (missing identity, duplicates). The
// override is logged loudly here and audit-trailed by the caller.
func (s *Service) CommitImport(p CommitParams) (model.TrialBalance, ValidationResult, error) {
	epsilon := p.Epsilon
	if epsilon.IsZero() {
		epsilon = DefaultEpsilon
	}

	result := Validate(p.Accounts, epsilon)
	if !result.IsValid {
		if !p.Force || !onlyImbalance(result) {
			return model.TrialBalance{}, result, &ValidationFailedError{Result: result}
		}
		s.logger.Warn("forcing import of unbalanced trial balance",
			zap.String("engagement_id", p.EngagementID),
			zap.String("variance", result.Summary.Variance.StringFixed(2)))
	}

	batch := model.TrialBalance{
		ID:            uuid.New().String(),
		EngagementID:  p.EngagementID,
		PeriodType:    p.PeriodType,
		PeriodEndDate: p.PeriodEndDate,
		SourceSystem:  p.SourceSystem,
		TotalDebits:   result.Summary.TotalDebits,
		TotalCredits:  result.Summary.TotalCredits,
		Variance:      result.Summary.Variance,
		ImportedAt:    time.Now().UTC(),
	}

	accounts := make([]model.TrialBalanceAccount, 0, len(p.Accounts))
	for _, imp := range p.Accounts {
		a := model.TrialBalanceAccount{
			ID:               uuid.New().String(),
			BatchID:          batch.ID,
			AccountNumber:    imp.AccountNumber,
			AccountName:      imp.AccountName,
			Type:             imp.Type,
			Statement:        imp.Statement,
			Area:             imp.Area,
			BeginningBalance: imp.BeginningBalance,
			// Signed balance, debits positive; polarity was fixed at import.
			EndingBalance: imp.DebitBalance.Sub(imp.CreditBalance),
		}
		a.RecomputeFinal()
		accounts = append(accounts, a)
	}

	existing, err := s.Batches()
	if err != nil {
		return model.TrialBalance{}, result, err
	}
	if err := s.writeBatches(append(existing, batch)); err != nil {
		return model.TrialBalance{}, result, err
	}

	all, err := s.allAccounts()
	if err != nil {
		return model.TrialBalance{}, result, err
	}
	if err := s.writeAccounts(append(all, accounts...)); err != nil {
		return model.TrialBalance{}, result, err
	}

	s.logger.Info("trial balance imported",
		zap.String("batch_id", batch.ID),
		zap.Int("accounts", len(accounts)),
		zap.String("variance", batch.Variance.StringFixed(2)))
	return batch, result, nil
}

// RecordAdjustment adds a signed amount to an account's audit adjustments
// or reclassifications (running totals, never overwritten) and recomputes
// its final balance. Fails with LockedBatchError on a locked batch. The
// caller is responsible for refreshing any linked schedule rollup.
func (s *Service) RecordAdjustment(accountID string, amount decimal.Decimal, isReclassification bool) (model.TrialBalanceAccount, error) {
	all, err := s.allAccounts()
	if err != nil {
		return model.TrialBalanceAccount{}, err
	}

	idx := -1
	for i, a := range all {
		if a.ID == accountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.TrialBalanceAccount{}, &NotFoundError{Kind: "account", ID: accountID}
	}

	batch, err := s.Batch(all[idx].BatchID)
	if err != nil {
		return model.TrialBalanceAccount{}, err
	}
	if batch.IsLocked {
		return model.TrialBalanceAccount{}, &LockedBatchError{BatchID: batch.ID}
	}

	if isReclassification {
		all[idx].Reclassifications = all[idx].Reclassifications.Add(amount)
	} else {
		all[idx].AuditAdjustments = all[idx].AuditAdjustments.Add(amount)
	}
	all[idx].RecomputeFinal()

	if err := s.writeAccounts(all); err != nil {
		return model.TrialBalanceAccount{}, err
	}

	s.logger.Info("adjustment recorded",
		zap.String("account_id", accountID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Bool("reclassification", isReclassification),
		zap.String("final_balance", all[idx].FinalBalance.StringFixed(2)))
	return all[idx], nil
}

// SetSchedule links (or, with an empty scheduleID, unlinks) an account to
// a lead schedule. A locked batch blocks linking as well as balance edits.
func (s *Service) SetSchedule(accountID, scheduleID string) (model.TrialBalanceAccount, error) {
	all, err := s.allAccounts()
	if err != nil {
		return model.TrialBalanceAccount{}, err
	}

	idx := -1
	for i, a := range all {
		if a.ID == accountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.TrialBalanceAccount{}, &NotFoundError{Kind: "account", ID: accountID}
	}

	batch, err := s.Batch(all[idx].BatchID)
	if err != nil {
		return model.TrialBalanceAccount{}, err
	}
	if batch.IsLocked {
		return model.TrialBalanceAccount{}, &LockedBatchError{BatchID: batch.ID}
	}

	all[idx].ScheduleID = scheduleID
	if err := s.writeAccounts(all); err != nil {
		return model.TrialBalanceAccount{}, err
	}
	return all[idx], nil
}

// SetLocked sets the lock flag on a batch.
func (s *Service) SetLocked(batchID string, locked bool) error {
	batches, err := s.Batches()
	if err != nil {
		return err
	}
	for i := range batches {
		if batches[i].ID == batchID {
			batches[i].IsLocked = locked
			if err := s.writeBatches(batches); err != nil {
				return err
			}
			s.logger.Info("batch lock changed", zap.String("batch_id", batchID), zap.Bool("locked", locked))
			return nil
		}
	}
	return &NotFoundError{Kind: "batch", ID: batchID}
}

// Rollback deletes a batch and every account imported with it. The only
// way accounts leave the store.
func (s *Service) Rollback(batchID string) error {
	batches, err := s.Batches()
	if err != nil {
		return err
	}

	kept := batches[:0]
	found := false
	for _, b := range batches {
		if b.ID == batchID {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return &NotFoundError{Kind: "batch", ID: batchID}
	}
	if err := s.writeBatches(kept); err != nil {
		return err
	}

	all, err := s.allAccounts()
	if err != nil {
		return err
	}
	keptAccounts := all[:0]
	for _, a := range all {
		if a.BatchID != batchID {
			keptAccounts = append(keptAccounts, a)
		}
	}
	if err := s.writeAccounts(keptAccounts); err != nil {
		return err
	}

	s.logger.Info("batch rolled back", zap.String("batch_id", batchID))
	return nil
}

// Batches returns all persisted batches.
func (s *Service) Batches() ([]model.TrialBalance, error) {
	f, err := os.Open(filepath.Join(s.root, storeDir, batchesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening batches: %w", err)
	}
	defer f.Close()
	return readBatchRows(f)
}

// Batch returns one batch by ID.
func (s *Service) Batch(id string) (model.TrialBalance, error) {
	batches, err := s.Batches()
	if err != nil {
		return model.TrialBalance{}, err
	}
	for _, b := range batches {
		if b.ID == id {
			return b, nil
		}
	}
	return model.TrialBalance{}, &NotFoundError{Kind: "batch", ID: id}
}

// Accounts returns all accounts in a batch.
func (s *Service) Accounts(batchID string) ([]model.TrialBalanceAccount, error) {
	all, err := s.allAccounts()
	if err != nil {
		return nil, err
	}
	var out []model.TrialBalanceAccount
	for _, a := range all {
		if a.BatchID == batchID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Account returns one account by ID.
func (s *Service) Account(id string) (model.TrialBalanceAccount, error) {
	all, err := s.allAccounts()
	if err != nil {
		return model.TrialBalanceAccount{}, err
	}
	for _, a := range all {
		if a.ID == id {
			return a, nil
		}
	}
	return model.TrialBalanceAccount{}, &NotFoundError{Kind: "account", ID: id}
}

// AccountsBySchedule returns the accounts currently linked to a schedule.
func (s *Service) AccountsBySchedule(scheduleID string) ([]model.TrialBalanceAccount, error) {
	all, err := s.allAccounts()
	if err != nil {
		return nil, err
	}
	var out []model.TrialBalanceAccount
	for _, a := range all {
		if a.ScheduleID == scheduleID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) allAccounts() ([]model.TrialBalanceAccount, error) {
	f, err := os.Open(filepath.Join(s.root, storeDir, accountsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	defer f.Close()
	return readAccountRows(f)
}

func (s *Service) writeBatches(batches []model.TrialBalance) error {
	return s.writeFile(batchesFile, func(f *os.File) error {
		return writeBatchRows(f, batches)
	})
}

func (s *Service) writeAccounts(accounts []model.TrialBalanceAccount) error {
	return s.writeFile(accountsFile, func(f *os.File) error {
		return writeAccountRows(f, accounts)
	})
}

func (s *Service) writeFile(name string, write func(*os.File) error) error {
	dir := filepath.Join(s.root, storeDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating trialbalance dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
