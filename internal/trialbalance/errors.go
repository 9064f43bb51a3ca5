package trialbalance

import "fmt"

// LockedBatchError signals a mutation attempted on a locked trial balance.
// Raised as an error rather than returned as data: the state machine is
// being bypassed by the caller, not fed bad user input.
type LockedBatchError struct {
	BatchID string
}

func (e *LockedBatchError) Error() string {
	return fmt.Sprintf("trial balance %s is locked", e.BatchID)
}

// ValidationFailedError carries the failing result out of CommitImport so
// callers can show every finding, not just the first.
type ValidationFailedError struct {
	Result ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("import validation failed with %d error(s)", len(e.Result.Errors))
}

// NotFoundError identifies a missing batch or account.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
