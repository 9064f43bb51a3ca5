package schedule

import "fmt"

// DuplicateScheduleNumberError signals a schedule number already in use
// within the engagement.
type DuplicateScheduleNumberError struct {
	Number string
}

func (e *DuplicateScheduleNumberError) Error() string {
	return fmt.Sprintf("schedule number %s already exists", e.Number)
}

// LockedScheduleError signals a mutation attempted on a reviewer-signed
// schedule. Reopening is a privileged action outside this core; until it
// happens, the schedule is immutable.
type LockedScheduleError struct {
	ScheduleNumber string
}

func (e *LockedScheduleError) Error() string {
	return fmt.Sprintf("schedule %s is reviewer-signed and locked", e.ScheduleNumber)
}

// OutOfOrderSignOffError signals a reviewer sign-off with no preparer
// sign-off recorded. A caller hitting this is skipping the state machine.
type OutOfOrderSignOffError struct {
	ScheduleNumber string
}

func (e *OutOfOrderSignOffError) Error() string {
	return fmt.Sprintf("schedule %s has no preparer sign-off; reviewer cannot sign", e.ScheduleNumber)
}

// NotFoundError identifies a missing schedule.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schedule %s not found", e.ID)
}
