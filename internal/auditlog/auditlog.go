// Package auditlog keeps the engagement's append-only audit trail. Every
// override, adjustment, membership change, and sign-off lands here so a
// file reviewer can reconstruct who did what to the workpapers and when.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Action identifies what happened. Kept as constants so log consumers can
// filter without string matching.
type Action string

const (
	ActionImport           Action = "import"
	ActionForcedImport     Action = "import.forced"
	ActionRollback         Action = "import.rollback"
	ActionAdjustment       Action = "adjustment"
	ActionReclassification Action = "reclassification"
	ActionLink             Action = "schedule.link"
	ActionUnlink           Action = "schedule.unlink"
	ActionScheduleCreate   Action = "schedule.create"
	ActionSignOff          Action = "schedule.signoff"
	ActionLock             Action = "batch.lock"
	ActionUnlock           Action = "batch.unlock"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	User      string
	Action    Action
	EntityID  string
	Details   string
}

const (
	numFields    = 5
	logDir       = "logs"
	logFile      = "logs/audit-log.csv"
	colTimestamp = 0
	colUser      = 1
	colAction    = 2
	colEntityID  = 3
	colDetails   = 4
)

var header = []string{"timestamp", "user", "action", "entity_id", "details"}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colUser] = e.User
	row[colAction] = string(e.Action)
	row[colEntityID] = e.EntityID
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		User:      record[colUser],
		Action:    Action(record[colAction]),
		EntityID:  record[colEntityID],
		Details:   record[colDetails],
	}, nil
}

// Record appends one entry with the current time.
func Record(root, user string, action Action, entityID, details string) error {
	return Append(root, []Entry{{
		Timestamp: time.Now().UTC(),
		User:      user,
		Action:    action,
		EntityID:  entityID,
		Details:   details,
	}})
}

// Append writes entries to <root>/logs/audit-log.csv, creating the file
// and header if needed. Append-only: existing rows are never rewritten.
func Append(root string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	return cw.Error()
}

// Read returns all entries, oldest first. Empty when no log exists yet.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
