package importer

import (
	"fmt"
	"strings"

	"github.com/tickmark-dev/tickmark/internal/parse"
)

// Profile prepares a parsed table from a known client GL system: it may
// normalize the table in place (split combined columns, drop total rows)
// and returns the column mapping to import with.
type Profile interface {
	SourceSystem() string
	Prepare(table *parse.Table) (parse.Mapping, error)
}

// Registry holds named source-system profiles.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry creates an empty profile registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]Profile)}
}

// Register adds a profile. Panics on duplicate source system.
func (r *Registry) Register(p Profile) {
	key := strings.ToLower(p.SourceSystem())
	if _, ok := r.profiles[key]; ok {
		panic("duplicate source system profile: " + key)
	}
	r.profiles[key] = p
}

// Get returns the profile for a source system, or nil.
func (r *Registry) Get(sourceSystem string) Profile {
	return r.profiles[strings.ToLower(sourceSystem)]
}

// Names returns the registered source systems.
func (r *Registry) Names() []string {
	var names []string
	for k := range r.profiles {
		names = append(names, k)
	}
	return names
}

// DefaultRegistry returns a registry with all built-in profiles.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GenericProfile{})
	r.Register(&QuickBooksProfile{})
	return r
}

// GenericProfile relies entirely on the header heuristics.
type GenericProfile struct{}

// SourceSystem returns the profile name.
func (p *GenericProfile) SourceSystem() string { return "generic" }

// Prepare maps columns by header name only.
func (p *GenericProfile) Prepare(table *parse.Table) (parse.Mapping, error) {
	m := parse.MapColumns(table.Headers)
	return m, m.Validate()
}

// QuickBooksProfile handles QuickBooks trial-balance exports, which emit a
// single "Account" column holding "1000 · Cash" style combined values and a
// trailing TOTAL row.
type QuickBooksProfile struct{}

// SourceSystem returns the profile name.
func (p *QuickBooksProfile) SourceSystem() string { return "quickbooks" }

// Prepare splits the combined account column into number and name columns,
// drops the TOTAL row, and returns the resulting mapping.
func (p *QuickBooksProfile) Prepare(table *parse.Table) (parse.Mapping, error) {
	acctCol := -1
	for i, h := range table.Headers {
		if strings.EqualFold(strings.TrimSpace(h), "account") {
			acctCol = i
			break
		}
	}
	if acctCol < 0 {
		// Not the combined layout after all; fall back to heuristics.
		m := parse.MapColumns(table.Headers)
		return m, m.Validate()
	}

	headers := append([]string{"Account Number", "Account Name"}, removeColumn(table.Headers, acctCol)...)

	var rows [][]string
	for _, row := range table.Rows {
		combined := ""
		if acctCol < len(row) {
			combined = row[acctCol]
		}
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(combined)), "TOTAL") {
			continue
		}
		number, name := splitQuickBooksAccount(combined)
		rows = append(rows, append([]string{number, name}, removeColumn(row, acctCol)...))
	}

	table.Headers = headers
	table.Rows = rows

	m := parse.MapColumns(table.Headers)
	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("quickbooks layout: %w", err)
	}
	return m, nil
}

// splitQuickBooksAccount splits "1000 · Cash" (or "1000:Cash") into number
// and name. With no separator the whole value is the name.
func splitQuickBooksAccount(combined string) (number, name string) {
	s := strings.TrimSpace(combined)
	for _, sep := range []string{" · ", "·", ":"} {
		if idx := strings.Index(s, sep); idx > 0 {
			return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+len(sep):])
		}
	}
	return "", s
}

func removeColumn(row []string, col int) []string {
	out := make([]string, 0, len(row)-1)
	out = append(out, row[:col]...)
	if col+1 < len(row) {
		out = append(out, row[col+1:]...)
	}
	return out
}
