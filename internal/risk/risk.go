// Package risk is the seam to the engagement's risk-assessment side. The
// core only consumes a combined risk level per financial-statement area to
// seed auto-generated schedules.
package risk

import "github.com/tickmark-dev/tickmark/internal/model"

// Assessor supplies the assessed risk level for a financial-statement area.
type Assessor interface {
	AreaRisk(area model.Area) model.RiskLevel
}

// Static is a fixed area-to-risk table, typically loaded from engagement
// config. Unlisted areas default to moderate.
type Static struct {
	levels map[model.Area]model.RiskLevel
}

// NewStatic builds a Static assessor from string keys as they appear in
// config. Unknown level strings fall back to moderate.
func NewStatic(levels map[string]string) *Static {
	m := make(map[model.Area]model.RiskLevel, len(levels))
	for area, level := range levels {
		switch model.RiskLevel(level) {
		case model.RiskLow, model.RiskModerate, model.RiskHigh:
			m[model.Area(area)] = model.RiskLevel(level)
		default:
			m[model.Area(area)] = model.RiskModerate
		}
	}
	return &Static{levels: m}
}

// AreaRisk returns the configured level, defaulting to moderate.
func (s *Static) AreaRisk(area model.Area) model.RiskLevel {
	if l, ok := s.levels[area]; ok {
		return l
	}
	return model.RiskModerate
}
