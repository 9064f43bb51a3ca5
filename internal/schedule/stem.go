package schedule

import "strings"

// knownStems are name fragments that make good grouping keys for
// auto-generation, roughly ordered specific-first. Two accounts in the
// same area sharing a stem land on the same candidate schedule.
var knownStems = []string{
	"cash",
	"receivable",
	"inventory",
	"prepaid",
	"equipment",
	"property",
	"building",
	"vehicle",
	"depreciation",
	"payable",
	"accrued",
	"loan",
	"mortgage",
	"deferred",
	"capital",
	"retained",
	"stock",
	"revenue",
	"sales",
	"salar",
	"wage",
	"rent",
	"insurance",
	"utilities",
	"interest",
	"tax",
	"travel",
	"supplies",
	"advertising",
}

// stem extracts the keyword stem of an account name, falling back to its
// first alphabetic word.
func stem(accountName string) string {
	name := strings.ToLower(accountName)
	for _, s := range knownStems {
		if strings.Contains(name, s) {
			return s
		}
	}
	for _, word := range strings.FieldsFunc(name, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		return word
	}
	return "other"
}

// stemTitle renders a stem as a schedule name ("receivable" -> "Receivable").
func stemTitle(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
