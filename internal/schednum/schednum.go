// Package schednum implements the firm's lead-schedule numbering
// convention: a section letter per financial-statement area plus a
// sequence, e.g. "A-1" for the first cash schedule.
package schednum

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tickmark-dev/tickmark/internal/model"
)

var sectionByArea = map[model.Area]string{
	model.AreaCash:               "A",
	model.AreaReceivables:        "B",
	model.AreaInventory:          "C",
	model.AreaPrepaidExpenses:    "D",
	model.AreaFixedAssets:        "E",
	model.AreaOtherAssets:        "F",
	model.AreaPayables:           "K",
	model.AreaAccruedLiabilities: "L",
	model.AreaDebt:               "M",
	model.AreaOtherLiabilities:   "N",
	model.AreaEquity:             "R",
	model.AreaRevenue:            "S",
	model.AreaCostOfSales:        "T",
	model.AreaOperatingExpenses:  "U",
	model.AreaOther:              "Z",
}

// Section returns the section letter for an area.
func Section(area model.Area) string {
	if s, ok := sectionByArea[area]; ok {
		return s
	}
	return "Z"
}

// Format returns a schedule number like "A-1".
func Format(section string, seq int) string {
	return fmt.Sprintf("%s-%d", section, seq)
}

// Parse splits "A-1" into section and sequence.
func Parse(number string) (section string, seq int, err error) {
	parts := strings.SplitN(number, "-", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, fmt.Errorf("invalid schedule number %q", number)
	}
	seq, err = strconv.Atoi(parts[1])
	if err != nil || seq < 1 {
		return "", 0, fmt.Errorf("invalid sequence in schedule number %q", number)
	}
	return strings.ToUpper(parts[0]), seq, nil
}

// Allocator hands out the next unused number per section, seeded with the
// engagement's existing schedule numbers so auto-generation never collides
// with manually created schedules.
type Allocator struct {
	next map[string]int
}

// NewAllocator seeds an Allocator from existing schedule numbers.
// Unparsable numbers (free-form manual ones) are ignored.
func NewAllocator(existing []string) *Allocator {
	a := &Allocator{next: make(map[string]int)}
	for _, num := range existing {
		section, seq, err := Parse(num)
		if err != nil {
			continue
		}
		if seq >= a.next[section] {
			a.next[section] = seq + 1
		}
	}
	return a
}

// Next allocates the next schedule number for an area.
func (a *Allocator) Next(area model.Area) string {
	section := Section(area)
	seq := a.next[section]
	if seq == 0 {
		seq = 1
	}
	a.next[section] = seq + 1
	return Format(section, seq)
}
