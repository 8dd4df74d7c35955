// Package recommend ranks contacts by how overdue they are for outreach.
//
// The ranking is a pure function of a contacts snapshot and the current time;
// it holds no state and may run concurrently.
package recommend

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/starford/reconnect/internal/models"
)

const day = 24 * time.Hour

// Scored is a contact with its ranking inputs.
type Scored struct {
	Contact models.Contact `json:"contact"`
	// DaysSince is +Inf for a contact that was never reached.
	DaysSince    float64 `json:"-"`
	OverdueRatio float64 `json:"-"`
	Score        float64 `json:"-"`
	// Due reports whether at least one full cadence has elapsed.
	Due bool `json:"due"`
}

// Never reports whether the contact has no recorded interaction.
func (s Scored) Never() bool {
	return math.IsInf(s.DaysSince, 1)
}

// DaysSince returns whole days elapsed between last and now, clamped at 0.
// A nil last yields +Inf.
func DaysSince(last *time.Time, now time.Time) float64 {
	if last == nil {
		return math.Inf(1)
	}
	d := now.Sub(*last)
	if d <= 0 {
		return 0
	}
	return float64(d / day)
}

// priorityWeight is strictly increasing in priority.
func priorityWeight(priority int) float64 {
	return float64(max(priority, models.MinPriority))
}

// Score computes a single contact's ranking inputs at now.
func Score(c models.Contact, now time.Time) Scored {
	days := DaysSince(c.LastContactedAt, now)
	freq := float64(max(c.FrequencyDays, 1))
	ratio := days / freq
	return Scored{
		Contact:      c,
		DaysSince:    days,
		OverdueRatio: ratio,
		Score:        ratio * priorityWeight(c.Priority),
		Due:          ratio >= 1,
	}
}

// Rank scores every contact and orders them most overdue first. Ties on score
// go to the higher priority, then to fullName (case-insensitive), then id.
func Rank(contacts []models.Contact, now time.Time) []Scored {
	out := make([]Scored, len(contacts))
	for i, c := range contacts {
		out[i] = Score(c, now)
	}
	slices.SortStableFunc(out, compare)
	return out
}

func compare(a, b Scored) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Contact.Priority, a.Contact.Priority); c != 0 {
		return c
	}
	if c := cmp.Compare(strings.ToLower(a.Contact.FullName), strings.ToLower(b.Contact.FullName)); c != 0 {
		return c
	}
	return cmp.Compare(a.Contact.ID, b.Contact.ID)
}

// Recommend returns up to count contacts, most overdue first. It never pads
// and never fails: empty input or a non-positive count yield an empty slice.
func Recommend(contacts []models.Contact, now time.Time, count int) []models.Contact {
	if count <= 0 || len(contacts) == 0 {
		return []models.Contact{}
	}
	ranked := Rank(contacts, now)
	n := min(count, len(ranked))
	out := make([]models.Contact, n)
	for i := range n {
		out[i] = ranked[i].Contact
	}
	return out
}
