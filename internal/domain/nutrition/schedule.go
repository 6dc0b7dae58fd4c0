package nutrition

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TimeOfDay is a whole-hour administration slot, 0 through 23.
type TimeOfDay uint8

// HoursPerDay bounds TimeOfDay.
const HoursPerDay = 24

// NewTimeOfDay validates an hour of the day.
func NewTimeOfDay(hour int) (TimeOfDay, error) {
	if hour < 0 || hour >= HoursPerDay {
		return 0, fmt.Errorf("hour %d out of range 0-23", hour)
	}
	return TimeOfDay(hour), nil
}

// ParseTimeOfDay accepts "6", "06", "06h" and "06:00". Minutes must be zero.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSuffix(v, "h")
	if hh, mm, ok := strings.Cut(v, ":"); ok {
		if mm != "00" {
			return 0, fmt.Errorf("time %q: only whole hours are schedulable", s)
		}
		v = hh
	}
	hour, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("time %q: %w", s, err)
	}
	return NewTimeOfDay(hour)
}

func (t TimeOfDay) Valid() bool { return t < HoursPerDay }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:00", uint8(t)) }

// Label is the chart notation, e.g. "06h".
func (t TimeOfDay) Label() string { return fmt.Sprintf("%02dh", uint8(t)) }

func (t TimeOfDay) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid time of day %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Schedule is the set of daily administration times of a line. Other holds a
// free-text slot ("se necessário", "a critério médico") that counts as one
// administration when set.
type Schedule struct {
	Times []TimeOfDay `json:"times,omitempty"`
	Other string      `json:"other,omitempty"`
}

// Sorted returns the distinct valid times in ascending order.
func (s Schedule) Sorted() []TimeOfDay {
	var seen [HoursPerDay]bool
	out := make([]TimeOfDay, 0, len(s.Times))
	for _, t := range s.Times {
		if !t.Valid() || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasOther reports whether the free-text slot is in use.
func (s Schedule) HasOther() bool { return strings.TrimSpace(s.Other) != "" }

// Count is the number of administrations per day.
func (s Schedule) Count() int {
	n := len(s.Sorted())
	if s.HasOther() {
		n++
	}
	return n
}

// MealSlot is one of the fixed hospital meal times used by oral prescriptions.
type MealSlot uint8

const (
	Breakfast MealSlot = iota
	MorningSnack
	Lunch
	AfternoonSnack
	Dinner
	Supper
	mealSlotCount
)

var mealNames = [mealSlotCount]string{"breakfast", "morning_snack", "lunch", "afternoon_snack", "dinner", "supper"}

var mealLabels = [mealSlotCount]string{"desjejum", "colação", "almoço", "lanche", "jantar", "ceia"}

func (m MealSlot) Valid() bool { return m < mealSlotCount }

func (m MealSlot) String() string {
	if !m.Valid() {
		return fmt.Sprintf("meal(%d)", uint8(m))
	}
	return mealNames[m]
}

// Label is the pt-BR meal name used in chart notes.
func (m MealSlot) Label() string {
	if !m.Valid() {
		return "?"
	}
	return mealLabels[m]
}

func (m MealSlot) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid meal slot %d", uint8(m))
	}
	return []byte(mealNames[m]), nil
}

func (m *MealSlot) UnmarshalText(b []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(b)))
	for i, name := range mealNames {
		if v == name {
			*m = MealSlot(i)
			return nil
		}
	}
	return fmt.Errorf("unknown meal slot %q", string(b))
}

// MealSchedule lists the meals a supplement or module is served with.
type MealSchedule []MealSlot

// Sorted returns the distinct valid meals in the order they are served.
func (ms MealSchedule) Sorted() []MealSlot {
	var seen [mealSlotCount]bool
	out := make([]MealSlot, 0, len(ms))
	for _, m := range ms {
		if !m.Valid() || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (ms MealSchedule) Count() int { return len(ms.Sorted()) }
