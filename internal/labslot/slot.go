package labslot

import "strings"

// Day identifies a weekday in the shift schedule.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Days lists the schedulable weekdays in display order.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// TimeSlots lists the bookable time windows for lab shifts.
func TimeSlots() []string {
	return []string{
		"16:00 - 19:00",
		"19:00 - 22:00",
		"18:00 - 20:00",
		"20:00 - 22:00",
	}
}

// DefaultLabs lists the lab rooms known to the scheduling system.
func DefaultLabs() []string {
	return []string{
		"Lab 10 - 138",
		"Lab 10 - G10",
		"Lab 10 - G06",
	}
}

// Slot identifies one assignable unit of the weekly schedule: a lab on a
// given day during a given time window. At most one tutor may hold a slot.
type Slot struct {
	Day     Day
	Time    string
	LabName string
}

// Equal reports whether two slots address the same (day, time, lab) cell.
// Comparison ignores surrounding whitespace and day capitalisation so that
// slots arriving from different clients compare consistently.
func (s Slot) Equal(other Slot) bool {
	return strings.EqualFold(strings.TrimSpace(string(s.Day)), strings.TrimSpace(string(other.Day))) &&
		strings.TrimSpace(s.Time) == strings.TrimSpace(other.Time) &&
		strings.TrimSpace(s.LabName) == strings.TrimSpace(other.LabName)
}

// ValidDay reports whether the supplied value names a schedulable weekday.
func ValidDay(value string) bool {
	_, ok := CanonicalDay(value)
	return ok
}

// CanonicalDay maps a case-insensitive day name to its canonical form.
// The boolean result is false when the value is not a weekday.
func CanonicalDay(value string) (Day, bool) {
	trimmed := strings.TrimSpace(value)
	for _, day := range Days() {
		if strings.EqualFold(trimmed, string(day)) {
			return day, true
		}
	}
	return "", false
}

// ValidTimeSlot reports whether the supplied value is one of the bookable
// time windows.
func ValidTimeSlot(value string) bool {
	trimmed := strings.TrimSpace(value)
	for _, slot := range TimeSlots() {
		if trimmed == slot {
			return true
		}
	}
	return false
}

// Taken reports whether the candidate slot is already held by any of the
// existing slots. This is the at-most-one-tutor-per-slot rule; the linear
// scan is deliberate, the registry holds tens of shifts at most.
func Taken(existing []Slot, candidate Slot) bool {
	for _, slot := range existing {
		if slot.Equal(candidate) {
			return true
		}
	}
	return false
}
