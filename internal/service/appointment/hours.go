package appointment

import (
	"time"

	"github.com/jwalitptl/hms-api/internal/model"
)

// SlotDuration is the length of every bookable slot.
const SlotDuration = 30 * time.Minute

type shift struct {
	start, end int // minutes after midnight, end exclusive
}

// WorkingHours is the clinic-wide schedule: Monday to Saturday,
// 09:00-12:00 and 13:00-19:00 in loc.
type WorkingHours struct {
	loc    *time.Location
	shifts []shift
}

func NewWorkingHours(loc *time.Location) WorkingHours {
	if loc == nil {
		loc = time.Local
	}
	return WorkingHours{
		loc: loc,
		shifts: []shift{
			{start: 9 * 60, end: 12 * 60},
			{start: 13 * 60, end: 19 * 60},
		},
	}
}

func (w WorkingHours) Location() *time.Location {
	return w.loc
}

// Slots lists every slot on the calendar day of date, ascending.
// Only the year, month and day of date are used.
func (w WorkingHours) Slots(date time.Time) []model.TimeSlot {
	y, m, d := date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, w.loc)
	if midnight.Weekday() == time.Sunday {
		return nil
	}

	var slots []model.TimeSlot
	for _, sh := range w.shifts {
		for off := sh.start; off < sh.end; off += int(SlotDuration / time.Minute) {
			start := time.Date(y, m, d, off/60, off%60, 0, 0, w.loc)
			slots = append(slots, model.TimeSlot{Start: start, End: start.Add(SlotDuration)})
		}
	}
	return slots
}

// Contains reports whether t falls in the starting minute of a slot.
// Seconds are ignored; callers store SlotStart(t).
func (w WorkingHours) Contains(t time.Time) bool {
	t = t.In(w.loc)
	if t.Weekday() == time.Sunday {
		return false
	}
	if t.Minute() != 0 && t.Minute() != 30 {
		return false
	}
	off := t.Hour()*60 + t.Minute()
	for _, sh := range w.shifts {
		if off >= sh.start && off < sh.end {
			return true
		}
	}
	return false
}

// SlotStart truncates t to the whole minute in loc.
func (w WorkingHours) SlotStart(t time.Time) time.Time {
	t = t.In(w.loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, w.loc)
}

// DayBounds returns [midnight, next midnight) of date's calendar day in loc.
func (w WorkingHours) DayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, w.loc)
	return start, start.AddDate(0, 0, 1)
}
