package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsCoverBothShifts(t *testing.T) {
	hours := NewWorkingHours(time.UTC)

	slots := hours.Slots(time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC))
	require.Len(t, slots, 18)

	assert.Equal(t, time.Date(2030, 3, 4, 9, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Date(2030, 3, 4, 11, 30, 0, 0, time.UTC), slots[5].Start)
	assert.Equal(t, time.Date(2030, 3, 4, 13, 0, 0, 0, time.UTC), slots[6].Start)
	assert.Equal(t, time.Date(2030, 3, 4, 18, 30, 0, 0, time.UTC), slots[17].Start)

	for i, slot := range slots {
		assert.Equal(t, SlotDuration, slot.End.Sub(slot.Start))
		assert.Contains(t, []int{0, 30}, slot.Start.Minute())
		assert.True(t, hours.Contains(slot.Start), "slot %s", slot.Start)
		if i > 0 {
			assert.True(t, slot.Start.After(slots[i-1].Start))
		}
	}
}

func TestSlotsEmptyOnSunday(t *testing.T) {
	hours := NewWorkingHours(time.UTC)
	assert.Empty(t, hours.Slots(time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Len(t, hours.Slots(time.Date(2030, 3, 9, 0, 0, 0, 0, time.UTC)), 18)
}

func TestSlotsUseLocation(t *testing.T) {
	loc := time.FixedZone("clinic", 3*60*60)
	slots := NewWorkingHours(loc).Slots(time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NotEmpty(t, slots)
	assert.Equal(t, time.Date(2030, 3, 4, 6, 0, 0, 0, time.UTC), slots[0].Start.UTC())
}

func TestContains(t *testing.T) {
	hours := NewWorkingHours(time.UTC)
	day := func(h, m, s int) time.Time { return time.Date(2030, 3, 4, h, m, s, 0, time.UTC) }

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"morning start", day(9, 0, 0), true},
		{"last morning slot", day(11, 30, 0), true},
		{"lunch", day(12, 0, 0), false},
		{"afternoon start", day(13, 0, 0), true},
		{"last slot", day(18, 30, 0), true},
		{"closing", day(19, 0, 0), false},
		{"before opening", day(8, 30, 0), false},
		{"quarter past", day(10, 15, 0), false},
		{"stray seconds", day(10, 0, 5), true},
		{"sunday", time.Date(2030, 3, 10, 10, 0, 0, 0, time.UTC), false},
		{"saturday", time.Date(2030, 3, 9, 10, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hours.Contains(tt.at))
		})
	}
}

func TestSlotStart(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+30*60)
	hours := NewWorkingHours(loc)

	got := hours.SlotStart(time.Date(2030, 3, 4, 4, 30, 15, 500, time.UTC))
	assert.Equal(t, time.Date(2030, 3, 4, 10, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
	assert.True(t, hours.Contains(got))
}
