package service

import (
	"testing"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func weekdayPtr(w model.Weekday) *model.Weekday { return &w }

func TestSlotGrid(t *testing.T) {
	grid := SlotGrid()
	require.Len(t, grid, 10)
	assert.Equal(t, "08:00", grid[0])
	assert.Equal(t, "17:00", grid[9])
}

func TestNormalizeSlotTime(t *testing.T) {
	got, err := NormalizeSlotTime("09:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00", got)

	got, err = NormalizeSlotTime("09:00:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00", got)

	_, err = NormalizeSlotTime("9am")
	assert.Error(t, err)
	_, err = NormalizeSlotTime("25:00")
	assert.Error(t, err)
	_, err = NormalizeSlotTime("")
	assert.Error(t, err)
}

func findSlot(t *testing.T, statuses []SlotStatus, timeStr string) SlotStatus {
	t.Helper()
	for _, st := range statuses {
		if st.Time == timeStr {
			return st
		}
	}
	t.Fatalf("slot %s not in resolver output", timeStr)
	return SlotStatus{}
}

func TestResolveDay_OccupancyOnly(t *testing.T) {
	statuses := resolveDay(day("2025-03-10"), nil, nil, []string{"10:00"})
	require.Len(t, statuses, 10)

	open := findSlot(t, statuses, "09:00")
	assert.True(t, open.IsAvailable)
	assert.Nil(t, open.Reason)
	assert.Equal(t, SourceOccupancy, open.Source)

	booked := findSlot(t, statuses, "10:00")
	assert.False(t, booked.IsAvailable)
	assert.True(t, booked.HasAppointment)
	require.NotNil(t, booked.Reason)
	assert.Equal(t, "Slot occupied", *booked.Reason)
}

// A date-specific override beats a weekday default for the same slot, even
// when they disagree.
func TestResolveDay_DateOverrideWinsOverWeekdayDefault(t *testing.T) {
	monday := day("2025-03-10")
	configs := []model.ScheduleConfig{
		{Date: monday, Time: "09:00", IsAvailable: false, Reason: "Dock maintenance"},
	}
	defaults := []model.DefaultSchedule{
		{DayOfWeek: weekdayPtr(model.Monday), Time: "09:00", IsAvailable: true},
	}

	st := findSlot(t, resolveDay(monday, configs, defaults, nil), "09:00")
	assert.False(t, st.IsAvailable)
	assert.Equal(t, SourceDateOverride, st.Source)
	require.NotNil(t, st.Reason)
	assert.Equal(t, "Dock maintenance", *st.Reason)
}

// A day-specific default beats an all-days (nil weekday) default.
func TestResolveDay_DaySpecificDefaultWinsOverAllDays(t *testing.T) {
	monday := day("2025-03-10")
	defaults := []model.DefaultSchedule{
		{DayOfWeek: nil, Time: "12:00", IsAvailable: false, Reason: "Lunch break"},
		{DayOfWeek: weekdayPtr(model.Monday), Time: "12:00", IsAvailable: true},
	}

	st := findSlot(t, resolveDay(monday, nil, defaults, nil), "12:00")
	assert.True(t, st.IsAvailable)
	assert.Equal(t, SourceWeekdayDefault, st.Source)
	assert.Nil(t, st.Reason)
}

func TestResolveDay_AllDaysDefaultAppliesEveryWeekday(t *testing.T) {
	defaults := []model.DefaultSchedule{
		{DayOfWeek: nil, Time: "12:00", IsAvailable: false, Reason: "Lunch break"},
	}

	for _, d := range []string{"2025-03-09", "2025-03-10", "2025-03-15"} { // Sun, Mon, Sat
		st := findSlot(t, resolveDay(day(d), nil, defaults, nil), "12:00")
		assert.False(t, st.IsAvailable, d)
		assert.Equal(t, SourceWeekdayDefault, st.Source, d)
	}
}

// Sunday is weekday 0 and must never match an all-days (nil) row by accident,
// nor the other way around.
func TestResolveDay_SundayZeroNotConfusedWithAllDays(t *testing.T) {
	sunday := day("2025-03-09")
	monday := day("2025-03-10")
	defaults := []model.DefaultSchedule{
		{DayOfWeek: weekdayPtr(model.Sunday), Time: "08:00", IsAvailable: false, Reason: "Closed on Sundays"},
	}

	st := findSlot(t, resolveDay(sunday, nil, defaults, nil), "08:00")
	assert.False(t, st.IsAvailable)

	st = findSlot(t, resolveDay(monday, nil, defaults, nil), "08:00")
	assert.True(t, st.IsAvailable)
	assert.Equal(t, SourceOccupancy, st.Source)
}

// An available date override still reports occupancy separately: the slot is
// administratively open but HasAppointment is set once booked.
func TestResolveDay_OverrideAndOccupancyAreIndependent(t *testing.T) {
	monday := day("2025-03-10")
	configs := []model.ScheduleConfig{
		{Date: monday, Time: "14:00", IsAvailable: true},
	}

	st := findSlot(t, resolveDay(monday, configs, nil, []string{"14:00"}), "14:00")
	assert.True(t, st.IsAvailable)
	assert.True(t, st.HasAppointment)
	assert.Equal(t, SourceDateOverride, st.Source)
}
