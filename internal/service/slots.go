package service

// slots.go — canonical dock slot grid and the availability resolver.
// The resolver is a pure function: fully deterministic given its inputs so it
// can be tested without a datastore.

import (
	"fmt"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/apierror"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"
)

// The dock accepts one truck per hour, 08:00 through 17:00 inclusive.
const (
	firstSlotHour = 8
	lastSlotHour  = 17
)

// SlotGrid returns the canonical daily grid: "08:00" … "17:00", ten slots.
func SlotGrid() []string {
	grid := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		grid = append(grid, fmt.Sprintf("%02d:00", h))
	}
	return grid
}

// onGrid reports whether a normalized HH:MM value is one of the fixed slots.
func onGrid(timeStr string) bool {
	for _, slot := range SlotGrid() {
		if slot == timeStr {
			return true
		}
	}
	return false
}

// NormalizeSlotTime validates a time-of-day input and normalizes it to HH:MM.
// HH:MM:SS is accepted and truncated to minute granularity.
func NormalizeSlotTime(s string) (string, error) {
	var layout string
	switch len(s) {
	case 5:
		layout = "15:04"
	case 8:
		layout = "15:04:05"
	default:
		return "", apierror.Validation("Invalid time format. Use HH:MM or HH:MM:SS")
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", apierror.Validation("Invalid time format. Use HH:MM or HH:MM:SS")
	}
	return t.Format("15:04"), nil
}

// ParseDate validates an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apierror.Validation("Invalid date format. Use YYYY-MM-DD")
	}
	return t, nil
}

// Slot resolution sources, recorded for observability: which precedence tier
// produced the answer.
const (
	SourceDateOverride   = "date_override"
	SourceWeekdayDefault = "weekday_default"
	SourceOccupancy      = "occupancy"
)

// SlotStatus is the resolved availability of one grid slot.
type SlotStatus struct {
	Time           string
	IsAvailable    bool
	Reason         *string
	HasAppointment bool
	Source         string
}

const reasonOccupied = "Slot occupied"

// resolveDay computes availability for every grid slot of a date.
// Precedence per slot:
//  1. a ScheduleConfig matching (date, time) exactly;
//  2. else a DefaultSchedule for the date's weekday, falling back to an
//     all-days (nil weekday) entry when no day-specific one exists;
//  3. else occupancy: available unless the slot is booked.
//
// Reason carries the override's stored text only when the slot is
// unavailable; available slots have a nil reason.
func resolveDay(date time.Time, configs []model.ScheduleConfig, defaults []model.DefaultSchedule, bookedTimes []string) []SlotStatus {
	configByTime := make(map[string]model.ScheduleConfig, len(configs))
	for _, c := range configs {
		configByTime[c.Time] = c
	}

	// Day-specific defaults win over all-days rows for the same time.
	dayDefaults := make(map[string]model.DefaultSchedule)
	allDayDefaults := make(map[string]model.DefaultSchedule)
	weekday := model.WeekdayOf(date)
	for _, d := range defaults {
		switch {
		case d.DayOfWeek == nil:
			allDayDefaults[d.Time] = d
		case *d.DayOfWeek == weekday:
			dayDefaults[d.Time] = d
		}
	}

	booked := make(map[string]bool, len(bookedTimes))
	for _, t := range bookedTimes {
		booked[t] = true
	}

	statuses := make([]SlotStatus, 0, lastSlotHour-firstSlotHour+1)
	for _, slot := range SlotGrid() {
		status := SlotStatus{Time: slot, HasAppointment: booked[slot]}

		if c, ok := configByTime[slot]; ok {
			status.Source = SourceDateOverride
			status.IsAvailable = c.IsAvailable
			if !c.IsAvailable {
				reason := c.Reason
				status.Reason = &reason
			}
		} else if d, ok := pickDefault(dayDefaults, allDayDefaults, slot); ok {
			status.Source = SourceWeekdayDefault
			status.IsAvailable = d.IsAvailable
			if !d.IsAvailable {
				reason := d.Reason
				status.Reason = &reason
			}
		} else {
			status.Source = SourceOccupancy
			status.IsAvailable = !booked[slot]
			if booked[slot] {
				reason := reasonOccupied
				status.Reason = &reason
			}
		}

		statuses = append(statuses, status)
	}
	return statuses
}

func pickDefault(dayDefaults, allDayDefaults map[string]model.DefaultSchedule, slot string) (model.DefaultSchedule, bool) {
	if d, ok := dayDefaults[slot]; ok {
		return d, true
	}
	d, ok := allDayDefaults[slot]
	return d, ok
}
