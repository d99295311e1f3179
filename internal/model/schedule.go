package model

import (
	"time"

	"github.com/google/uuid"
)

// Weekday follows the portal convention: Sunday=0, Monday=1 … Saturday=6.
// A DefaultSchedule row whose DayOfWeek pointer is nil applies to every day;
// the "all days" sentinel is SQL NULL and must never be conflated with
// Sunday's 0.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeekdayOf maps a calendar date onto the portal weekday numbering.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(int(t.Weekday()))
}

// ScheduleConfig is a date-specific availability override. Unique per
// (date, time); saved with upsert semantics. It takes precedence over
// DefaultSchedule and over occupancy-derived availability.
type ScheduleConfig struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:uni_schedule_configs_slot"`
	Time        string    `gorm:"type:varchar(5);not null;uniqueIndex:uni_schedule_configs_slot"`
	IsAvailable bool      `gorm:"not null"`
	Reason      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ScheduleConfig) TableName() string { return "schedule_configs" }

// DefaultSchedule is a weekday-generic availability override. Unique per
// (day_of_week, time), where day_of_week NULL means "every day". Consulted
// only when no ScheduleConfig matches the exact date.
type DefaultSchedule struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DayOfWeek   *Weekday  `gorm:"type:smallint;uniqueIndex:uni_default_schedules_slot"`
	Time        string    `gorm:"type:varchar(5);not null;uniqueIndex:uni_default_schedules_slot"`
	IsAvailable bool      `gorm:"not null"`
	Reason      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DefaultSchedule) TableName() string { return "default_schedules" }
