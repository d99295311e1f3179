package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type UpsertScheduleConfigRequest struct {
	Date        string `json:"date"         validate:"required"`
	Time        string `json:"time"         validate:"required"`
	IsAvailable *bool  `json:"is_available" validate:"required"`
	Reason      string `json:"reason"       validate:"max=200"`
}

// UpsertDefaultScheduleRequest configures a weekday-generic override.
// DayOfWeek: 0=Sunday … 6=Saturday; absent/null means every day.
type UpsertDefaultScheduleRequest struct {
	DayOfWeek   *int   `json:"day_of_week"  validate:"omitempty,min=0,max=6"`
	Time        string `json:"time"         validate:"required"`
	IsAvailable *bool  `json:"is_available" validate:"required"`
	Reason      string `json:"reason"       validate:"max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ScheduleConfigResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	IsAvailable bool   `json:"is_available"`
	Reason      string `json:"reason"`
}

type DefaultScheduleResponse struct {
	ID          string `json:"id"`
	DayOfWeek   *int   `json:"day_of_week"`
	Time        string `json:"time"`
	IsAvailable bool   `json:"is_available"`
	Reason      string `json:"reason"`
}

// SlotStatusResponse is one resolved grid slot for the admin view.
// Source: "date_override" | "weekday_default" | "occupancy".
type SlotStatusResponse struct {
	Time           string  `json:"time"`
	IsAvailable    bool    `json:"is_available"`
	Reason         *string `json:"reason"`
	HasAppointment bool    `json:"has_appointment"`
	Source         string  `json:"source"`
}

// AvailableSlotsResponse is the supplier view: the same resolver run
// projected to plain time lists, without exposing who holds each slot.
type AvailableSlotsResponse struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
	OccupiedSlots  []string `json:"occupied_slots"`
}
