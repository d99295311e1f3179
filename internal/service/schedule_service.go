package service

import (
	"context"
	"errors"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/apierror"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/dto"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleService interface {
	UpsertConfig(ctx context.Context, req dto.UpsertScheduleConfigRequest) (*dto.ScheduleConfigResponse, error)
	ListConfigs(ctx context.Context, date string) ([]dto.ScheduleConfigResponse, error)
	DeleteConfig(ctx context.Context, id uuid.UUID) error
	UpsertDefault(ctx context.Context, req dto.UpsertDefaultScheduleRequest) (*dto.DefaultScheduleResponse, error)
	ListDefaults(ctx context.Context) ([]dto.DefaultScheduleResponse, error)
	DeleteDefault(ctx context.Context, id uuid.UUID) error
	// AvailableTimes is the admin view: the full resolver output per slot.
	AvailableTimes(ctx context.Context, date string) ([]dto.SlotStatusResponse, error)
	// AvailableSlots is the supplier view: the same resolver run projected to
	// bookable / occupied time lists, without exposing who holds each slot.
	AvailableSlots(ctx context.Context, date string) (*dto.AvailableSlotsResponse, error)
}

type scheduleService struct {
	repo            repository.ScheduleRepository
	appointmentRepo repository.AppointmentRepository
	clock           Clock
}

func NewScheduleService(repo repository.ScheduleRepository, appointmentRepo repository.AppointmentRepository, clock Clock) ScheduleService {
	return &scheduleService{repo: repo, appointmentRepo: appointmentRepo, clock: clock}
}

// ── Date-specific overrides ───────────────────────────────────────────────────

func (s *scheduleService) UpsertConfig(ctx context.Context, req dto.UpsertScheduleConfigRequest) (*dto.ScheduleConfigResponse, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	timeStr, err := NormalizeSlotTime(req.Time)
	if err != nil {
		return nil, err
	}
	if !onGrid(timeStr) {
		return nil, apierror.Validation("Time is outside the dock schedule (08:00-17:00, on the hour)")
	}

	// Upsert on (date, time): a second save for the same slot edits the
	// existing row instead of violating uni_schedule_configs_slot.
	config, err := s.repo.FindConfig(ctx, date, timeStr)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Storage(err)
		}
		config = &model.ScheduleConfig{Date: date, Time: timeStr}
	}
	config.IsAvailable = *req.IsAvailable
	config.Reason = req.Reason

	if err := s.repo.SaveConfig(ctx, config); err != nil {
		return nil, apierror.Storage(err)
	}
	resp := configToResponse(config)
	return &resp, nil
}

func (s *scheduleService) ListConfigs(ctx context.Context, date string) ([]dto.ScheduleConfigResponse, error) {
	parsed, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	configs, err := s.repo.ListConfigsByDate(ctx, parsed)
	if err != nil {
		return nil, apierror.Storage(err)
	}
	result := make([]dto.ScheduleConfigResponse, 0, len(configs))
	for i := range configs {
		result = append(result, configToResponse(&configs[i]))
	}
	return result, nil
}

func (s *scheduleService) DeleteConfig(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteConfig(ctx, id); err != nil {
		return apierror.Storage(err)
	}
	return nil
}

// ── Weekday-generic overrides ─────────────────────────────────────────────────

func (s *scheduleService) UpsertDefault(ctx context.Context, req dto.UpsertDefaultScheduleRequest) (*dto.DefaultScheduleResponse, error) {
	timeStr, err := NormalizeSlotTime(req.Time)
	if err != nil {
		return nil, err
	}
	if !onGrid(timeStr) {
		return nil, apierror.Validation("Time is outside the dock schedule (08:00-17:00, on the hour)")
	}

	var day *model.Weekday
	if req.DayOfWeek != nil {
		if *req.DayOfWeek < int(model.Sunday) || *req.DayOfWeek > int(model.Saturday) {
			return nil, apierror.Validation("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
		}
		w := model.Weekday(*req.DayOfWeek)
		day = &w
	}

	schedule, err := s.repo.FindDefault(ctx, day, timeStr)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Storage(err)
		}
		schedule = &model.DefaultSchedule{DayOfWeek: day, Time: timeStr}
	}
	schedule.IsAvailable = *req.IsAvailable
	schedule.Reason = req.Reason

	if err := s.repo.SaveDefault(ctx, schedule); err != nil {
		return nil, apierror.Storage(err)
	}
	resp := defaultToResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) ListDefaults(ctx context.Context) ([]dto.DefaultScheduleResponse, error) {
	defaults, err := s.repo.ListDefaults(ctx)
	if err != nil {
		return nil, apierror.Storage(err)
	}
	result := make([]dto.DefaultScheduleResponse, 0, len(defaults))
	for i := range defaults {
		result = append(result, defaultToResponse(&defaults[i]))
	}
	return result, nil
}

func (s *scheduleService) DeleteDefault(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDefault(ctx, id); err != nil {
		return apierror.Storage(err)
	}
	return nil
}

// ── Resolved availability views ───────────────────────────────────────────────

func (s *scheduleService) AvailableTimes(ctx context.Context, date string) ([]dto.SlotStatusResponse, error) {
	parsed, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	statuses, err := s.resolve(ctx, parsed)
	if err != nil {
		return nil, err
	}
	result := make([]dto.SlotStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		result = append(result, dto.SlotStatusResponse{
			Time:           st.Time,
			IsAvailable:    st.IsAvailable,
			Reason:         st.Reason,
			HasAppointment: st.HasAppointment,
			Source:         st.Source,
		})
	}
	return result, nil
}

func (s *scheduleService) AvailableSlots(ctx context.Context, date string) (*dto.AvailableSlotsResponse, error) {
	parsed, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if parsed.Before(dateOnly(s.clock())) {
		return nil, apierror.Validation("Cannot list slots for a past date")
	}
	statuses, err := s.resolve(ctx, parsed)
	if err != nil {
		return nil, err
	}

	resp := &dto.AvailableSlotsResponse{
		Date:           parsed.Format("2006-01-02"),
		AvailableSlots: make([]string, 0, len(statuses)),
		OccupiedSlots:  make([]string, 0),
	}
	for _, st := range statuses {
		switch {
		case st.HasAppointment:
			resp.OccupiedSlots = append(resp.OccupiedSlots, st.Time)
		case st.IsAvailable:
			resp.AvailableSlots = append(resp.AvailableSlots, st.Time)
		}
		// Administratively blocked but unbooked slots stay out of both lists.
	}
	return resp, nil
}

func (s *scheduleService) resolve(ctx context.Context, date time.Time) ([]SlotStatus, error) {
	configs, err := s.repo.ListConfigsByDate(ctx, date)
	if err != nil {
		return nil, apierror.Storage(err)
	}
	defaults, err := s.repo.ListDefaultsForDay(ctx, model.WeekdayOf(date))
	if err != nil {
		return nil, apierror.Storage(err)
	}
	appointments, err := s.appointmentRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, apierror.Storage(err)
	}
	booked := make([]string, 0, len(appointments))
	for i := range appointments {
		booked = append(booked, appointments[i].Time)
	}
	return resolveDay(date, configs, defaults, booked), nil
}

func configToResponse(c *model.ScheduleConfig) dto.ScheduleConfigResponse {
	return dto.ScheduleConfigResponse{
		ID:          c.ID.String(),
		Date:        c.Date.Format("2006-01-02"),
		Time:        c.Time,
		IsAvailable: c.IsAvailable,
		Reason:      c.Reason,
	}
}

func defaultToResponse(d *model.DefaultSchedule) dto.DefaultScheduleResponse {
	resp := dto.DefaultScheduleResponse{
		ID:          d.ID.String(),
		Time:        d.Time,
		IsAvailable: d.IsAvailable,
		Reason:      d.Reason,
	}
	if d.DayOfWeek != nil {
		day := int(*d.DayOfWeek)
		resp.DayOfWeek = &day
	}
	return resp
}
