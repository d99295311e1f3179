package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/apierror"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/dto"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/repository"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentService interface {
	Create(ctx context.Context, p Principal, req dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	Update(ctx context.Context, p Principal, id uuid.UUID, req dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	Delete(ctx context.Context, p Principal, id uuid.UUID) error
	CheckIn(ctx context.Context, id uuid.UUID) (*dto.CheckInResponse, error)
	CheckOut(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	ListWeek(ctx context.Context, p Principal, weekStart string) ([]dto.WeekAppointment, error)
	ListWeekAdmin(ctx context.Context, weekStart string) ([]dto.AppointmentResponse, error)
}

type appointmentService struct {
	repo         repository.AppointmentRepository
	supplierRepo repository.SupplierRepository
	scheduleRepo repository.ScheduleRepository
	erpRepo      repository.ERPNotificationRepository
	dispatcher   *worker.Dispatcher
	clock        Clock
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	supplierRepo repository.SupplierRepository,
	scheduleRepo repository.ScheduleRepository,
	erpRepo repository.ERPNotificationRepository,
	dispatcher *worker.Dispatcher,
	clock Clock,
) AppointmentService {
	return &appointmentService{
		repo:         repo,
		supplierRepo: supplierRepo,
		scheduleRepo: scheduleRepo,
		erpRepo:      erpRepo,
		dispatcher:   dispatcher,
		clock:        clock,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *appointmentService) Create(ctx context.Context, p Principal, req dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !p.IsSupplier() || p.SupplierID == nil {
		return nil, apierror.Forbidden("Only supplier accounts can book appointments")
	}

	supplier, err := s.supplierRepo.FindByID(ctx, *p.SupplierID)
	if err != nil {
		return nil, apierror.NotFound("Supplier not found")
	}
	if supplier.IsDeleted || !supplier.IsActive {
		return nil, apierror.Forbidden("Supplier account is inactive")
	}

	date, timeStr, err := s.validateSlotInput(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	appointment := model.Appointment{
		Date:          date,
		Time:          timeStr,
		PurchaseOrder: req.PurchaseOrder,
		TruckPlate:    req.TruckPlate,
		DriverName:    req.DriverName,
		Status:        model.StatusScheduled,
		SupplierID:    *p.SupplierID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.guardSlot(ctx, tx, date, timeStr, nil); err != nil {
			return err
		}
		return s.repo.CreateTx(tx, &appointment)
	})
	if txErr != nil {
		return nil, translateSlotErr(txErr)
	}

	resp := appointmentToResponse(&appointment)
	return &resp, nil
}

// ── Update ────────────────────────────────────────────────────────────────────

func (s *appointmentService) Update(ctx context.Context, p Principal, id uuid.UUID, req dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := s.findVisible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status != model.StatusScheduled {
		return nil, apierror.InvalidTransition(
			fmt.Sprintf("Cannot modify an appointment in status %q", appointment.Status))
	}

	slotChanged := false
	newDate, newTime := appointment.Date, appointment.Time
	if req.Date != nil {
		slotChanged = true
		newDate, err = ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
	}
	if req.Time != nil {
		slotChanged = true
		newTime, err = NormalizeSlotTime(*req.Time)
		if err != nil {
			return nil, err
		}
	}
	if slotChanged {
		if _, _, err := s.validateSlotInput(newDate.Format("2006-01-02"), newTime); err != nil {
			return nil, err
		}
		appointment.Date = newDate
		appointment.Time = newTime
	}
	if req.PurchaseOrder != nil {
		appointment.PurchaseOrder = *req.PurchaseOrder
	}
	if req.TruckPlate != nil {
		appointment.TruckPlate = *req.TruckPlate
	}
	if req.DriverName != nil {
		appointment.DriverName = *req.DriverName
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if slotChanged {
			if err := s.guardSlot(ctx, tx, newDate, newTime, &appointment.ID); err != nil {
				return err
			}
		}
		return s.repo.UpdateTx(tx, appointment)
	})
	if txErr != nil {
		return nil, translateSlotErr(txErr)
	}

	resp := appointmentToResponse(appointment)
	return &resp, nil
}

// ── Delete ────────────────────────────────────────────────────────────────────

func (s *appointmentService) Delete(ctx context.Context, p Principal, id uuid.UUID) error {
	appointment, err := s.findVisible(ctx, p, id)
	if err != nil {
		return err
	}
	if appointment.Status != model.StatusScheduled {
		return apierror.InvalidTransition(
			fmt.Sprintf("Cannot cancel an appointment in status %q", appointment.Status))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Storage(err)
	}
	return nil
}

// ── Check-in / check-out ──────────────────────────────────────────────────────

func (s *appointmentService) CheckIn(ctx context.Context, id uuid.UUID) (*dto.CheckInResponse, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Appointment not found")
	}
	if appointment.Status != model.StatusScheduled {
		return nil, apierror.InvalidTransition(
			fmt.Sprintf("Cannot check in an appointment in status %q", appointment.Status))
	}
	if appointment.Supplier == nil {
		if supplier, err := s.supplierRepo.FindByID(ctx, appointment.SupplierID); err == nil {
			appointment.Supplier = supplier
		}
	}

	now := s.clock()
	appointment.Status = model.StatusCheckedIn
	appointment.CheckInTime = &now

	payload := buildERPPayload(appointment, now)
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, apierror.Storage(err)
	}

	notification := model.ERPNotification{
		AppointmentID: appointment.ID,
		Payload:       string(encoded),
		Status:        "pending",
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, appointment); err != nil {
			return err
		}
		return s.erpRepo.CreateTx(tx, &notification)
	})
	if txErr != nil {
		return nil, apierror.Storage(txErr)
	}

	// Delivery is best-effort here; the retry cron picks up anything the
	// queue loses.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueERPDelivery(ctx, worker.ERPJobPayload{
			NotificationID: notification.ID.String(),
		})
	}

	return &dto.CheckInResponse{
		Appointment: appointmentToResponse(appointment),
		ERPPayload:  payload,
	}, nil
}

func (s *appointmentService) CheckOut(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Appointment not found")
	}
	if appointment.Status != model.StatusCheckedIn {
		return nil, apierror.InvalidTransition(
			fmt.Sprintf("Cannot check out an appointment in status %q", appointment.Status))
	}

	now := s.clock()
	appointment.Status = model.StatusCheckedOut
	appointment.CheckOutTime = &now
	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, apierror.Storage(err)
	}

	resp := appointmentToResponse(appointment)
	return &resp, nil
}

// ── Week listings ─────────────────────────────────────────────────────────────

func (s *appointmentService) ListWeek(ctx context.Context, p Principal, weekStart string) ([]dto.WeekAppointment, error) {
	from, to, err := weekRange(weekStart)
	if err != nil {
		return nil, err
	}
	appointments, err := s.repo.ListWeek(ctx, from, to)
	if err != nil {
		return nil, apierror.Storage(err)
	}

	result := make([]dto.WeekAppointment, 0, len(appointments))
	for i := range appointments {
		a := &appointments[i]
		isOwn := p.SupplierID != nil && a.SupplierID == *p.SupplierID
		result = append(result, dto.WeekAppointment{
			AppointmentResponse: appointmentToResponse(a),
			IsOwn:               isOwn,
			CanEdit:             isOwn && a.Status == model.StatusScheduled,
		})
	}
	return result, nil
}

func (s *appointmentService) ListWeekAdmin(ctx context.Context, weekStart string) ([]dto.AppointmentResponse, error) {
	from, to, err := weekRange(weekStart)
	if err != nil {
		return nil, err
	}
	appointments, err := s.repo.ListWeek(ctx, from, to)
	if err != nil {
		return nil, apierror.Storage(err)
	}

	result := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		result = append(result, appointmentToResponse(&appointments[i]))
	}
	return result, nil
}

// ── Internals ─────────────────────────────────────────────────────────────────

// findVisible fetches an appointment honoring ownership: suppliers see only
// their own rows (foreign ids read as not-found, never forbidden, so ids
// are not probeable).
func (s *appointmentService) findVisible(ctx context.Context, p Principal, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Appointment not found")
	}
	if p.IsSupplier() {
		if p.SupplierID == nil || appointment.SupplierID != *p.SupplierID {
			return nil, apierror.NotFound("Appointment not found")
		}
	}
	return appointment, nil
}

// validateSlotInput checks date format, past date, time format and grid
// membership. Administrative overrides and occupancy are guardSlot's job,
// inside the transaction.
func (s *appointmentService) validateSlotInput(dateStr, timeStr string) (time.Time, string, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return time.Time{}, "", err
	}
	if date.Before(dateOnly(s.clock())) {
		return time.Time{}, "", apierror.Validation("Cannot book a slot on a past date")
	}
	normalized, err := NormalizeSlotTime(timeStr)
	if err != nil {
		return time.Time{}, "", err
	}
	if !onGrid(normalized) {
		return time.Time{}, "", apierror.Validation("Time is outside the dock schedule (08:00-17:00, on the hour)")
	}
	return date, normalized, nil
}

// guardSlot enforces single occupancy for (date, time) inside the caller's
// transaction. excludeID skips the appointment being edited.
func (s *appointmentService) guardSlot(ctx context.Context, tx *gorm.DB, date time.Time, timeStr string, excludeID *uuid.UUID) error {
	// Administrative overrides can block a slot independently of occupancy.
	statuses, err := s.resolveFor(ctx, date)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		if st.Time != timeStr {
			continue
		}
		if !st.IsAvailable && st.Source != SourceOccupancy {
			msg := "Slot is not available"
			if st.Reason != nil && *st.Reason != "" {
				msg = fmt.Sprintf("Slot is not available: %s", *st.Reason)
			}
			return apierror.Conflict(msg)
		}
	}

	existing, err := s.repo.FindByDateForUpdate(tx, date)
	if err != nil {
		return apierror.Storage(err)
	}
	for i := range existing {
		other := &existing[i]
		if excludeID != nil && other.ID == *excludeID {
			continue
		}
		if other.Time == timeStr {
			return apierror.Conflict(
				fmt.Sprintf("Slot already booked by appointment %s", other.ID))
		}
	}
	return nil
}

// resolveFor runs the availability resolver for a date with fresh data.
func (s *appointmentService) resolveFor(ctx context.Context, date time.Time) ([]SlotStatus, error) {
	configs, err := s.scheduleRepo.ListConfigsByDate(ctx, date)
	if err != nil {
		return nil, apierror.Storage(err)
	}
	defaults, err := s.scheduleRepo.ListDefaultsForDay(ctx, model.WeekdayOf(date))
	if err != nil {
		return nil, apierror.Storage(err)
	}
	return resolveDay(date, configs, defaults, nil), nil
}

// translateSlotErr maps a unique-index violation on (date, time) to the same
// conflict the locked read reports. The index is the hard guarantee; the read
// is just the friendlier fast path.
func translateSlotErr(err error) error {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierror.Conflict("Slot already booked")
	}
	return apierror.Storage(err)
}

func weekRange(weekStart string) (time.Time, time.Time, error) {
	from, err := ParseDate(weekStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, from.AddDate(0, 0, 6), nil
}

func buildERPPayload(a *model.Appointment, generatedAt time.Time) dto.ERPPayload {
	payload := dto.ERPPayload{
		AppointmentID: a.ID.String(),
		PurchaseOrder: a.PurchaseOrder,
		TruckPlate:    a.TruckPlate,
		DriverName:    a.DriverName,
		ScheduledDate: a.Date.Format("2006-01-02"),
		ScheduledTime: a.Time,
		Status:        a.Status,
		Timestamp:     generatedAt.UTC().Format(time.RFC3339),
	}
	if a.Supplier != nil {
		payload.SupplierCNPJ = a.Supplier.CNPJ
		payload.SupplierName = a.Supplier.Description
	}
	if a.CheckInTime != nil {
		v := a.CheckInTime.UTC().Format(time.RFC3339)
		payload.CheckInTime = &v
	}
	if a.CheckOutTime != nil {
		v := a.CheckOutTime.UTC().Format(time.RFC3339)
		payload.CheckOutTime = &v
	}
	return payload
}

func appointmentToResponse(a *model.Appointment) dto.AppointmentResponse {
	resp := dto.AppointmentResponse{
		ID:            a.ID.String(),
		Date:          a.Date.Format("2006-01-02"),
		Time:          a.Time,
		PurchaseOrder: a.PurchaseOrder,
		TruckPlate:    a.TruckPlate,
		DriverName:    a.DriverName,
		Status:        a.Status,
		SupplierID:    a.SupplierID.String(),
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     a.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if a.CheckInTime != nil {
		v := a.CheckInTime.UTC().Format(time.RFC3339)
		resp.CheckInTime = &v
	}
	if a.CheckOutTime != nil {
		v := a.CheckOutTime.UTC().Format(time.RFC3339)
		resp.CheckOutTime = &v
	}
	return resp
}
