package service

// In-memory repository stubs shared by the service tests. All of them run
// with a nil *gorm.DB so runTx executes the callback directly.

import (
	"context"
	"sort"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fixedClock pins "now" so past-date checks are deterministic.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// ── Appointments ──────────────────────────────────────────────────────────────

type stubAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newStubAppointmentRepo() *stubAppointmentRepo {
	return &stubAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *stubAppointmentRepo) CreateTx(_ *gorm.DB, a *model.Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.appointments[a.ID] = a
	return nil
}

func (r *stubAppointmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubAppointmentRepo) FindByDateForUpdate(_ *gorm.DB, date time.Time) ([]model.Appointment, error) {
	return r.onDate(date), nil
}

func (r *stubAppointmentRepo) ListByDate(_ context.Context, date time.Time) ([]model.Appointment, error) {
	return r.onDate(date), nil
}

func (r *stubAppointmentRepo) ListWeek(_ context.Context, from, to time.Time) ([]model.Appointment, error) {
	var result []model.Appointment
	for _, a := range r.appointments {
		if !a.Date.Before(from) && !a.Date.After(to) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Time < result[j].Time
	})
	return result, nil
}

func (r *stubAppointmentRepo) CountActiveBySupplier(_ context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	for _, a := range r.appointments {
		if a.SupplierID == supplierID && (a.Status == model.StatusScheduled || a.Status == model.StatusCheckedIn) {
			count++
		}
	}
	return count, nil
}

func (r *stubAppointmentRepo) UpdateTx(_ *gorm.DB, a *model.Appointment) error {
	r.appointments[a.ID] = a
	return nil
}

func (r *stubAppointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	r.appointments[a.ID] = a
	return nil
}

func (r *stubAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.appointments, id)
	return nil
}

func (r *stubAppointmentRepo) DB() *gorm.DB { return nil }

func (r *stubAppointmentRepo) onDate(date time.Time) []model.Appointment {
	var result []model.Appointment
	for _, a := range r.appointments {
		if a.Date.Equal(date) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Time < result[j].Time })
	return result
}

var _ repository.AppointmentRepository = (*stubAppointmentRepo)(nil)

// ── Suppliers ─────────────────────────────────────────────────────────────────

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) CreateTx(_ *gorm.DB, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.suppliers[s.ID] = s
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSupplierRepo) FindByCNPJ(_ context.Context, cnpj string) (*model.Supplier, error) {
	for _, s := range r.suppliers {
		if s.CNPJ == cnpj {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSupplierRepo) List(_ context.Context) ([]model.Supplier, error) {
	var result []model.Supplier
	for _, s := range r.suppliers {
		if !s.IsDeleted {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Description < result[j].Description })
	return result, nil
}

func (r *stubSupplierRepo) Update(_ context.Context, s *model.Supplier) error {
	r.suppliers[s.ID] = s
	return nil
}

func (r *stubSupplierRepo) UpdateTx(_ *gorm.DB, s *model.Supplier) error {
	r.suppliers[s.ID] = s
	return nil
}

func (r *stubSupplierRepo) DB() *gorm.DB { return nil }

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

// ── Users ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) CreateTx(_ *gorm.DB, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindBySupplierID(_ context.Context, supplierID uuid.UUID) ([]model.User, error) {
	var result []model.User
	for _, u := range r.users {
		if u.SupplierID != nil && *u.SupplierID == supplierID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *stubUserRepo) DeactivateBySupplierTx(_ *gorm.DB, supplierID uuid.UUID) error {
	for _, u := range r.users {
		if u.SupplierID != nil && *u.SupplierID == supplierID {
			u.IsActive = false
		}
	}
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Schedule overrides ────────────────────────────────────────────────────────

type stubScheduleRepo struct {
	configs  map[uuid.UUID]*model.ScheduleConfig
	defaults map[uuid.UUID]*model.DefaultSchedule
}

func newStubScheduleRepo() *stubScheduleRepo {
	return &stubScheduleRepo{
		configs:  make(map[uuid.UUID]*model.ScheduleConfig),
		defaults: make(map[uuid.UUID]*model.DefaultSchedule),
	}
}

func (r *stubScheduleRepo) FindConfig(_ context.Context, date time.Time, timeStr string) (*model.ScheduleConfig, error) {
	for _, c := range r.configs {
		if c.Date.Equal(date) && c.Time == timeStr {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubScheduleRepo) ListConfigsByDate(_ context.Context, date time.Time) ([]model.ScheduleConfig, error) {
	var result []model.ScheduleConfig
	for _, c := range r.configs {
		if c.Date.Equal(date) {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (r *stubScheduleRepo) SaveConfig(_ context.Context, c *model.ScheduleConfig) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.configs[c.ID] = c
	return nil
}

func (r *stubScheduleRepo) DeleteConfig(_ context.Context, id uuid.UUID) error {
	delete(r.configs, id)
	return nil
}

func (r *stubScheduleRepo) FindDefault(_ context.Context, dayOfWeek *model.Weekday, timeStr string) (*model.DefaultSchedule, error) {
	for _, d := range r.defaults {
		if d.Time != timeStr {
			continue
		}
		if dayOfWeek == nil && d.DayOfWeek == nil {
			return d, nil
		}
		if dayOfWeek != nil && d.DayOfWeek != nil && *dayOfWeek == *d.DayOfWeek {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubScheduleRepo) ListDefaultsForDay(_ context.Context, dayOfWeek model.Weekday) ([]model.DefaultSchedule, error) {
	var result []model.DefaultSchedule
	for _, d := range r.defaults {
		if d.DayOfWeek == nil || *d.DayOfWeek == dayOfWeek {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (r *stubScheduleRepo) ListDefaults(_ context.Context) ([]model.DefaultSchedule, error) {
	var result []model.DefaultSchedule
	for _, d := range r.defaults {
		result = append(result, *d)
	}
	return result, nil
}

func (r *stubScheduleRepo) SaveDefault(_ context.Context, d *model.DefaultSchedule) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.defaults[d.ID] = d
	return nil
}

func (r *stubScheduleRepo) DeleteDefault(_ context.Context, id uuid.UUID) error {
	delete(r.defaults, id)
	return nil
}

var _ repository.ScheduleRepository = (*stubScheduleRepo)(nil)

// ── ERP notifications ─────────────────────────────────────────────────────────

type stubERPNotificationRepo struct {
	notifications map[uuid.UUID]*model.ERPNotification
}

func newStubERPNotificationRepo() *stubERPNotificationRepo {
	return &stubERPNotificationRepo{notifications: make(map[uuid.UUID]*model.ERPNotification)}
}

func (r *stubERPNotificationRepo) CreateTx(_ *gorm.DB, n *model.ERPNotification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.notifications[n.ID] = n
	return nil
}

func (r *stubERPNotificationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ERPNotification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

func (r *stubERPNotificationRepo) Update(_ context.Context, n *model.ERPNotification) error {
	r.notifications[n.ID] = n
	return nil
}

func (r *stubERPNotificationRepo) ListPendingRetries(_ context.Context, now time.Time, limit int) ([]model.ERPNotification, error) {
	var result []model.ERPNotification
	for _, n := range r.notifications {
		if n.Status == "pending" && n.NextRetryAt != nil && !n.NextRetryAt.After(now) {
			result = append(result, *n)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

var _ repository.ERPNotificationRepository = (*stubERPNotificationRepo)(nil)
