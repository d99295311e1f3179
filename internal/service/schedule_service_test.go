package service

import (
	"context"
	"testing"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/apierror"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/dto"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func newScheduleFixture() (ScheduleService, *stubScheduleRepo, *stubAppointmentRepo) {
	scheduleRepo := newStubScheduleRepo()
	appointmentRepo := newStubAppointmentRepo()
	svc := NewScheduleService(scheduleRepo, appointmentRepo, fixedClock(testNow))
	return svc, scheduleRepo, appointmentRepo
}

func TestUpsertConfig_Idempotent(t *testing.T) {
	svc, repo, _ := newScheduleFixture()
	ctx := context.Background()

	first, err := svc.UpsertConfig(ctx, dto.UpsertScheduleConfigRequest{
		Date: "2025-03-10", Time: "09:00", IsAvailable: boolPtr(false), Reason: "Dock maintenance",
	})
	require.NoError(t, err)

	// Same slot again: edits the row, no duplicate
	second, err := svc.UpsertConfig(ctx, dto.UpsertScheduleConfigRequest{
		Date: "2025-03-10", Time: "09:00", IsAvailable: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsAvailable)
	assert.Len(t, repo.configs, 1)
}

func TestUpsertConfig_SecondsNormalized(t *testing.T) {
	svc, _, _ := newScheduleFixture()

	resp, err := svc.UpsertConfig(context.Background(), dto.UpsertScheduleConfigRequest{
		Date: "2025-03-10", Time: "09:00:00", IsAvailable: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "09:00", resp.Time)
}

func TestUpsertConfig_OffGrid(t *testing.T) {
	svc, _, _ := newScheduleFixture()

	_, err := svc.UpsertConfig(context.Background(), dto.UpsertScheduleConfigRequest{
		Date: "2025-03-10", Time: "07:00", IsAvailable: boolPtr(false),
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestUpsertDefault_AllDaysAndDaySpecificCoexist(t *testing.T) {
	svc, repo, _ := newScheduleFixture()
	ctx := context.Background()

	// All-days row and a Monday row for the same time are distinct entries
	allDays, err := svc.UpsertDefault(ctx, dto.UpsertDefaultScheduleRequest{
		Time: "12:00", IsAvailable: boolPtr(false), Reason: "Lunch break",
	})
	require.NoError(t, err)
	assert.Nil(t, allDays.DayOfWeek)

	monday, err := svc.UpsertDefault(ctx, dto.UpsertDefaultScheduleRequest{
		DayOfWeek: intPtr(1), Time: "12:00", IsAvailable: boolPtr(true),
	})
	require.NoError(t, err)
	require.NotNil(t, monday.DayOfWeek)
	assert.Equal(t, 1, *monday.DayOfWeek)
	assert.Len(t, repo.defaults, 2)

	// Re-upserting the all-days row edits it in place
	again, err := svc.UpsertDefault(ctx, dto.UpsertDefaultScheduleRequest{
		Time: "12:00", IsAvailable: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, allDays.ID, again.ID)
	assert.Len(t, repo.defaults, 2)
}

func TestDeleteOverrides(t *testing.T) {
	svc, repo, _ := newScheduleFixture()
	ctx := context.Background()

	config, err := svc.UpsertConfig(ctx, dto.UpsertScheduleConfigRequest{
		Date: "2025-03-10", Time: "09:00", IsAvailable: boolPtr(false),
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteConfig(ctx, uuid.MustParse(config.ID)))
	assert.Empty(t, repo.configs)

	def, err := svc.UpsertDefault(ctx, dto.UpsertDefaultScheduleRequest{
		DayOfWeek: intPtr(0), Time: "08:00", IsAvailable: boolPtr(false),
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteDefault(ctx, uuid.MustParse(def.ID)))
	assert.Empty(t, repo.defaults)
}

func TestAvailableTimes_FullResolverOutput(t *testing.T) {
	svc, scheduleRepo, appointmentRepo := newScheduleFixture()
	ctx := context.Background()

	require.NoError(t, scheduleRepo.SaveConfig(ctx, &model.ScheduleConfig{
		Date: day("2025-03-10"), Time: "09:00", IsAvailable: false, Reason: "Dock maintenance",
	}))
	require.NoError(t, appointmentRepo.CreateTx(nil, &model.Appointment{
		Date: day("2025-03-10"), Time: "10:00", Status: model.StatusScheduled, SupplierID: uuid.New(),
	}))

	statuses, err := svc.AvailableTimes(ctx, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, statuses, 10)

	byTime := make(map[string]dto.SlotStatusResponse)
	for _, st := range statuses {
		byTime[st.Time] = st
	}

	blocked := byTime["09:00"]
	assert.False(t, blocked.IsAvailable)
	assert.Equal(t, "date_override", blocked.Source)

	occupied := byTime["10:00"]
	assert.False(t, occupied.IsAvailable)
	assert.True(t, occupied.HasAppointment)
	assert.Equal(t, "occupancy", occupied.Source)

	open := byTime["11:00"]
	assert.True(t, open.IsAvailable)
	assert.Nil(t, open.Reason)
}

func TestAvailableSlots_SupplierProjection(t *testing.T) {
	svc, scheduleRepo, appointmentRepo := newScheduleFixture()
	ctx := context.Background()

	require.NoError(t, scheduleRepo.SaveConfig(ctx, &model.ScheduleConfig{
		Date: day("2025-03-10"), Time: "09:00", IsAvailable: false, Reason: "Dock maintenance",
	}))
	require.NoError(t, appointmentRepo.CreateTx(nil, &model.Appointment{
		Date: day("2025-03-10"), Time: "10:00", Status: model.StatusScheduled, SupplierID: uuid.New(),
	}))

	resp, err := svc.AvailableSlots(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", resp.Date)
	assert.Contains(t, resp.OccupiedSlots, "10:00")
	assert.NotContains(t, resp.AvailableSlots, "10:00")
	// Administratively blocked slots are in neither list
	assert.NotContains(t, resp.AvailableSlots, "09:00")
	assert.NotContains(t, resp.OccupiedSlots, "09:00")
	assert.Len(t, resp.AvailableSlots, 8)
}

func TestAvailableSlots_PastDateRejected(t *testing.T) {
	svc, _, _ := newScheduleFixture()

	_, err := svc.AvailableSlots(context.Background(), "2025-03-02")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}
