package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type maintenanceFixture struct {
	records  *memMaintenanceRepo
	vehicles *memVehicleRepo
	audit    *memAuditRepo
	events   *recordingBroadcaster
	svc      MaintenanceService
	vehicle  *model.Vehicle
}

func newMaintenanceFixture(t *testing.T) *maintenanceFixture {
	t.Helper()

	f := &maintenanceFixture{
		records:  newMemMaintenanceRepo(),
		vehicles: newMemVehicleRepo(),
		audit:    &memAuditRepo{},
		events:   &recordingBroadcaster{},
	}
	f.svc = NewMaintenanceService(f.records, f.vehicles, f.audit, fakeTxManager{}, f.events)

	f.vehicle = f.vehicles.add(&model.Vehicle{
		Plate:          "MNT-0001",
		Make:           "Ford",
		Model:          "Transit",
		Year:           2022,
		Type:           model.VehicleTypeVan,
		DailyRate:      decimal.NewFromInt(80),
		Status:         model.VehicleAvailable,
		CurrentMileage: 30000,
		IsActive:       true,
	})
	return f
}

func (f *maintenanceFixture) schedule(t *testing.T, priority string) MaintenanceResponse {
	t.Helper()
	resp, err := f.svc.CreateMaintenance(context.Background(), CreateMaintenanceRequest{
		VehicleID:     f.vehicle.ID.String(),
		Type:          model.MaintenanceTypePreventive,
		Description:   "oil change",
		ScheduledDate: time.Now().Add(48 * time.Hour).Format("2006-01-02"),
		Priority:      priority,
	}, "")
	require.NoError(t, err)
	return resp
}

func TestCreateMaintenanceDefaults(t *testing.T) {
	f := newMaintenanceFixture(t)

	resp := f.schedule(t, "")

	assert.Equal(t, model.MaintenanceScheduled, resp.Status)
	assert.Equal(t, model.PriorityMedium, resp.Priority)
	assert.True(t, strings.HasPrefix(resp.MaintenanceNo, "MNT-"))
	assert.Equal(t, model.VehicleAvailable, f.vehicle.Status)
	assert.Equal(t, []string{"maintenance.created"}, f.events.events)
}

func TestCreateMaintenanceAuditFailureAborts(t *testing.T) {
	f := newMaintenanceFixture(t)
	f.audit.failWith = errors.New("audit store unavailable")

	_, err := f.svc.CreateMaintenance(context.Background(), CreateMaintenanceRequest{
		VehicleID:     f.vehicle.ID.String(),
		Type:          model.MaintenanceTypePreventive,
		Description:   "oil change",
		ScheduledDate: "2026-10-01",
	}, "")
	require.Error(t, err)
	assert.Empty(t, f.events.events)
}

func TestCreateMaintenanceCriticalReservesVehicle(t *testing.T) {
	f := newMaintenanceFixture(t)

	f.schedule(t, model.PriorityCritical)

	assert.Equal(t, model.VehicleMaintenance, f.vehicle.Status)
}

func TestCreateMaintenanceInactiveVehicle(t *testing.T) {
	f := newMaintenanceFixture(t)
	f.vehicle.IsActive = false

	_, err := f.svc.CreateMaintenance(context.Background(), CreateMaintenanceRequest{
		VehicleID:     f.vehicle.ID.String(),
		Type:          model.MaintenanceTypeCorrective,
		ScheduledDate: "2026-10-01",
	}, "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestStartMaintenanceRejectsRentedVehicle(t *testing.T) {
	f := newMaintenanceFixture(t)

	resp := f.schedule(t, "")
	f.vehicle.Status = model.VehicleRented

	_, err := f.svc.StartMaintenance(context.Background(), resp.ID, "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestStartMaintenanceMovesVehicleToMaintenance(t *testing.T) {
	f := newMaintenanceFixture(t)

	resp := f.schedule(t, "")
	started, err := f.svc.StartMaintenance(context.Background(), resp.ID, "")
	require.NoError(t, err)

	assert.Equal(t, model.MaintenanceInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	assert.Equal(t, model.VehicleMaintenance, f.vehicle.Status)
}

func TestCompleteMaintenanceCostDefaultsAndVehicleUpdate(t *testing.T) {
	f := newMaintenanceFixture(t)
	ctx := context.Background()

	resp := f.schedule(t, "")
	_, err := f.svc.StartMaintenance(ctx, resp.ID, "")
	require.NoError(t, err)

	mileage := 31000
	next := 41000
	completed, err := f.svc.CompleteMaintenance(ctx, resp.ID, CompleteMaintenanceRequest{
		PartsCost:          "100",
		LaborCost:          "50",
		MileageAtService:   &mileage,
		NextServiceMileage: &next,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, model.MaintenanceCompleted, completed.Status)
	require.NotNil(t, completed.ActualCost)
	assert.Equal(t, "150.00", *completed.ActualCost)
	assert.Equal(t, "100.00", completed.PartsCost)
	assert.Equal(t, "50.00", completed.LaborCost)

	assert.Equal(t, model.VehicleAvailable, f.vehicle.Status)
	assert.Equal(t, 31000, f.vehicle.LastServiceMileage)
	assert.Equal(t, 31000, f.vehicle.CurrentMileage)
	assert.Equal(t, 41000, f.vehicle.NextServiceMileage)
}

func TestCompleteMaintenanceExplicitActualCost(t *testing.T) {
	f := newMaintenanceFixture(t)
	ctx := context.Background()

	resp := f.schedule(t, "")
	_, err := f.svc.StartMaintenance(ctx, resp.ID, "")
	require.NoError(t, err)

	completed, err := f.svc.CompleteMaintenance(ctx, resp.ID, CompleteMaintenanceRequest{
		ActualCost: "220.50",
		PartsCost:  "100",
		LaborCost:  "50",
	}, "")
	require.NoError(t, err)

	require.NotNil(t, completed.ActualCost)
	assert.Equal(t, "220.50", *completed.ActualCost)
}

func TestCompleteMaintenanceRequiresInProgress(t *testing.T) {
	f := newMaintenanceFixture(t)

	resp := f.schedule(t, "")
	_, err := f.svc.CompleteMaintenance(context.Background(), resp.ID, CompleteMaintenanceRequest{}, "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestCancelMaintenanceReleasesHeldVehicle(t *testing.T) {
	f := newMaintenanceFixture(t)
	ctx := context.Background()

	resp := f.schedule(t, model.PriorityCritical)
	require.Equal(t, model.VehicleMaintenance, f.vehicle.Status)

	cancelled, err := f.svc.CancelMaintenance(ctx, resp.ID, "")
	require.NoError(t, err)

	assert.Equal(t, model.MaintenanceCancelled, cancelled.Status)
	assert.Equal(t, model.VehicleAvailable, f.vehicle.Status)
}

func TestCancelMaintenanceAlreadyTerminal(t *testing.T) {
	f := newMaintenanceFixture(t)
	ctx := context.Background()

	resp := f.schedule(t, "")
	_, err := f.svc.CancelMaintenance(ctx, resp.ID, "")
	require.NoError(t, err)

	_, err = f.svc.CancelMaintenance(ctx, resp.ID, "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestDeleteMaintenanceRejectsCompleted(t *testing.T) {
	f := newMaintenanceFixture(t)
	ctx := context.Background()

	resp := f.schedule(t, "")
	_, err := f.svc.StartMaintenance(ctx, resp.ID, "")
	require.NoError(t, err)
	_, err = f.svc.CompleteMaintenance(ctx, resp.ID, CompleteMaintenanceRequest{}, "")
	require.NoError(t, err)

	err = f.svc.DeleteMaintenance(ctx, resp.ID, "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestDeleteMaintenanceScheduled(t *testing.T) {
	f := newMaintenanceFixture(t)
	ctx := context.Background()

	resp := f.schedule(t, "")
	require.NoError(t, f.svc.DeleteMaintenance(ctx, resp.ID, ""))

	_, err := f.svc.GetMaintenance(ctx, resp.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkOverdueFlipsPastDueScheduled(t *testing.T) {
	f := newMaintenanceFixture(t)

	past := f.records.add(&model.Maintenance{
		VehicleID:     f.vehicle.ID,
		Type:          model.MaintenanceTypeScheduled,
		ScheduledDate: time.Now().Add(-72 * time.Hour),
		Status:        model.MaintenanceScheduled,
	})
	future := f.records.add(&model.Maintenance{
		VehicleID:     f.vehicle.ID,
		Type:          model.MaintenanceTypeScheduled,
		ScheduledDate: time.Now().Add(72 * time.Hour),
		Status:        model.MaintenanceScheduled,
	})

	marked, err := f.svc.MarkOverdue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), marked)
	assert.Equal(t, model.MaintenanceOverdue, past.Status)
	assert.Equal(t, model.MaintenanceScheduled, future.Status)
}

func TestUpdateMaintenanceReschedulingOverdueResetsStatus(t *testing.T) {
	f := newMaintenanceFixture(t)

	record := f.records.add(&model.Maintenance{
		VehicleID:     f.vehicle.ID,
		Type:          model.MaintenanceTypePreventive,
		ScheduledDate: time.Now().Add(-24 * time.Hour),
		Status:        model.MaintenanceOverdue,
	})

	newDate := time.Now().Add(96 * time.Hour).Format("2006-01-02")
	updated, err := f.svc.UpdateMaintenance(context.Background(), record.ID.String(), UpdateMaintenanceRequest{
		ScheduledDate: &newDate,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, model.MaintenanceScheduled, updated.Status)
}

func TestUpdateMaintenanceInvalidPriority(t *testing.T) {
	f := newMaintenanceFixture(t)

	resp := f.schedule(t, "")
	bad := "urgent"
	_, err := f.svc.UpdateMaintenance(context.Background(), resp.ID, UpdateMaintenanceRequest{Priority: &bad}, "")
	require.ErrorIs(t, err, ErrValidation)
}
