package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vehicleFixture struct {
	vehicles *memVehicleRepo
	rentals  *memRentalRepo
	records  *memMaintenanceRepo
	audit    *memAuditRepo
	svc      VehicleService
}

func newVehicleFixture(t *testing.T) *vehicleFixture {
	t.Helper()

	f := &vehicleFixture{
		vehicles: newMemVehicleRepo(),
		rentals:  newMemRentalRepo(),
		records:  newMemMaintenanceRepo(),
		audit:    &memAuditRepo{},
	}
	f.svc = NewVehicleService(f.vehicles, f.rentals, f.records, f.audit, fakeTxManager{})
	return f
}

func validCreateVehicleRequest() CreateVehicleRequest {
	return CreateVehicleRequest{
		Plate:        "XYZ-9876",
		Make:         "Honda",
		Model:        "Civic",
		Year:         2024,
		Type:         model.VehicleTypeSedan,
		FuelType:     model.FuelGasoline,
		Transmission: model.TransmissionAutomatic,
		DailyRate:    "65.50",
	}
}

func TestCreateVehicleDefaults(t *testing.T) {
	f := newVehicleFixture(t)

	resp, err := f.svc.CreateVehicle(context.Background(), validCreateVehicleRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, model.VehicleAvailable, resp.Status)
	assert.Equal(t, 5, resp.Seats)
	assert.Equal(t, "65.50", resp.DailyRate)
	assert.True(t, resp.IsActive)
	assert.Equal(t, []string{model.ActionCreateVehicle}, f.audit.actions())
}

func TestCreateVehicleDuplicatePlate(t *testing.T) {
	f := newVehicleFixture(t)
	f.vehicles.add(&model.Vehicle{Plate: "XYZ-9876", IsActive: true})

	_, err := f.svc.CreateVehicle(context.Background(), validCreateVehicleRequest(), "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateVehicleInvalidRate(t *testing.T) {
	f := newVehicleFixture(t)

	req := validCreateVehicleRequest()
	req.DailyRate = "-10"
	_, err := f.svc.CreateVehicle(context.Background(), req, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateVehicleMileageCannotDecrease(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.vehicles.add(&model.Vehicle{
		Plate:          "AAA-1111",
		DailyRate:      decimal.NewFromInt(40),
		Status:         model.VehicleAvailable,
		CurrentMileage: 50000,
		IsActive:       true,
	})

	lower := 49000
	_, err := f.svc.UpdateVehicle(context.Background(), v.ID.String(), UpdateVehicleRequest{CurrentMileage: &lower}, "")
	require.ErrorIs(t, err, ErrValidation)

	higher := 51000
	resp, err := f.svc.UpdateVehicle(context.Background(), v.ID.String(), UpdateVehicleRequest{CurrentMileage: &higher}, "")
	require.NoError(t, err)
	assert.Equal(t, 51000, resp.CurrentMileage)
}

func TestUpdateVehiclePlateCollision(t *testing.T) {
	f := newVehicleFixture(t)
	f.vehicles.add(&model.Vehicle{Plate: "TAKEN-1", IsActive: true})
	v := f.vehicles.add(&model.Vehicle{Plate: "MINE-1", DailyRate: decimal.NewFromInt(30), IsActive: true})

	taken := "TAKEN-1"
	_, err := f.svc.UpdateVehicle(context.Background(), v.ID.String(), UpdateVehicleRequest{Plate: &taken}, "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestDeleteVehicleBlockedByActiveRental(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.vehicles.add(&model.Vehicle{Plate: "BBB-2222", Status: model.VehicleRented, IsActive: true})
	f.rentals.add(&model.Rental{
		VehicleID: v.ID,
		StartDate: time.Now(),
		EndDate:   time.Now().Add(48 * time.Hour),
		Status:    model.RentalActive,
	})

	err := f.svc.DeleteVehicle(context.Background(), v.ID.String(), "")
	require.ErrorIs(t, err, ErrConflict)
	assert.True(t, v.IsActive)
}

func TestDeleteVehicleBlockedByOpenMaintenance(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.vehicles.add(&model.Vehicle{Plate: "CCC-3333", Status: model.VehicleAvailable, IsActive: true})
	f.records.add(&model.Maintenance{
		VehicleID:     v.ID,
		Type:          model.MaintenanceTypePreventive,
		ScheduledDate: time.Now().Add(24 * time.Hour),
		Status:        model.MaintenanceScheduled,
	})

	err := f.svc.DeleteVehicle(context.Background(), v.ID.String(), "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestDeleteVehicleDeactivates(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.vehicles.add(&model.Vehicle{Plate: "DDD-4444", Status: model.VehicleAvailable, IsActive: true})

	require.NoError(t, f.svc.DeleteVehicle(context.Background(), v.ID.String(), ""))

	assert.False(t, v.IsActive)
	assert.Equal(t, model.VehicleInactive, v.Status)
	assert.Equal(t, []string{model.ActionDeleteVehicle}, f.audit.actions())
}
