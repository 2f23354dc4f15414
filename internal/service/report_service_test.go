package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func reportWindow() (time.Time, time.Time) {
	return day("2026-08-01"), day("2026-08-31")
}

func TestGetIncomeReport(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReportService(db)
	start, end := reportWindow()

	mock.ExpectQuery(`FROM rentals r\s+WHERE r\.status IN \(\$4, \$5\)\s+AND r\.start_date >= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{
			"period", "rental_count", "subtotal", "tax_amount", "additional_charges", "discount_amount", "total_income",
		}).
			AddRow("2026-08-01", 3, 600.0, 114.0, 25.5, 0.0, 739.5))

	points, err := svc.GetIncomeReport(context.Background(), ReportFilter{
		GroupBy:   "month",
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	require.Len(t, points, 1)

	assert.Equal(t, "2026-08-01", points[0].Period)
	assert.Equal(t, int64(3), points[0].RentalCount)
	assert.Equal(t, "600.00", points[0].Subtotal)
	assert.Equal(t, "114.00", points[0].TaxAmount)
	assert.Equal(t, "25.50", points[0].AdditionalCharges)
	assert.Equal(t, "0.00", points[0].DiscountAmount)
	assert.Equal(t, "739.50", points[0].TotalIncome)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMaintenanceCostReport(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReportService(db)
	start, end := reportWindow()

	mock.ExpectQuery(`FROM maintenances m\s+WHERE m\.status = \$4\s+AND m\.completed_date >= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{
			"period", "job_count", "parts_cost", "labor_cost", "total_cost",
		}).
			AddRow("2026-08-01", 2, 120.5, 80.0, 200.5))

	mock.ExpectQuery(`FROM "maintenances" WHERE status = \$1 AND completed_date >= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"type", "job_count", "total_cost"}).
			AddRow("preventive", 2, 200.5))

	mock.ExpectQuery(`JOIN vehicles ON vehicles\.id = maintenances\.vehicle_id`).
		WillReturnRows(sqlmock.NewRows([]string{
			"vehicle_id", "plate", "make", "model", "job_count", "total_cost",
		}).
			AddRow("b6f4e7f0-0000-0000-0000-000000000001", "ABC-1234", "Toyota", "Corolla", 2, 200.5))

	byPeriod, byType, byVehicle, err := svc.GetMaintenanceCostReport(context.Background(), ReportFilter{
		GroupBy:   "month",
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)

	require.Len(t, byPeriod, 1)
	assert.Equal(t, int64(2), byPeriod[0].JobCount)
	assert.Equal(t, "120.50", byPeriod[0].PartsCost)
	assert.Equal(t, "80.00", byPeriod[0].LaborCost)
	assert.Equal(t, "200.50", byPeriod[0].TotalCost)

	require.Len(t, byType, 1)
	assert.Equal(t, "preventive", byType[0].Type)
	assert.Equal(t, "200.50", byType[0].TotalCost)

	require.Len(t, byVehicle, 1)
	assert.Equal(t, "ABC-1234", byVehicle[0].Plate)
	assert.Equal(t, "200.50", byVehicle[0].TotalCost)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFleetUtilization(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReportService(db)
	start, end := reportWindow()

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) as count FROM "vehicles" WHERE deleted_at IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("available", 1).
			AddRow("rented", 1))

	mock.ExpectQuery(`LEFT JOIN rentals r\s+ON r\.vehicle_id = v\.id\s+AND r\.status IN \(\$3, \$4\)`).
		WillReturnRows(sqlmock.NewRows([]string{
			"vehicle_id", "plate", "make", "model", "rented_days", "rental_count", "total_income",
		}).
			// overlapping rentals can exceed the window; the rate is clamped
			AddRow("veh-1", "ABC-1234", "Toyota", "Corolla", 40, 3, 2000.0).
			AddRow("veh-2", "XYZ-9876", "Ford", "Transit", 15, 1, 1200.0))

	report, err := svc.GetFleetUtilization(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.TotalVehicles)
	assert.Equal(t, int64(1), report.CountsByStatus["available"])
	assert.Equal(t, int64(1), report.CountsByStatus["rented"])

	require.Len(t, report.Vehicles, 2)
	assert.InDelta(t, 1.0, report.Vehicles[0].UtilizationRate, 1e-9)
	assert.InDelta(t, 0.5, report.Vehicles[1].UtilizationRate, 1e-9)
	assert.InDelta(t, 0.75, report.AverageRate, 1e-9)
	assert.Equal(t, "2000.00", report.Vehicles[0].TotalIncome)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFleetUtilizationInvalidWindow(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReportService(db)

	_, err := svc.GetFleetUtilization(context.Background(), day("2026-08-31"), day("2026-08-01"))
	require.ErrorIs(t, err, ErrValidation)

	// no query should have been issued
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSummary(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReportService(db)
	start, end := reportWindow()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) as value FROM "rentals" WHERE status IN \(\$1,\$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(1000.5))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(actual_cost\), 0\) as value FROM "maintenances" WHERE status = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(250.25))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "rentals" WHERE status = \$1 AND start_date >= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "rentals" WHERE status = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "maintenances" WHERE status = \$1 AND completed_date >= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "vehicles" WHERE "vehicles"\."deleted_at" IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "vehicles" WHERE status = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE is_active = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	report, err := svc.GetSummary(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, "1000.50", report.TotalIncome)
	assert.Equal(t, "250.25", report.TotalMaintenanceCost)
	assert.Equal(t, "750.25", report.NetResult)
	assert.Equal(t, int64(4), report.CompletedRentals)
	assert.Equal(t, int64(2), report.ActiveRentals)
	assert.Equal(t, int64(3), report.CompletedJobs)
	assert.Equal(t, int64(10), report.TotalVehicles)
	assert.Equal(t, int64(6), report.AvailableVehicles)
	assert.Equal(t, int64(25), report.TotalCustomers)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSummarySurfacesQueryErrors(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReportService(db)
	start, end := reportWindow()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) as value FROM "rentals"`).
		WillReturnError(errors.New("relation gone"))

	report, err := svc.GetSummary(context.Background(), start, end)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "failed to sum rental income")
}
