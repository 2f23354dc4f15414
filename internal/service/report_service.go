package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"

	"gorm.io/gorm"
)

// --- DTOs ---

type IncomeDataPoint struct {
	Period            string `json:"period"`
	RentalCount       int64  `json:"rental_count"`
	Subtotal          string `json:"subtotal"`
	TaxAmount         string `json:"tax_amount"`
	AdditionalCharges string `json:"additional_charges"`
	DiscountAmount    string `json:"discount_amount"`
	TotalIncome       string `json:"total_income"`
}

type MaintenanceCostDataPoint struct {
	Period    string `json:"period"`
	JobCount  int64  `json:"job_count"`
	PartsCost string `json:"parts_cost"`
	LaborCost string `json:"labor_cost"`
	TotalCost string `json:"total_cost"`
}

type MaintenanceCostByType struct {
	Type      string `json:"type"`
	JobCount  int64  `json:"job_count"`
	TotalCost string `json:"total_cost"`
}

type VehicleCostEntry struct {
	VehicleID string `json:"vehicle_id"`
	Plate     string `json:"plate"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	JobCount  int64  `json:"job_count"`
	TotalCost string `json:"total_cost"`
}

type VehicleUtilizationEntry struct {
	VehicleID       string  `json:"vehicle_id"`
	Plate           string  `json:"plate"`
	Make            string  `json:"make"`
	Model           string  `json:"model"`
	RentedDays      int64   `json:"rented_days"`
	RentalCount     int64   `json:"rental_count"`
	UtilizationRate float64 `json:"utilization_rate"`
	TotalIncome     string  `json:"total_income"`
}

type FleetUtilizationReport struct {
	PeriodStart     time.Time                 `json:"period_start"`
	PeriodEnd       time.Time                 `json:"period_end"`
	TotalVehicles   int64                     `json:"total_vehicles"`
	CountsByStatus  map[string]int64          `json:"counts_by_status"`
	AverageRate     float64                   `json:"average_utilization_rate"`
	Vehicles        []VehicleUtilizationEntry `json:"vehicles"`
}

type SummaryReport struct {
	PeriodStart          time.Time `json:"period_start"`
	PeriodEnd            time.Time `json:"period_end"`
	TotalIncome          string    `json:"total_income"`
	TotalMaintenanceCost string    `json:"total_maintenance_cost"`
	NetResult            string    `json:"net_result"`
	CompletedRentals     int64     `json:"completed_rentals"`
	ActiveRentals        int64     `json:"active_rentals"`
	CompletedJobs        int64     `json:"completed_maintenance_jobs"`
	TotalVehicles        int64     `json:"total_vehicles"`
	AvailableVehicles    int64     `json:"available_vehicles"`
	TotalCustomers       int64     `json:"total_customers"`
}

type ReportFilter struct {
	GroupBy   string // day, week, month, quarter, year
	StartDate time.Time
	EndDate   time.Time
}

// --- Interface ---

type ReportService interface {
	GetIncomeReport(ctx context.Context, filter ReportFilter) ([]IncomeDataPoint, error)
	GetMaintenanceCostReport(ctx context.Context, filter ReportFilter) ([]MaintenanceCostDataPoint, []MaintenanceCostByType, []VehicleCostEntry, error)
	GetFleetUtilization(ctx context.Context, start, end time.Time) (*FleetUtilizationReport, error)
	GetSummary(ctx context.Context, start, end time.Time) (*SummaryReport, error)
}

type reportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) ReportService {
	return &reportService{db: db}
}

// --- Implementation ---

func normalizeGroupBy(groupBy string) string {
	switch groupBy {
	case "day", "week", "month", "quarter", "year":
		return groupBy
	default:
		return "month"
	}
}

// GetIncomeReport aggregates rental income per period. Completed rentals
// count fully; active rentals count too since their charges are committed.
func (s *reportService) GetIncomeReport(ctx context.Context, filter ReportFilter) ([]IncomeDataPoint, error) {
	groupBy := normalizeGroupBy(filter.GroupBy)

	query := `
		SELECT
			TO_CHAR(DATE_TRUNC($1, r.start_date), 'YYYY-MM-DD') AS period,
			COUNT(*) AS rental_count,
			COALESCE(SUM(r.subtotal), 0) AS subtotal,
			COALESCE(SUM(r.tax_amount), 0) AS tax_amount,
			COALESCE(SUM(r.additional_charges), 0) AS additional_charges,
			COALESCE(SUM(r.discount_amount), 0) AS discount_amount,
			COALESCE(SUM(r.total_amount), 0) AS total_income
		FROM rentals r
		WHERE r.status IN ($4, $5)
		  AND r.start_date >= $2::timestamptz
		  AND r.start_date <= $3::timestamptz
		GROUP BY DATE_TRUNC($1, r.start_date)
		ORDER BY period
	`

	type rawResult struct {
		Period            string  `gorm:"column:period"`
		RentalCount       int64   `gorm:"column:rental_count"`
		Subtotal          float64 `gorm:"column:subtotal"`
		TaxAmount         float64 `gorm:"column:tax_amount"`
		AdditionalCharges float64 `gorm:"column:additional_charges"`
		DiscountAmount    float64 `gorm:"column:discount_amount"`
		TotalIncome       float64 `gorm:"column:total_income"`
	}

	var rows []rawResult
	if err := s.db.WithContext(ctx).Raw(query,
		groupBy,
		filter.StartDate,
		filter.EndDate,
		model.RentalCompleted,
		model.RentalActive,
	).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query income report: %w", err)
	}

	result := make([]IncomeDataPoint, 0, len(rows))
	for _, r := range rows {
		result = append(result, IncomeDataPoint{
			Period:            r.Period,
			RentalCount:       r.RentalCount,
			Subtotal:          fmt.Sprintf("%.2f", r.Subtotal),
			TaxAmount:         fmt.Sprintf("%.2f", r.TaxAmount),
			AdditionalCharges: fmt.Sprintf("%.2f", r.AdditionalCharges),
			DiscountAmount:    fmt.Sprintf("%.2f", r.DiscountAmount),
			TotalIncome:       fmt.Sprintf("%.2f", r.TotalIncome),
		})
	}

	return result, nil
}

// GetMaintenanceCostReport returns completed maintenance spend three ways:
// per period, per maintenance type, and per vehicle.
func (s *reportService) GetMaintenanceCostReport(ctx context.Context, filter ReportFilter) ([]MaintenanceCostDataPoint, []MaintenanceCostByType, []VehicleCostEntry, error) {
	groupBy := normalizeGroupBy(filter.GroupBy)

	periodQuery := `
		SELECT
			TO_CHAR(DATE_TRUNC($1, m.completed_date), 'YYYY-MM-DD') AS period,
			COUNT(*) AS job_count,
			COALESCE(SUM(m.parts_cost), 0) AS parts_cost,
			COALESCE(SUM(m.labor_cost), 0) AS labor_cost,
			COALESCE(SUM(m.actual_cost), 0) AS total_cost
		FROM maintenances m
		WHERE m.status = $4
		  AND m.completed_date >= $2::timestamptz
		  AND m.completed_date <= $3::timestamptz
		GROUP BY DATE_TRUNC($1, m.completed_date)
		ORDER BY period
	`

	type periodRow struct {
		Period    string  `gorm:"column:period"`
		JobCount  int64   `gorm:"column:job_count"`
		PartsCost float64 `gorm:"column:parts_cost"`
		LaborCost float64 `gorm:"column:labor_cost"`
		TotalCost float64 `gorm:"column:total_cost"`
	}

	var periodRows []periodRow
	if err := s.db.WithContext(ctx).Raw(periodQuery,
		groupBy, filter.StartDate, filter.EndDate, model.MaintenanceCompleted,
	).Scan(&periodRows).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to query maintenance cost by period: %w", err)
	}

	byPeriod := make([]MaintenanceCostDataPoint, 0, len(periodRows))
	for _, r := range periodRows {
		byPeriod = append(byPeriod, MaintenanceCostDataPoint{
			Period:    r.Period,
			JobCount:  r.JobCount,
			PartsCost: fmt.Sprintf("%.2f", r.PartsCost),
			LaborCost: fmt.Sprintf("%.2f", r.LaborCost),
			TotalCost: fmt.Sprintf("%.2f", r.TotalCost),
		})
	}

	type typeRow struct {
		Type      string  `gorm:"column:type"`
		JobCount  int64   `gorm:"column:job_count"`
		TotalCost float64 `gorm:"column:total_cost"`
	}

	var typeRows []typeRow
	if err := s.db.WithContext(ctx).Table("maintenances").
		Select("type, COUNT(*) as job_count, COALESCE(SUM(actual_cost), 0) as total_cost").
		Where("status = ? AND completed_date >= ? AND completed_date <= ?",
			model.MaintenanceCompleted, filter.StartDate, filter.EndDate).
		Group("type").
		Order("total_cost DESC").
		Scan(&typeRows).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to query maintenance cost by type: %w", err)
	}

	byType := make([]MaintenanceCostByType, 0, len(typeRows))
	for _, r := range typeRows {
		byType = append(byType, MaintenanceCostByType{
			Type:      r.Type,
			JobCount:  r.JobCount,
			TotalCost: fmt.Sprintf("%.2f", r.TotalCost),
		})
	}

	type vehicleRow struct {
		VehicleID string  `gorm:"column:vehicle_id"`
		Plate     string  `gorm:"column:plate"`
		Make      string  `gorm:"column:make"`
		Model     string  `gorm:"column:model"`
		JobCount  int64   `gorm:"column:job_count"`
		TotalCost float64 `gorm:"column:total_cost"`
	}

	var vehicleRows []vehicleRow
	if err := s.db.WithContext(ctx).Table("maintenances").
		Select("vehicles.id as vehicle_id, vehicles.plate, vehicles.make, vehicles.model, COUNT(*) as job_count, COALESCE(SUM(maintenances.actual_cost), 0) as total_cost").
		Joins("JOIN vehicles ON vehicles.id = maintenances.vehicle_id").
		Where("maintenances.status = ? AND maintenances.completed_date >= ? AND maintenances.completed_date <= ?",
			model.MaintenanceCompleted, filter.StartDate, filter.EndDate).
		Group("vehicles.id, vehicles.plate, vehicles.make, vehicles.model").
		Order("total_cost DESC").
		Limit(20).
		Scan(&vehicleRows).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to query maintenance cost by vehicle: %w", err)
	}

	byVehicle := make([]VehicleCostEntry, 0, len(vehicleRows))
	for _, r := range vehicleRows {
		byVehicle = append(byVehicle, VehicleCostEntry{
			VehicleID: r.VehicleID,
			Plate:     r.Plate,
			Make:      r.Make,
			Model:     r.Model,
			JobCount:  r.JobCount,
			TotalCost: fmt.Sprintf("%.2f", r.TotalCost),
		})
	}

	return byPeriod, byType, byVehicle, nil
}

// GetFleetUtilization reports, per vehicle, how many days of the window were
// covered by rentals that reached active or completed status. Rental spans
// are clamped to the requested window before counting.
func (s *reportService) GetFleetUtilization(ctx context.Context, start, end time.Time) (*FleetUtilizationReport, error) {
	report := &FleetUtilizationReport{
		PeriodStart:    start,
		PeriodEnd:      end,
		CountsByStatus: make(map[string]int64),
	}

	windowDays := end.Sub(start).Hours() / 24
	if windowDays <= 0 {
		return nil, fmt.Errorf("end date must be after start date: %w", ErrValidation)
	}

	type statusRow struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}
	var statusRows []statusRow
	if err := s.db.WithContext(ctx).Table("vehicles").
		Select("status, COUNT(*) as count").
		Where("deleted_at IS NULL").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count fleet by status: %w", err)
	}
	for _, r := range statusRows {
		report.CountsByStatus[r.Status] = r.Count
		report.TotalVehicles += r.Count
	}

	query := `
		SELECT
			v.id AS vehicle_id,
			v.plate,
			v.make,
			v.model,
			COALESCE(SUM(
				GREATEST(0, CEIL(EXTRACT(EPOCH FROM (LEAST(r.end_date, $2::timestamptz) - GREATEST(r.start_date, $1::timestamptz))) / 86400))
			), 0) AS rented_days,
			COUNT(r.id) AS rental_count,
			COALESCE(SUM(r.total_amount), 0) AS total_income
		FROM vehicles v
		LEFT JOIN rentals r
			ON r.vehicle_id = v.id
			AND r.status IN ($3, $4)
			AND r.start_date <= $2::timestamptz
			AND r.end_date >= $1::timestamptz
		WHERE v.deleted_at IS NULL
		GROUP BY v.id, v.plate, v.make, v.model
		ORDER BY rented_days DESC
	`

	type utilRow struct {
		VehicleID   string  `gorm:"column:vehicle_id"`
		Plate       string  `gorm:"column:plate"`
		Make        string  `gorm:"column:make"`
		Model       string  `gorm:"column:model"`
		RentedDays  int64   `gorm:"column:rented_days"`
		RentalCount int64   `gorm:"column:rental_count"`
		TotalIncome float64 `gorm:"column:total_income"`
	}

	var rows []utilRow
	if err := s.db.WithContext(ctx).Raw(query,
		start, end, model.RentalActive, model.RentalCompleted,
	).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query fleet utilization: %w", err)
	}

	var rateSum float64
	report.Vehicles = make([]VehicleUtilizationEntry, 0, len(rows))
	for _, r := range rows {
		rate := float64(r.RentedDays) / windowDays
		if rate > 1 {
			rate = 1
		}
		rateSum += rate
		report.Vehicles = append(report.Vehicles, VehicleUtilizationEntry{
			VehicleID:       r.VehicleID,
			Plate:           r.Plate,
			Make:            r.Make,
			Model:           r.Model,
			RentedDays:      r.RentedDays,
			RentalCount:     r.RentalCount,
			UtilizationRate: rate,
			TotalIncome:     fmt.Sprintf("%.2f", r.TotalIncome),
		})
	}
	if len(rows) > 0 {
		report.AverageRate = rateSum / float64(len(rows))
	}

	return report, nil
}

// GetSummary rolls income and maintenance spend into a single net figure
// alongside headline fleet counts.
func (s *reportService) GetSummary(ctx context.Context, start, end time.Time) (*SummaryReport, error) {
	report := &SummaryReport{PeriodStart: start, PeriodEnd: end}

	var income struct {
		Value float64
	}
	if err := s.db.WithContext(ctx).Table("rentals").
		Select("COALESCE(SUM(total_amount), 0) as value").
		Where("status IN ? AND start_date >= ? AND start_date <= ?",
			[]string{model.RentalCompleted, model.RentalActive}, start, end).
		Scan(&income).Error; err != nil {
		return nil, fmt.Errorf("failed to sum rental income: %w", err)
	}

	var cost struct {
		Value float64
	}
	if err := s.db.WithContext(ctx).Table("maintenances").
		Select("COALESCE(SUM(actual_cost), 0) as value").
		Where("status = ? AND completed_date >= ? AND completed_date <= ?",
			model.MaintenanceCompleted, start, end).
		Scan(&cost).Error; err != nil {
		return nil, fmt.Errorf("failed to sum maintenance cost: %w", err)
	}

	report.TotalIncome = fmt.Sprintf("%.2f", income.Value)
	report.TotalMaintenanceCost = fmt.Sprintf("%.2f", cost.Value)
	report.NetResult = fmt.Sprintf("%.2f", income.Value-cost.Value)

	if err := s.db.WithContext(ctx).Model(&model.Rental{}).
		Where("status = ? AND start_date >= ? AND start_date <= ?", model.RentalCompleted, start, end).
		Count(&report.CompletedRentals).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed rentals: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Rental{}).
		Where("status = ?", model.RentalActive).
		Count(&report.ActiveRentals).Error; err != nil {
		return nil, fmt.Errorf("failed to count active rentals: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Maintenance{}).
		Where("status = ? AND completed_date >= ? AND completed_date <= ?", model.MaintenanceCompleted, start, end).
		Count(&report.CompletedJobs).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed maintenance: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Vehicle{}).Count(&report.TotalVehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to count vehicles: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Vehicle{}).
		Where("status = ?", model.VehicleAvailable).
		Count(&report.AvailableVehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to count available vehicles: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Customer{}).
		Where("is_active = ?", true).
		Count(&report.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	return report, nil
}
