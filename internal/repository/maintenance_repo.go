package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaintenanceListFilter narrows and paginates maintenance queries
type MaintenanceListFilter struct {
	VehicleID string
	Status    string
	Type      string
	Priority  string
	Search    string // partial match on maintenance_no
	Page      int
	Limit     int
}

type MaintenanceRepository interface {
	Create(ctx context.Context, m *model.Maintenance) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Maintenance, error)
	FindByIDWithVehicle(ctx context.Context, id uuid.UUID) (*model.Maintenance, error)
	List(ctx context.Context, filter MaintenanceListFilter) ([]model.Maintenance, int64, error)
	Update(ctx context.Context, m *model.Maintenance) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountOpenByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)
	// MarkOverdue flips scheduled records whose scheduled_date passed before
	// the cutoff to overdue, returning how many rows changed.
	MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error)
}

type maintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) Create(ctx context.Context, m *model.Maintenance) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *maintenanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Maintenance, error) {
	var m model.Maintenance
	if err := GetDB(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *maintenanceRepository) FindByIDWithVehicle(ctx context.Context, id uuid.UUID) (*model.Maintenance, error) {
	var m model.Maintenance
	if err := GetDB(ctx, r.db).Preload("Vehicle").First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *maintenanceRepository) List(ctx context.Context, filter MaintenanceListFilter) ([]model.Maintenance, int64, error) {
	var records []model.Maintenance
	var total int64

	db := GetDB(ctx, r.db)
	query := applyMaintenanceFilter(db.Model(&model.Maintenance{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := applyMaintenanceFilter(db.Preload("Vehicle"), filter)
	if err := fetchQuery.Order("scheduled_date desc").Offset(offset).Limit(filter.Limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func applyMaintenanceFilter(query *gorm.DB, filter MaintenanceListFilter) *gorm.DB {
	if filter.VehicleID != "" {
		query = query.Where("vehicle_id = ?", filter.VehicleID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Search != "" {
		query = query.Where("maintenance_no ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

func (r *maintenanceRepository) Update(ctx context.Context, m *model.Maintenance) error {
	return GetDB(ctx, r.db).Save(m).Error
}

func (r *maintenanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Maintenance{}, "id = ?", id).Error
}

func (r *maintenanceRepository) CountOpenByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Maintenance{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID,
			[]string{model.MaintenanceScheduled, model.MaintenanceInProgress, model.MaintenanceOverdue}).
		Count(&count).Error
	return count, err
}

func (r *maintenanceRepository) MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&model.Maintenance{}).
		Where("status = ? AND scheduled_date < ?", model.MaintenanceScheduled, cutoff).
		Update("status", model.MaintenanceOverdue)
	return result.RowsAffected, result.Error
}
