package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VehicleListFilter narrows and paginates vehicle queries
type VehicleListFilter struct {
	Status       string
	Type         string
	FuelType     string
	Transmission string
	Search       string // partial match on plate, make, model
	Page         int
	Limit        int
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	// FindByIDForUpdate locks the vehicle row for the duration of the
	// surrounding transaction, serializing concurrent lifecycle transitions
	// on the same vehicle.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*model.Vehicle, error)
	List(ctx context.Context, filter VehicleListFilter) ([]model.Vehicle, int64, error)
	Update(ctx context.Context, vehicle *model.Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return GetDB(ctx, r.db).Create(vehicle).Error
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := GetDB(ctx, r.db).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) FindByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := GetDB(ctx, r.db).First(&vehicle, "plate = ?", plate).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) List(ctx context.Context, filter VehicleListFilter) ([]model.Vehicle, int64, error) {
	var vehicles []model.Vehicle
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Vehicle{})
	query = applyVehicleFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := applyVehicleFilter(db.Model(&model.Vehicle{}), filter)
	if err := fetchQuery.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&vehicles).Error; err != nil {
		return nil, 0, err
	}

	return vehicles, total, nil
}

func applyVehicleFilter(query *gorm.DB, filter VehicleListFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.FuelType != "" {
		query = query.Where("fuel_type = ?", filter.FuelType)
	}
	if filter.Transmission != "" {
		query = query.Where("transmission = ?", filter.Transmission)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("plate ILIKE ? OR make ILIKE ? OR model ILIKE ?", like, like, like)
	}
	return query
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *model.Vehicle) error {
	return GetDB(ctx, r.db).Save(vehicle).Error
}

func (r *vehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Vehicle{}, "id = ?", id).Error
}
