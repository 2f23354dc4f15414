package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RentalListFilter narrows and paginates rental queries
type RentalListFilter struct {
	Status        string
	PaymentStatus string
	CustomerID    string
	VehicleID     string
	Search        string // partial match on rental_no
	Page          int
	Limit         int
}

type RentalRepository interface {
	Create(ctx context.Context, rental *model.Rental) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Rental, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Rental, error)
	List(ctx context.Context, filter RentalListFilter) ([]model.Rental, int64, error)
	Update(ctx context.Context, rental *model.Rental) error
	// CountOverlapping counts rentals of the vehicle in an active-state status
	// whose [start_date, end_date] interval overlaps the given one under
	// inclusive-bounds semantics. exclude, when non-nil, omits that rental
	// (used when revalidating a date change on an existing rental).
	CountOverlapping(ctx context.Context, vehicleID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int64, error)
	CountActiveByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	CountActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)
}

type rentalRepository struct {
	db *gorm.DB
}

func NewRentalRepository(db *gorm.DB) RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	return GetDB(ctx, r.db).Create(rental).Error
}

func (r *rentalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	var rental model.Rental
	if err := GetDB(ctx, r.db).First(&rental, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	var rental model.Rental
	if err := GetDB(ctx, r.db).Preload("Customer").Preload("Vehicle").First(&rental, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) List(ctx context.Context, filter RentalListFilter) ([]model.Rental, int64, error) {
	var rentals []model.Rental
	var total int64

	db := GetDB(ctx, r.db)
	query := applyRentalFilter(db.Model(&model.Rental{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := applyRentalFilter(db.Preload("Customer").Preload("Vehicle"), filter)
	if err := fetchQuery.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&rentals).Error; err != nil {
		return nil, 0, err
	}

	return rentals, total, nil
}

func applyRentalFilter(query *gorm.DB, filter RentalListFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.VehicleID != "" {
		query = query.Where("vehicle_id = ?", filter.VehicleID)
	}
	if filter.Search != "" {
		query = query.Where("rental_no ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

func (r *rentalRepository) Update(ctx context.Context, rental *model.Rental) error {
	return GetDB(ctx, r.db).Save(rental).Error
}

func (r *rentalRepository) CountOverlapping(ctx context.Context, vehicleID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int64, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.Rental{}).
		Where("vehicle_id = ?", vehicleID).
		Where("status IN ?", model.ActiveRentalStatuses).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *rentalRepository) CountActiveByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Rental{}).
		Where("customer_id = ? AND status IN ?", customerID, model.ActiveRentalStatuses).
		Count(&count).Error
	return count, err
}

func (r *rentalRepository) CountActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Rental{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID, model.ActiveRentalStatuses).
		Count(&count).Error
	return count, err
}
