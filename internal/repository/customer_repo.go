package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerListFilter narrows and paginates customer queries
type CustomerListFilter struct {
	IsActive *bool
	Search   string // partial match on name, email, document, license
	Page     int
	Limit    int
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)
	FindByDocumentNumber(ctx context.Context, doc string) (*model.Customer, error)
	FindByLicenseNumber(ctx context.Context, license string) (*model.Customer, error)
	List(ctx context.Context, filter CustomerListFilter) ([]model.Customer, int64, error)
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByDocumentNumber(ctx context.Context, doc string) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "document_number = ?", doc).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByLicenseNumber(ctx context.Context, license string) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "license_number = ?", license).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, filter CustomerListFilter) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	db := GetDB(ctx, r.db)
	query := applyCustomerFilter(db.Model(&model.Customer{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := applyCustomerFilter(db.Model(&model.Customer{}), filter)
	if err := fetchQuery.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func applyCustomerFilter(query *gorm.DB, filter CustomerListFilter) *gorm.DB {
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR document_number ILIKE ? OR license_number ILIKE ?",
			like, like, like, like, like,
		)
	}
	return query
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Save(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Customer{}, "id = ?", id).Error
}
