package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateCustomerRequest struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	DocumentNumber string `json:"document_number" binding:"required"`
	LicenseNumber  string `json:"license_number" binding:"required"`
	LicenseExpiry  string `json:"license_expiry" binding:"required"`
	Address        string `json:"address"`
	DateOfBirth    string `json:"date_of_birth"`
}

type UpdateCustomerRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	DocumentNumber *string `json:"document_number"`
	LicenseNumber  *string `json:"license_number"`
	LicenseExpiry  *string `json:"license_expiry"`
	Address        *string `json:"address"`
	IsActive       *bool   `json:"is_active"`
}

type CustomerFilter struct {
	IsActive *bool
	Search   string
	Page     int
	Limit    int
}

type CustomerResponse struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	DocumentNumber string  `json:"document_number"`
	LicenseNumber  string  `json:"license_number"`
	LicenseExpiry  string  `json:"license_expiry"`
	LicenseExpired bool    `json:"license_expired"`
	Address        string  `json:"address"`
	DateOfBirth    *string `json:"date_of_birth"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// --- Interface ---

type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest, actorID string) (CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (CustomerResponse, error)
	ListCustomers(ctx context.Context, filter CustomerFilter) ([]CustomerResponse, int64, error)
	UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest, actorID string) (CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id string, actorID string) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
	rentalRepo   repository.RentalRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	rentalRepo repository.RentalRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		rentalRepo:   rentalRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest, actorID string) (CustomerResponse, error) {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return CustomerResponse{}, fmt.Errorf("invalid email format: %w", ErrValidation)
	}

	licenseExpiry, err := parseDate(req.LicenseExpiry)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("invalid license_expiry: %w", ErrValidation)
	}

	var dateOfBirth *time.Time
	if req.DateOfBirth != "" {
		dob, parseErr := parseDate(req.DateOfBirth)
		if parseErr != nil {
			return CustomerResponse{}, fmt.Errorf("invalid date_of_birth: %w", ErrValidation)
		}
		dateOfBirth = &dob
	}

	if _, err := s.customerRepo.FindByEmail(ctx, req.Email); err == nil {
		return CustomerResponse{}, fmt.Errorf("email already registered: %w", ErrConflict)
	}
	if _, err := s.customerRepo.FindByDocumentNumber(ctx, req.DocumentNumber); err == nil {
		return CustomerResponse{}, fmt.Errorf("document number already registered: %w", ErrConflict)
	}
	if _, err := s.customerRepo.FindByLicenseNumber(ctx, req.LicenseNumber); err == nil {
		return CustomerResponse{}, fmt.Errorf("license number already registered: %w", ErrConflict)
	}

	customer := &model.Customer{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		DocumentNumber: req.DocumentNumber,
		LicenseNumber:  req.LicenseNumber,
		LicenseExpiry:  licenseExpiry,
		Address:        req.Address,
		DateOfBirth:    dateOfBirth,
		IsActive:       true,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to create customer: %w", err)
	}

	s.audit(ctx, actorID, model.ActionCreateCustomer, customer)
	return toCustomerResponse(*customer), nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("invalid customer id: %w", ErrValidation)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("customer not found: %w", ErrNotFound)
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter CustomerFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	customers, total, err := s.customerRepo.List(ctx, repository.CustomerListFilter{
		IsActive: filter.IsActive,
		Search:   filter.Search,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}

	result := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		result = append(result, toCustomerResponse(c))
	}
	return result, total, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest, actorID string) (CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("invalid customer id: %w", ErrValidation)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("customer not found: %w", ErrNotFound)
	}

	if req.Email != nil && *req.Email != customer.Email {
		if _, mailErr := mail.ParseAddress(*req.Email); mailErr != nil {
			return CustomerResponse{}, fmt.Errorf("invalid email format: %w", ErrValidation)
		}
		if _, findErr := s.customerRepo.FindByEmail(ctx, *req.Email); findErr == nil {
			return CustomerResponse{}, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		customer.Email = *req.Email
	}
	if req.DocumentNumber != nil && *req.DocumentNumber != customer.DocumentNumber {
		if _, findErr := s.customerRepo.FindByDocumentNumber(ctx, *req.DocumentNumber); findErr == nil {
			return CustomerResponse{}, fmt.Errorf("document number already registered: %w", ErrConflict)
		}
		customer.DocumentNumber = *req.DocumentNumber
	}
	if req.LicenseNumber != nil && *req.LicenseNumber != customer.LicenseNumber {
		if _, findErr := s.customerRepo.FindByLicenseNumber(ctx, *req.LicenseNumber); findErr == nil {
			return CustomerResponse{}, fmt.Errorf("license number already registered: %w", ErrConflict)
		}
		customer.LicenseNumber = *req.LicenseNumber
	}
	if req.LicenseExpiry != nil {
		expiry, parseErr := parseDate(*req.LicenseExpiry)
		if parseErr != nil {
			return CustomerResponse{}, fmt.Errorf("invalid license_expiry: %w", ErrValidation)
		}
		customer.LicenseExpiry = expiry
	}
	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to update customer: %w", err)
	}

	s.audit(ctx, actorID, model.ActionUpdateCustomer, customer)
	return toCustomerResponse(*customer), nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string, actorID string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid customer id: %w", ErrValidation)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, findErr := s.customerRepo.FindByID(txCtx, customerID)
		if findErr != nil {
			return fmt.Errorf("customer not found: %w", ErrNotFound)
		}

		active, countErr := s.rentalRepo.CountActiveByCustomer(txCtx, customerID)
		if countErr != nil {
			return fmt.Errorf("failed to check rentals: %w", countErr)
		}
		if active > 0 {
			return fmt.Errorf("customer has %d active or upcoming rental(s): %w", active, ErrConflict)
		}

		customer.IsActive = false
		if updateErr := s.customerRepo.Update(txCtx, customer); updateErr != nil {
			return fmt.Errorf("failed to deactivate customer: %w", updateErr)
		}
		if deleteErr := s.customerRepo.Delete(txCtx, customerID); deleteErr != nil {
			return fmt.Errorf("failed to delete customer: %w", deleteErr)
		}

		s.audit(txCtx, actorID, model.ActionDeleteCustomer, customer)
		return nil
	})
}

func (s *customerService) audit(ctx context.Context, actorID, action string, customer *model.Customer) {
	details, _ := json.Marshal(map[string]interface{}{
		"email":    customer.Email,
		"document": customer.DocumentNumber,
	})
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     parseActor(actorID),
		Action:     action,
		EntityID:   customer.ID.String(),
		EntityName: customer.FirstName + " " + customer.LastName,
		Details:    string(details),
	})
}

// --- Mapping ---

func toCustomerResponse(c model.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:             c.ID.String(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		DocumentNumber: c.DocumentNumber,
		LicenseNumber:  c.LicenseNumber,
		LicenseExpiry:  c.LicenseExpiry.Format("2006-01-02"),
		LicenseExpired: c.LicenseExpiry.Before(time.Now()),
		Address:        c.Address,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      c.UpdatedAt.Format(time.RFC3339),
	}
	if c.DateOfBirth != nil {
		s := c.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &s
	}
	return resp
}
