package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateVehicleRequest struct {
	Plate          string `json:"plate" binding:"required"`
	Make           string `json:"make" binding:"required"`
	Model          string `json:"model" binding:"required"`
	Year           int    `json:"year" binding:"required,min=1980"`
	Type           string `json:"type" binding:"required,oneof=sedan suv van pickup hatchback"`
	FuelType       string `json:"fuel_type" binding:"required,oneof=gasoline diesel hybrid electric"`
	Transmission   string `json:"transmission" binding:"required,oneof=manual automatic"`
	Seats          int    `json:"seats"`
	Color          string `json:"color"`
	DailyRate      string `json:"daily_rate" binding:"required"`
	CurrentMileage int    `json:"current_mileage"`
	Notes          string `json:"notes"`
}

// UpdateVehicleRequest deliberately has no status field: status belongs to
// the rental and maintenance lifecycles.
type UpdateVehicleRequest struct {
	Plate          *string `json:"plate"`
	Make           *string `json:"make"`
	Model          *string `json:"model"`
	Year           *int    `json:"year"`
	Seats          *int    `json:"seats"`
	Color          *string `json:"color"`
	DailyRate      *string `json:"daily_rate"`
	CurrentMileage *int    `json:"current_mileage"`
	Notes          *string `json:"notes"`
}

type VehicleFilter struct {
	Status       string
	Type         string
	FuelType     string
	Transmission string
	Search       string
	Page         int
	Limit        int
}

type VehicleResponse struct {
	ID                 string `json:"id"`
	Plate              string `json:"plate"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	Type               string `json:"type"`
	FuelType           string `json:"fuel_type"`
	Transmission       string `json:"transmission"`
	Seats              int    `json:"seats"`
	Color              string `json:"color"`
	DailyRate          string `json:"daily_rate"`
	CurrentMileage     int    `json:"current_mileage"`
	LastServiceMileage int    `json:"last_service_mileage"`
	NextServiceMileage int    `json:"next_service_mileage"`
	Status             string `json:"status"`
	Notes              string `json:"notes"`
	IsActive           bool   `json:"is_active"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

// --- Interface ---

type VehicleService interface {
	CreateVehicle(ctx context.Context, req CreateVehicleRequest, actorID string) (VehicleResponse, error)
	GetVehicle(ctx context.Context, id string) (VehicleResponse, error)
	ListVehicles(ctx context.Context, filter VehicleFilter) ([]VehicleResponse, int64, error)
	UpdateVehicle(ctx context.Context, id string, req UpdateVehicleRequest, actorID string) (VehicleResponse, error)
	DeleteVehicle(ctx context.Context, id string, actorID string) error
}

type vehicleService struct {
	vehicleRepo     repository.VehicleRepository
	rentalRepo      repository.RentalRepository
	maintenanceRepo repository.MaintenanceRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
}

func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	rentalRepo repository.RentalRepository,
	maintenanceRepo repository.MaintenanceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) VehicleService {
	return &vehicleService{
		vehicleRepo:     vehicleRepo,
		rentalRepo:      rentalRepo,
		maintenanceRepo: maintenanceRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
	}
}

// --- Implementation ---

func (s *vehicleService) CreateVehicle(ctx context.Context, req CreateVehicleRequest, actorID string) (VehicleResponse, error) {
	dailyRate, err := decimal.NewFromString(req.DailyRate)
	if err != nil || dailyRate.IsNegative() {
		return VehicleResponse{}, fmt.Errorf("invalid daily_rate: %w", ErrValidation)
	}

	if _, err := s.vehicleRepo.FindByPlate(ctx, req.Plate); err == nil {
		return VehicleResponse{}, fmt.Errorf("a vehicle with plate %s already exists: %w", req.Plate, ErrConflict)
	}

	seats := req.Seats
	if seats == 0 {
		seats = 5
	}

	vehicle := &model.Vehicle{
		Plate:          req.Plate,
		Make:           req.Make,
		Model:          req.Model,
		Year:           req.Year,
		Type:           req.Type,
		FuelType:       req.FuelType,
		Transmission:   req.Transmission,
		Seats:          seats,
		Color:          req.Color,
		DailyRate:      dailyRate,
		CurrentMileage: req.CurrentMileage,
		Status:         model.VehicleAvailable,
		Notes:          req.Notes,
		IsActive:       true,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return VehicleResponse{}, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.audit(ctx, actorID, model.ActionCreateVehicle, vehicle)
	return toVehicleResponse(*vehicle), nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, id string) (VehicleResponse, error) {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("invalid vehicle id: %w", ErrValidation)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("vehicle not found: %w", ErrNotFound)
	}
	return toVehicleResponse(*vehicle), nil
}

func (s *vehicleService) ListVehicles(ctx context.Context, filter VehicleFilter) ([]VehicleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	vehicles, total, err := s.vehicleRepo.List(ctx, repository.VehicleListFilter{
		Status:       filter.Status,
		Type:         filter.Type,
		FuelType:     filter.FuelType,
		Transmission: filter.Transmission,
		Search:       filter.Search,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vehicles: %w", err)
	}

	result := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		result = append(result, toVehicleResponse(v))
	}
	return result, total, nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, id string, req UpdateVehicleRequest, actorID string) (VehicleResponse, error) {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("invalid vehicle id: %w", ErrValidation)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("vehicle not found: %w", ErrNotFound)
	}

	if req.Plate != nil && *req.Plate != vehicle.Plate {
		if _, err := s.vehicleRepo.FindByPlate(ctx, *req.Plate); err == nil {
			return VehicleResponse{}, fmt.Errorf("a vehicle with plate %s already exists: %w", *req.Plate, ErrConflict)
		}
		vehicle.Plate = *req.Plate
	}
	if req.Make != nil {
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Seats != nil {
		vehicle.Seats = *req.Seats
	}
	if req.Color != nil {
		vehicle.Color = *req.Color
	}
	if req.DailyRate != nil {
		rate, parseErr := decimal.NewFromString(*req.DailyRate)
		if parseErr != nil || rate.IsNegative() {
			return VehicleResponse{}, fmt.Errorf("invalid daily_rate: %w", ErrValidation)
		}
		vehicle.DailyRate = rate
	}
	if req.CurrentMileage != nil {
		if *req.CurrentMileage < vehicle.CurrentMileage {
			return VehicleResponse{}, fmt.Errorf("current_mileage cannot decrease: %w", ErrValidation)
		}
		vehicle.CurrentMileage = *req.CurrentMileage
	}
	if req.Notes != nil {
		vehicle.Notes = *req.Notes
	}

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return VehicleResponse{}, fmt.Errorf("failed to update vehicle: %w", err)
	}

	s.audit(ctx, actorID, model.ActionUpdateVehicle, vehicle)
	return toVehicleResponse(*vehicle), nil
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, id string, actorID string) error {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle id: %w", ErrValidation)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		vehicle, findErr := s.vehicleRepo.FindByIDForUpdate(txCtx, vehicleID)
		if findErr != nil {
			return fmt.Errorf("vehicle not found: %w", ErrNotFound)
		}

		activeRentals, countErr := s.rentalRepo.CountActiveByVehicle(txCtx, vehicleID)
		if countErr != nil {
			return fmt.Errorf("failed to check rentals: %w", countErr)
		}
		if activeRentals > 0 {
			return fmt.Errorf("vehicle has %d active or upcoming rental(s): %w", activeRentals, ErrConflict)
		}

		openMaintenance, countErr := s.maintenanceRepo.CountOpenByVehicle(txCtx, vehicleID)
		if countErr != nil {
			return fmt.Errorf("failed to check maintenance records: %w", countErr)
		}
		if openMaintenance > 0 {
			return fmt.Errorf("vehicle has %d open maintenance record(s): %w", openMaintenance, ErrConflict)
		}

		vehicle.Status = model.VehicleInactive
		vehicle.IsActive = false
		if updateErr := s.vehicleRepo.Update(txCtx, vehicle); updateErr != nil {
			return fmt.Errorf("failed to deactivate vehicle: %w", updateErr)
		}
		if deleteErr := s.vehicleRepo.Delete(txCtx, vehicleID); deleteErr != nil {
			return fmt.Errorf("failed to delete vehicle: %w", deleteErr)
		}

		s.audit(txCtx, actorID, model.ActionDeleteVehicle, vehicle)
		return nil
	})
}

func (s *vehicleService) audit(ctx context.Context, actorID, action string, vehicle *model.Vehicle) {
	details, _ := json.Marshal(map[string]interface{}{
		"plate":  vehicle.Plate,
		"status": vehicle.Status,
	})
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     parseActor(actorID),
		Action:     action,
		EntityID:   vehicle.ID.String(),
		EntityName: vehicle.Plate,
		Details:    string(details),
	})
}

// --- Mapping ---

func toVehicleResponse(v model.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:                 v.ID.String(),
		Plate:              v.Plate,
		Make:               v.Make,
		Model:              v.Model,
		Year:               v.Year,
		Type:               v.Type,
		FuelType:           v.FuelType,
		Transmission:       v.Transmission,
		Seats:              v.Seats,
		Color:              v.Color,
		DailyRate:          v.DailyRate.StringFixed(2),
		CurrentMileage:     v.CurrentMileage,
		LastServiceMileage: v.LastServiceMileage,
		NextServiceMileage: v.NextServiceMileage,
		Status:             v.Status,
		Notes:              v.Notes,
		IsActive:           v.IsActive,
		CreatedAt:          v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          v.UpdatedAt.Format(time.RFC3339),
	}
}
