package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateMaintenanceRequest struct {
	VehicleID     string `json:"vehicle_id" binding:"required"`
	Type          string `json:"type" binding:"required,oneof=preventive corrective predictive scheduled"`
	Description   string `json:"description"`
	ScheduledDate string `json:"scheduled_date" binding:"required"`
	Priority      string `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	EstimatedCost string `json:"estimated_cost"`
	PerformedBy   string `json:"performed_by"`
	Notes         string `json:"notes"`
}

// UpdateMaintenanceRequest patches a non-terminal record. Status moves only
// through the lifecycle endpoints.
type UpdateMaintenanceRequest struct {
	Description   *string `json:"description"`
	ScheduledDate *string `json:"scheduled_date"`
	Priority      *string `json:"priority"`
	EstimatedCost *string `json:"estimated_cost"`
	PerformedBy   *string `json:"performed_by"`
	Notes         *string `json:"notes"`
}

type CompleteMaintenanceRequest struct {
	ActualCost         string `json:"actual_cost"` // optional, defaults to parts + labor
	PartsCost          string `json:"parts_cost"`
	LaborCost          string `json:"labor_cost"`
	MileageAtService   *int   `json:"mileage_at_service"`
	NextServiceMileage *int   `json:"next_service_mileage"`
	CompletedDate      string `json:"completed_date"` // optional, defaults to now
	Notes              string `json:"notes"`
}

type MaintenanceFilter struct {
	VehicleID string
	Status    string
	Type      string
	Priority  string
	Search    string
	Page      int
	Limit     int
}

type MaintenanceResponse struct {
	ID                 string  `json:"id"`
	MaintenanceNo      string  `json:"maintenance_no"`
	VehicleID          string  `json:"vehicle_id"`
	VehiclePlate       string  `json:"vehicle_plate,omitempty"`
	Type               string  `json:"type"`
	Description        string  `json:"description"`
	ScheduledDate      string  `json:"scheduled_date"`
	StartedAt          *string `json:"started_at"`
	CompletedDate      *string `json:"completed_date"`
	Status             string  `json:"status"`
	Priority           string  `json:"priority"`
	EstimatedCost      string  `json:"estimated_cost"`
	ActualCost         *string `json:"actual_cost"`
	PartsCost          string  `json:"parts_cost"`
	LaborCost          string  `json:"labor_cost"`
	MileageAtService   *int    `json:"mileage_at_service"`
	NextServiceMileage *int    `json:"next_service_mileage"`
	PerformedBy        string  `json:"performed_by"`
	Notes              string  `json:"notes"`
	CreatedAt          string  `json:"created_at"`
}

// --- Interface ---

type MaintenanceService interface {
	CreateMaintenance(ctx context.Context, req CreateMaintenanceRequest, actorID string) (MaintenanceResponse, error)
	GetMaintenance(ctx context.Context, id string) (MaintenanceResponse, error)
	ListMaintenance(ctx context.Context, filter MaintenanceFilter) ([]MaintenanceResponse, int64, error)
	UpdateMaintenance(ctx context.Context, id string, req UpdateMaintenanceRequest, actorID string) (MaintenanceResponse, error)
	StartMaintenance(ctx context.Context, id string, actorID string) (MaintenanceResponse, error)
	CompleteMaintenance(ctx context.Context, id string, req CompleteMaintenanceRequest, actorID string) (MaintenanceResponse, error)
	CancelMaintenance(ctx context.Context, id string, actorID string) (MaintenanceResponse, error)
	DeleteMaintenance(ctx context.Context, id string, actorID string) error
	// MarkOverdue flips past-due scheduled records to overdue. Called by the
	// cron sweep.
	MarkOverdue(ctx context.Context) (int64, error)
}

type maintenanceService struct {
	maintenanceRepo repository.MaintenanceRepository
	vehicleRepo     repository.VehicleRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	events          EventBroadcaster
}

func NewMaintenanceService(
	maintenanceRepo repository.MaintenanceRepository,
	vehicleRepo repository.VehicleRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventBroadcaster,
) MaintenanceService {
	return &maintenanceService{
		maintenanceRepo: maintenanceRepo,
		vehicleRepo:     vehicleRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		events:          events,
	}
}

// --- Implementation ---

func (s *maintenanceService) CreateMaintenance(ctx context.Context, req CreateMaintenanceRequest, actorID string) (MaintenanceResponse, error) {
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return MaintenanceResponse{}, fmt.Errorf("invalid vehicle_id: %w", ErrValidation)
	}

	scheduledDate, err := parseDate(req.ScheduledDate)
	if err != nil {
		return MaintenanceResponse{}, fmt.Errorf("invalid scheduled_date: %w", ErrValidation)
	}

	estimatedCost, err := parseOptionalAmount(req.EstimatedCost)
	if err != nil {
		return MaintenanceResponse{}, fmt.Errorf("invalid estimated_cost: %w", ErrValidation)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	var record *model.Maintenance
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		vehicle, lockErr := s.vehicleRepo.FindByIDForUpdate(txCtx, vehicleID)
		if lockErr != nil {
			return fmt.Errorf("vehicle not found: %w", ErrNotFound)
		}
		if !vehicle.IsActive {
			return fmt.Errorf("vehicle is not active: %w", ErrConflict)
		}

		record = &model.Maintenance{
			VehicleID:     vehicleID,
			Type:          req.Type,
			Description:   req.Description,
			ScheduledDate: scheduledDate,
			Status:        model.MaintenanceScheduled,
			Priority:      priority,
			EstimatedCost: estimatedCost,
			PerformedBy:   req.PerformedBy,
			Notes:         req.Notes,
			CreatedBy:     parseActor(actorID),
		}

		if createErr := s.createWithUniqueNumber(txCtx, record); createErr != nil {
			return createErr
		}

		// Critical work reserves the vehicle right away instead of waiting
		// for the job to start.
		if priority == model.PriorityCritical && vehicle.Status == model.VehicleAvailable {
			vehicle.Status = model.VehicleMaintenance
			if updateErr := s.vehicleRepo.Update(txCtx, vehicle); updateErr != nil {
				return fmt.Errorf("failed to update vehicle status: %w", updateErr)
			}
		}

		return s.audit(txCtx, actorID, model.ActionCreateMaintenance, record)
	})
	if err != nil {
		return MaintenanceResponse{}, err
	}

	s.broadcast("maintenance.created", record)
	return s.reload(ctx, record.ID)
}

func (s *maintenanceService) createWithUniqueNumber(ctx context.Context, record *model.Maintenance) error {
	var err error
	for i := 0; i < numberMaxRetries; i++ {
		record.MaintenanceNo = generateNumber("MNT")
		err = s.maintenanceRepo.Create(ctx, record)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create maintenance record: %w", err)
		}
	}
	return fmt.Errorf("failed to allocate maintenance number: %w", err)
}

func (s *maintenanceService) GetMaintenance(ctx context.Context, id string) (MaintenanceResponse, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return MaintenanceResponse{}, fmt.Errorf("invalid maintenance id: %w", ErrValidation)
	}
	return s.reload(ctx, recordID)
}

func (s *maintenanceService) ListMaintenance(ctx context.Context, filter MaintenanceFilter) ([]MaintenanceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	records, total, err := s.maintenanceRepo.List(ctx, repository.MaintenanceListFilter{
		VehicleID: filter.VehicleID,
		Status:    filter.Status,
		Type:      filter.Type,
		Priority:  filter.Priority,
		Search:    filter.Search,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch maintenance records: %w", err)
	}

	result := make([]MaintenanceResponse, 0, len(records))
	for _, m := range records {
		result = append(result, toMaintenanceResponse(m))
	}
	return result, total, nil
}

func (s *maintenanceService) UpdateMaintenance(ctx context.Context, id string, req UpdateMaintenanceRequest, actorID string) (MaintenanceResponse, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return MaintenanceResponse{}, fmt.Errorf("invalid maintenance id: %w", ErrValidation)
	}

	if req.Priority != nil && !validPriority(*req.Priority) {
		return MaintenanceResponse{}, fmt.Errorf("priority must be one of: low, medium, high, critical: %w", ErrValidation)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		record, findErr := s.maintenanceRepo.FindByID(txCtx, recordID)
		if findErr != nil {
			return fmt.Errorf("maintenance record not found: %w", ErrNotFound)
		}
		if record.IsTerminal() {
			return fmt.Errorf("cannot update a %s maintenance record: %w", record.Status, ErrConflict)
		}

		if req.Description != nil {
			record.Description = *req.Description
		}
		if req.ScheduledDate != nil {
			scheduled, parseErr := parseDate(*req.ScheduledDate)
			if parseErr != nil {
				return fmt.Errorf("invalid scheduled_date: %w", ErrValidation)
			}
			record.ScheduledDate = scheduled
			// Rescheduling an overdue job makes it scheduled again.
			if record.Status == model.MaintenanceOverdue && scheduled.After(time.Now()) {
				record.Status = model.MaintenanceScheduled
			}
		}
		if req.Priority != nil {
			record.Priority = *req.Priority
		}
		if req.EstimatedCost != nil {
			cost, parseErr := decimal.NewFromString(*req.EstimatedCost)
			if parseErr != nil {
				return fmt.Errorf("invalid estimated_cost: %w", ErrValidation)
			}
			record.EstimatedCost = cost
		}
		if req.PerformedBy != nil {
			record.PerformedBy = *req.PerformedBy
		}
		if req.Notes != nil {
			record.Notes = *req.Notes
		}

		if updateErr := s.maintenanceRepo.Update(txCtx, record); updateErr != nil {
			return fmt.Errorf("failed to update maintenance record: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return MaintenanceResponse{}, err
	}

	return s.reload(ctx, recordID)
}

func (s *maintenanceService) StartMaintenance(ctx context.Context, id string, actorID string) (MaintenanceResponse, error) {
	return s.transition(ctx, id, actorID, model.ActionStartMaintenance, "maintenance.started", func(txCtx context.Context, record *model.Maintenance) error {
		if record.Status != model.MaintenanceScheduled && record.Status != model.MaintenanceOverdue {
			return fmt.Errorf("only a scheduled maintenance can be started (current status %s): %w", record.Status, ErrConflict)
		}

		vehicle, err := s.vehicleRepo.FindByIDForUpdate(txCtx, record.VehicleID)
		if err != nil {
			return fmt.Errorf("vehicle not found: %w", ErrNotFound)
		}
		if vehicle.Status == model.VehicleRented {
			return fmt.Errorf("vehicle is currently rented: %w", ErrConflict)
		}

		now := time.Now()
		record.Status = model.MaintenanceInProgress
		record.StartedAt = &now

		vehicle.Status = model.VehicleMaintenance
		if err := s.vehicleRepo.Update(txCtx, vehicle); err != nil {
			return fmt.Errorf("failed to update vehicle status: %w", err)
		}
		return nil
	})
}

func (s *maintenanceService) CompleteMaintenance(ctx context.Context, id string, req CompleteMaintenanceRequest, actorID string) (MaintenanceResponse, error) {
	partsCost, err := parseOptionalAmount(req.PartsCost)
	if err != nil {
		return MaintenanceResponse{}, fmt.Errorf("invalid parts_cost: %w", ErrValidation)
	}
	laborCost, err := parseOptionalAmount(req.LaborCost)
	if err != nil {
		return MaintenanceResponse{}, fmt.Errorf("invalid labor_cost: %w", ErrValidation)
	}

	actualCost := partsCost.Add(laborCost)
	if req.ActualCost != "" {
		actualCost, err = decimal.NewFromString(req.ActualCost)
		if err != nil {
			return MaintenanceResponse{}, fmt.Errorf("invalid actual_cost: %w", ErrValidation)
		}
	}

	completedDate := time.Now()
	if req.CompletedDate != "" {
		completedDate, err = parseDate(req.CompletedDate)
		if err != nil {
			return MaintenanceResponse{}, fmt.Errorf("invalid completed_date: %w", ErrValidation)
		}
	}

	return s.transition(ctx, id, actorID, model.ActionCompleteMaintenance, "maintenance.completed", func(txCtx context.Context, record *model.Maintenance) error {
		if record.Status != model.MaintenanceInProgress {
			return fmt.Errorf("only an in-progress maintenance can be completed (current status %s): %w", record.Status, ErrConflict)
		}

		vehicle, err := s.vehicleRepo.FindByIDForUpdate(txCtx, record.VehicleID)
		if err != nil {
			return fmt.Errorf("vehicle not found: %w", ErrNotFound)
		}

		record.Status = model.MaintenanceCompleted
		record.CompletedDate = &completedDate
		record.ActualCost = &actualCost
		record.PartsCost = partsCost
		record.LaborCost = laborCost
		record.MileageAtService = req.MileageAtService
		record.NextServiceMileage = req.NextServiceMileage
		record.CompletedBy = parseActor(actorID)
		if req.Notes != "" {
			record.Notes = req.Notes
		}

		vehicle.Status = model.VehicleAvailable
		if req.MileageAtService != nil {
			vehicle.LastServiceMileage = *req.MileageAtService
			if *req.MileageAtService > vehicle.CurrentMileage {
				vehicle.CurrentMileage = *req.MileageAtService
			}
		}
		if req.NextServiceMileage != nil {
			vehicle.NextServiceMileage = *req.NextServiceMileage
		}
		if err := s.vehicleRepo.Update(txCtx, vehicle); err != nil {
			return fmt.Errorf("failed to update vehicle: %w", err)
		}
		return nil
	})
}

func (s *maintenanceService) CancelMaintenance(ctx context.Context, id string, actorID string) (MaintenanceResponse, error) {
	return s.transition(ctx, id, actorID, model.ActionCancelMaintenance, "maintenance.cancelled", func(txCtx context.Context, record *model.Maintenance) error {
		if record.IsTerminal() {
			return fmt.Errorf("maintenance record is already %s: %w", record.Status, ErrConflict)
		}

		vehicle, err := s.vehicleRepo.FindByIDForUpdate(txCtx, record.VehicleID)
		if err != nil {
			return fmt.Errorf("vehicle not found: %w", ErrNotFound)
		}

		record.Status = model.MaintenanceCancelled

		// Release the vehicle if this job was the reason it was held.
		if vehicle.Status == model.VehicleMaintenance {
			vehicle.Status = model.VehicleAvailable
			if err := s.vehicleRepo.Update(txCtx, vehicle); err != nil {
				return fmt.Errorf("failed to update vehicle status: %w", err)
			}
		}
		return nil
	})
}

func (s *maintenanceService) DeleteMaintenance(ctx context.Context, id string, actorID string) error {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid maintenance id: %w", ErrValidation)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		record, findErr := s.maintenanceRepo.FindByID(txCtx, recordID)
		if findErr != nil {
			return fmt.Errorf("maintenance record not found: %w", ErrNotFound)
		}
		if record.Status == model.MaintenanceCompleted {
			return fmt.Errorf("a completed maintenance record cannot be deleted: %w", ErrConflict)
		}

		if deleteErr := s.maintenanceRepo.Delete(txCtx, recordID); deleteErr != nil {
			return fmt.Errorf("failed to delete maintenance record: %w", deleteErr)
		}

		return s.audit(txCtx, actorID, model.ActionDeleteMaintenance, record)
	})
}

func (s *maintenanceService) MarkOverdue(ctx context.Context) (int64, error) {
	marked, err := s.maintenanceRepo.MarkOverdue(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue maintenance: %w", err)
	}
	if marked > 0 {
		log.Printf("Marked %d maintenance record(s) as overdue", marked)
	}
	return marked, nil
}

func (s *maintenanceService) transition(ctx context.Context, id, actorID, action, event string, fn func(txCtx context.Context, record *model.Maintenance) error) (MaintenanceResponse, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return MaintenanceResponse{}, fmt.Errorf("invalid maintenance id: %w", ErrValidation)
	}

	var record *model.Maintenance
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		record, findErr = s.maintenanceRepo.FindByID(txCtx, recordID)
		if findErr != nil {
			return fmt.Errorf("maintenance record not found: %w", ErrNotFound)
		}

		if fnErr := fn(txCtx, record); fnErr != nil {
			return fnErr
		}

		if updateErr := s.maintenanceRepo.Update(txCtx, record); updateErr != nil {
			return fmt.Errorf("failed to update maintenance record: %w", updateErr)
		}

		return s.audit(txCtx, actorID, action, record)
	})
	if err != nil {
		return MaintenanceResponse{}, err
	}

	s.broadcast(event, record)
	return s.reload(ctx, recordID)
}

func (s *maintenanceService) reload(ctx context.Context, id uuid.UUID) (MaintenanceResponse, error) {
	reloaded, err := s.maintenanceRepo.FindByIDWithVehicle(ctx, id)
	if err != nil {
		return MaintenanceResponse{}, fmt.Errorf("maintenance record not found: %w", ErrNotFound)
	}
	return toMaintenanceResponse(*reloaded), nil
}

// audit runs inside the caller's transaction: a failed log entry rolls the
// lifecycle change back with it.
func (s *maintenanceService) audit(ctx context.Context, actorID, action string, record *model.Maintenance) error {
	details, _ := json.Marshal(map[string]interface{}{
		"maintenance_no": record.MaintenanceNo,
		"status":         record.Status,
		"vehicle_id":     record.VehicleID.String(),
		"type":           record.Type,
		"priority":       record.Priority,
	})
	entry := &model.AuditLog{
		UserID:     parseActor(actorID),
		Action:     action,
		EntityID:   record.ID.String(),
		EntityName: record.MaintenanceNo,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *maintenanceService) broadcast(event string, record *model.Maintenance) {
	if s.events == nil || record == nil {
		return
	}
	s.events.BroadcastEvent(event, map[string]interface{}{
		"maintenance_id": record.ID.String(),
		"maintenance_no": record.MaintenanceNo,
		"vehicle_id":     record.VehicleID.String(),
		"status":         record.Status,
	})
}

func validPriority(priority string) bool {
	switch priority {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical:
		return true
	}
	return false
}

// --- Mapping ---

func toMaintenanceResponse(m model.Maintenance) MaintenanceResponse {
	resp := MaintenanceResponse{
		ID:                 m.ID.String(),
		MaintenanceNo:      m.MaintenanceNo,
		VehicleID:          m.VehicleID.String(),
		Type:               m.Type,
		Description:        m.Description,
		ScheduledDate:      m.ScheduledDate.Format(time.RFC3339),
		Status:             m.Status,
		Priority:           m.Priority,
		EstimatedCost:      m.EstimatedCost.StringFixed(2),
		PartsCost:          m.PartsCost.StringFixed(2),
		LaborCost:          m.LaborCost.StringFixed(2),
		MileageAtService:   m.MileageAtService,
		NextServiceMileage: m.NextServiceMileage,
		PerformedBy:        m.PerformedBy,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt.Format(time.RFC3339),
	}
	if m.StartedAt != nil {
		s := m.StartedAt.Format(time.RFC3339)
		resp.StartedAt = &s
	}
	if m.CompletedDate != nil {
		s := m.CompletedDate.Format(time.RFC3339)
		resp.CompletedDate = &s
	}
	if m.ActualCost != nil {
		s := m.ActualCost.StringFixed(2)
		resp.ActualCost = &s
	}
	if m.Vehicle != nil {
		resp.VehiclePlate = m.Vehicle.Plate
	}
	return resp
}
