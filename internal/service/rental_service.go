package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fixed pricing parameters
var (
	rentalTaxRate     = decimal.NewFromFloat(0.19) // 19% on the subtotal
	lateFeeMultiplier = decimal.NewFromFloat(1.5)  // daily rate x 1.5 per late day
)

const numberMaxRetries = 3

// --- DTOs ---

type CreateRentalRequest struct {
	CustomerID        string `json:"customer_id" binding:"required"`
	VehicleID         string `json:"vehicle_id" binding:"required"`
	StartDate         string `json:"start_date" binding:"required"`
	EndDate           string `json:"end_date" binding:"required"`
	PickupLocation    string `json:"pickup_location"`
	ReturnLocation    string `json:"return_location"`
	AdditionalCharges string `json:"additional_charges"` // optional, defaults to 0
	DiscountAmount    string `json:"discount_amount"`    // optional, defaults to 0
}

// UpdateRentalRequest patches a non-terminal rental. Only the listed fields
// can change; status, totals, and mileage move through lifecycle transitions.
type UpdateRentalRequest struct {
	StartDate         *string `json:"start_date"`
	EndDate           *string `json:"end_date"`
	PickupLocation    *string `json:"pickup_location"`
	ReturnLocation    *string `json:"return_location"`
	AdditionalCharges *string `json:"additional_charges"`
	DiscountAmount    *string `json:"discount_amount"`
	PaymentStatus     *string `json:"payment_status"`
	DamageNotes       *string `json:"damage_notes"`
}

type StartRentalRequest struct {
	PickupMileage   int  `json:"pickup_mileage" binding:"required"`
	FuelLevelPickup *int `json:"fuel_level_pickup"`
}

type CompleteRentalRequest struct {
	ReturnMileage     int    `json:"return_mileage" binding:"required"`
	FuelLevelReturn   *int   `json:"fuel_level_return"`
	AdditionalCharges string `json:"additional_charges"` // optional extra charges on top of the late fee
	ActualReturnDate  string `json:"actual_return_date"` // optional, defaults to now
	DamageNotes       string `json:"damage_notes"`
}

type CancelRentalRequest struct {
	Reason string `json:"reason"`
}

type RentalFilter struct {
	Status        string
	PaymentStatus string
	CustomerID    string
	VehicleID     string
	Search        string
	Page          int
	Limit         int
}

type RentalResponse struct {
	ID                string  `json:"id"`
	RentalNo          string  `json:"rental_no"`
	CustomerID        string  `json:"customer_id"`
	CustomerName      string  `json:"customer_name,omitempty"`
	VehicleID         string  `json:"vehicle_id"`
	VehiclePlate      string  `json:"vehicle_plate,omitempty"`
	StartDate         string  `json:"start_date"`
	EndDate           string  `json:"end_date"`
	PickupLocation    string  `json:"pickup_location"`
	ReturnLocation    string  `json:"return_location"`
	DailyRate         string  `json:"daily_rate"`
	TotalDays         int     `json:"total_days"`
	Subtotal          string  `json:"subtotal"`
	TaxAmount         string  `json:"tax_amount"`
	AdditionalCharges string  `json:"additional_charges"`
	DiscountAmount    string  `json:"discount_amount"`
	TotalAmount       string  `json:"total_amount"`
	PaymentStatus     string  `json:"payment_status"`
	Status            string  `json:"status"`
	PickupMileage     *int    `json:"pickup_mileage"`
	ReturnMileage     *int    `json:"return_mileage"`
	FuelLevelPickup   *int    `json:"fuel_level_pickup"`
	FuelLevelReturn   *int    `json:"fuel_level_return"`
	ActualReturnDate  *string `json:"actual_return_date"`
	DamageNotes       string  `json:"damage_notes"`
	CancelReason      string  `json:"cancel_reason,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// --- Interface ---

type RentalService interface {
	CreateRental(ctx context.Context, req CreateRentalRequest, actorID string) (RentalResponse, error)
	GetRental(ctx context.Context, id string) (RentalResponse, error)
	ListRentals(ctx context.Context, filter RentalFilter) ([]RentalResponse, int64, error)
	UpdateRental(ctx context.Context, id string, req UpdateRentalRequest, actorID string) (RentalResponse, error)
	ConfirmRental(ctx context.Context, id string, actorID string) (RentalResponse, error)
	StartRental(ctx context.Context, id string, req StartRentalRequest, actorID string) (RentalResponse, error)
	CompleteRental(ctx context.Context, id string, req CompleteRentalRequest, actorID string) (RentalResponse, error)
	CancelRental(ctx context.Context, id string, req CancelRentalRequest, actorID string) (RentalResponse, error)
}

// EventBroadcaster pushes fleet events to connected websocket clients.
// Implemented by the websocket hub; nil disables broadcasting.
type EventBroadcaster interface {
	BroadcastEvent(event string, payload interface{})
}

type rentalService struct {
	rentalRepo   repository.RentalRepository
	vehicleRepo  repository.VehicleRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	events       EventBroadcaster
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	vehicleRepo repository.VehicleRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventBroadcaster,
) RentalService {
	return &rentalService{
		rentalRepo:   rentalRepo,
		vehicleRepo:  vehicleRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		events:       events,
	}
}

// --- Implementation ---

func (s *rentalService) CreateRental(ctx context.Context, req CreateRentalRequest, actorID string) (RentalResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("invalid customer_id: %w", ErrValidation)
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("invalid vehicle_id: %w", ErrValidation)
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("invalid start_date: %w", ErrValidation)
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("invalid end_date: %w", ErrValidation)
	}
	if !startDate.Before(endDate) {
		return RentalResponse{}, fmt.Errorf("start_date must be before end_date: %w", ErrValidation)
	}

	additionalCharges, err := parseOptionalAmount(req.AdditionalCharges)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("invalid additional_charges: %w", ErrValidation)
	}
	discount, err := parseOptionalAmount(req.DiscountAmount)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("invalid discount_amount: %w", ErrValidation)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("customer not found: %w", ErrNotFound)
	}
	if !customer.IsActive {
		return RentalResponse{}, fmt.Errorf("customer is not active: %w", ErrConflict)
	}
	if customer.LicenseExpiry.Before(endDate) {
		return RentalResponse{}, fmt.Errorf("customer license expires before the rental ends: %w", ErrConflict)
	}

	var rental *model.Rental
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Lock the vehicle row so two concurrent bookings of the same
		// vehicle serialize on the conflict check.
		vehicle, lockErr := s.vehicleRepo.FindByIDForUpdate(txCtx, vehicleID)
		if lockErr != nil {
			return fmt.Errorf("vehicle not found: %w", ErrNotFound)
		}
		if !vehicle.IsActive {
			return fmt.Errorf("vehicle is not active: %w", ErrConflict)
		}
		if vehicle.Status != model.VehicleAvailable {
			return fmt.Errorf("vehicle is not available (status %s): %w", vehicle.Status, ErrConflict)
		}

		overlaps, overlapErr := s.rentalRepo.CountOverlapping(txCtx, vehicleID, startDate, endDate, nil)
		if overlapErr != nil {
			return fmt.Errorf("failed to check availability: %w", overlapErr)
		}
		if overlaps > 0 {
			return fmt.Errorf("vehicle already booked for an overlapping period: %w", ErrConflict)
		}

		totalDays := daysBetween(startDate, endDate)
		subtotal := vehicle.DailyRate.Mul(decimal.NewFromInt(int64(totalDays)))
		taxAmount := subtotal.Mul(rentalTaxRate)

		rental = &model.Rental{
			CustomerID:        customerID,
			VehicleID:         vehicleID,
			StartDate:         startDate,
			EndDate:           endDate,
			PickupLocation:    req.PickupLocation,
			ReturnLocation:    req.ReturnLocation,
			DailyRate:         vehicle.DailyRate,
			TotalDays:         totalDays,
			Subtotal:          subtotal,
			TaxAmount:         taxAmount,
			AdditionalCharges: additionalCharges,
			DiscountAmount:    discount,
			PaymentStatus:     model.PaymentPending,
			Status:            model.RentalReserved,
			CreatedBy:         parseActor(actorID),
		}
		rental.RecalculateTotal()

		if createErr := s.createWithUniqueNumber(txCtx, rental); createErr != nil {
			return createErr
		}

		vehicle.Status = model.VehicleRented
		if updateErr := s.vehicleRepo.Update(txCtx, vehicle); updateErr != nil {
			return fmt.Errorf("failed to update vehicle status: %w", updateErr)
		}

		return s.audit(txCtx, actorID, model.ActionCreateRental, rental)
	})
	if err != nil {
		return RentalResponse{}, err
	}

	s.broadcast("rental.created", rental)
	return s.reload(ctx, rental.ID)
}

// createWithUniqueNumber assigns a date-stamped number with a uuid-derived
// suffix and retries on the (rare) unique-constraint collision.
func (s *rentalService) createWithUniqueNumber(ctx context.Context, rental *model.Rental) error {
	var err error
	for i := 0; i < numberMaxRetries; i++ {
		rental.RentalNo = generateNumber("RNT")
		err = s.rentalRepo.Create(ctx, rental)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create rental: %w", err)
		}
	}
	return fmt.Errorf("failed to allocate rental number: %w", err)
}

func (s *rentalService) GetRental(ctx context.Context, id string) (RentalResponse, error) {
	rentalID, err := uuid.Parse(id)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("invalid rental id: %w", ErrValidation)
	}
	return s.reload(ctx, rentalID)
}

func (s *rentalService) ListRentals(ctx context.Context, filter RentalFilter) ([]RentalResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	rentals, total, err := s.rentalRepo.List(ctx, repository.RentalListFilter{
		Status:        filter.Status,
		PaymentStatus: filter.PaymentStatus,
		CustomerID:    filter.CustomerID,
		VehicleID:     filter.VehicleID,
		Search:        filter.Search,
		Page:          filter.Page,
		Limit:         filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch rentals: %w", err)
	}

	result := make([]RentalResponse, 0, len(rentals))
	for _, r := range rentals {
		result = append(result, toRentalResponse(r))
	}
	return result, total, nil
}

func (s *rentalService) UpdateRental(ctx context.Context, id string, req UpdateRentalRequest, actorID string) (RentalResponse, error) {
	rentalID, err := uuid.Parse(id)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("invalid rental id: %w", ErrValidation)
	}

	if req.PaymentStatus != nil && !validPaymentStatus(*req.PaymentStatus) {
		return RentalResponse{}, fmt.Errorf("payment_status must be one of: pending, partial, paid, refunded: %w", ErrValidation)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rental, findErr := s.rentalRepo.FindByID(txCtx, rentalID)
		if findErr != nil {
			return fmt.Errorf("rental not found: %w", ErrNotFound)
		}
		if rental.IsTerminal() {
			return fmt.Errorf("cannot update a %s rental: %w", rental.Status, ErrConflict)
		}

		datesChanged := false
		startDate, endDate := rental.StartDate, rental.EndDate
		if req.StartDate != nil {
			startDate, err = parseDate(*req.StartDate)
			if err != nil {
				return fmt.Errorf("invalid start_date: %w", ErrValidation)
			}
			datesChanged = true
		}
		if req.EndDate != nil {
			endDate, err = parseDate(*req.EndDate)
			if err != nil {
				return fmt.Errorf("invalid end_date: %w", ErrValidation)
			}
			datesChanged = true
		}

		if datesChanged {
			if !startDate.Before(endDate) {
				return fmt.Errorf("start_date must be before end_date: %w", ErrValidation)
			}
			// Hold the vehicle lock before revalidating availability.
			if _, lockErr := s.vehicleRepo.FindByIDForUpdate(txCtx, rental.VehicleID); lockErr != nil {
				return fmt.Errorf("vehicle not found: %w", ErrNotFound)
			}
			overlaps, overlapErr := s.rentalRepo.CountOverlapping(txCtx, rental.VehicleID, startDate, endDate, &rental.ID)
			if overlapErr != nil {
				return fmt.Errorf("failed to check availability: %w", overlapErr)
			}
			if overlaps > 0 {
				return fmt.Errorf("vehicle already booked for an overlapping period: %w", ErrConflict)
			}

			rental.StartDate = startDate
			rental.EndDate = endDate
			rental.TotalDays = daysBetween(startDate, endDate)
			rental.Subtotal = rental.DailyRate.Mul(decimal.NewFromInt(int64(rental.TotalDays)))
			rental.TaxAmount = rental.Subtotal.Mul(rentalTaxRate)
		}

		if req.PickupLocation != nil {
			rental.PickupLocation = *req.PickupLocation
		}
		if req.ReturnLocation != nil {
			rental.ReturnLocation = *req.ReturnLocation
		}
		if req.AdditionalCharges != nil {
			charges, parseErr := decimal.NewFromString(*req.AdditionalCharges)
			if parseErr != nil {
				return fmt.Errorf("invalid additional_charges: %w", ErrValidation)
			}
			rental.AdditionalCharges = charges
		}
		if req.DiscountAmount != nil {
			discount, parseErr := decimal.NewFromString(*req.DiscountAmount)
			if parseErr != nil {
				return fmt.Errorf("invalid discount_amount: %w", ErrValidation)
			}
			rental.DiscountAmount = discount
		}
		if req.PaymentStatus != nil {
			rental.PaymentStatus = *req.PaymentStatus
		}
		if req.DamageNotes != nil {
			rental.DamageNotes = *req.DamageNotes
		}

		rental.RecalculateTotal()

		if updateErr := s.rentalRepo.Update(txCtx, rental); updateErr != nil {
			return fmt.Errorf("failed to update rental: %w", updateErr)
		}

		return s.audit(txCtx, actorID, model.ActionUpdateRental, rental)
	})
	if err != nil {
		return RentalResponse{}, err
	}

	return s.reload(ctx, rentalID)
}

func (s *rentalService) ConfirmRental(ctx context.Context, id string, actorID string) (RentalResponse, error) {
	return s.transition(ctx, id, actorID, model.ActionConfirmRental, "rental.confirmed", func(txCtx context.Context, rental *model.Rental) error {
		if rental.Status != model.RentalReserved {
			return fmt.Errorf("only a reserved rental can be confirmed (current status %s): %w", rental.Status, ErrConflict)
		}
		rental.Status = model.RentalConfirmed
		return nil
	})
}

func (s *rentalService) StartRental(ctx context.Context, id string, req StartRentalRequest, actorID string) (RentalResponse, error) {
	if req.PickupMileage < 0 {
		return RentalResponse{}, fmt.Errorf("pickup_mileage must not be negative: %w", ErrValidation)
	}
	return s.transition(ctx, id, actorID, model.ActionStartRental, "rental.started", func(txCtx context.Context, rental *model.Rental) error {
		if rental.Status != model.RentalConfirmed {
			return fmt.Errorf("only a confirmed rental can be started (current status %s): %w", rental.Status, ErrConflict)
		}

		vehicle, err := s.vehicleRepo.FindByIDForUpdate(txCtx, rental.VehicleID)
		if err != nil {
			return fmt.Errorf("vehicle not found: %w", ErrNotFound)
		}

		rental.Status = model.RentalActive
		rental.PickupMileage = &req.PickupMileage
		rental.FuelLevelPickup = req.FuelLevelPickup

		vehicle.CurrentMileage = req.PickupMileage
		if err := s.vehicleRepo.Update(txCtx, vehicle); err != nil {
			return fmt.Errorf("failed to update vehicle: %w", err)
		}
		return nil
	})
}

func (s *rentalService) CompleteRental(ctx context.Context, id string, req CompleteRentalRequest, actorID string) (RentalResponse, error) {
	extraCharges, err := parseOptionalAmount(req.AdditionalCharges)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("invalid additional_charges: %w", ErrValidation)
	}

	actualReturn := time.Now()
	if req.ActualReturnDate != "" {
		actualReturn, err = parseDate(req.ActualReturnDate)
		if err != nil {
			return RentalResponse{}, fmt.Errorf("invalid actual_return_date: %w", ErrValidation)
		}
	}

	return s.transition(ctx, id, actorID, model.ActionCompleteRental, "rental.completed", func(txCtx context.Context, rental *model.Rental) error {
		if rental.Status != model.RentalActive {
			return fmt.Errorf("only an active rental can be completed (current status %s): %w", rental.Status, ErrConflict)
		}
		if rental.PickupMileage != nil && req.ReturnMileage < *rental.PickupMileage {
			return fmt.Errorf("return_mileage cannot be below pickup mileage: %w", ErrValidation)
		}

		vehicle, err := s.vehicleRepo.FindByIDForUpdate(txCtx, rental.VehicleID)
		if err != nil {
			return fmt.Errorf("vehicle not found: %w", ErrNotFound)
		}

		charges := extraCharges
		if actualReturn.After(rental.EndDate) {
			lateDays := daysBetween(rental.EndDate, actualReturn)
			lateFee := rental.DailyRate.Mul(lateFeeMultiplier).Mul(decimal.NewFromInt(int64(lateDays)))
			charges = charges.Add(lateFee)
		}

		rental.Status = model.RentalCompleted
		rental.ReturnMileage = &req.ReturnMileage
		rental.FuelLevelReturn = req.FuelLevelReturn
		rental.ActualReturnDate = &actualReturn
		rental.AdditionalCharges = rental.AdditionalCharges.Add(charges)
		if req.DamageNotes != "" {
			rental.DamageNotes = req.DamageNotes
		}
		rental.RecalculateTotal()

		vehicle.Status = model.VehicleAvailable
		vehicle.CurrentMileage = req.ReturnMileage
		if err := s.vehicleRepo.Update(txCtx, vehicle); err != nil {
			return fmt.Errorf("failed to update vehicle: %w", err)
		}
		return nil
	})
}

func (s *rentalService) CancelRental(ctx context.Context, id string, req CancelRentalRequest, actorID string) (RentalResponse, error) {
	return s.transition(ctx, id, actorID, model.ActionCancelRental, "rental.cancelled", func(txCtx context.Context, rental *model.Rental) error {
		if rental.IsTerminal() {
			return fmt.Errorf("rental is already %s: %w", rental.Status, ErrConflict)
		}

		vehicle, err := s.vehicleRepo.FindByIDForUpdate(txCtx, rental.VehicleID)
		if err != nil {
			return fmt.Errorf("vehicle not found: %w", ErrNotFound)
		}

		rental.Status = model.RentalCancelled
		rental.CancelReason = req.Reason

		// The update below persists the cancellation before we recount, so
		// the cancelled rental no longer holds the vehicle.
		if err := s.rentalRepo.Update(txCtx, rental); err != nil {
			return fmt.Errorf("failed to update rental: %w", err)
		}

		if vehicle.Status == model.VehicleRented {
			remaining, err := s.rentalRepo.CountActiveByVehicle(txCtx, rental.VehicleID)
			if err != nil {
				return fmt.Errorf("failed to check remaining rentals: %w", err)
			}
			if remaining == 0 {
				vehicle.Status = model.VehicleAvailable
				if err := s.vehicleRepo.Update(txCtx, vehicle); err != nil {
					return fmt.Errorf("failed to update vehicle: %w", err)
				}
			}
		}
		return nil
	})
}

// transition loads the rental, applies fn inside a single transaction, saves,
// and audit-logs the action. fn mutates the rental in place.
func (s *rentalService) transition(ctx context.Context, id, actorID, action, event string, fn func(txCtx context.Context, rental *model.Rental) error) (RentalResponse, error) {
	rentalID, err := uuid.Parse(id)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("invalid rental id: %w", ErrValidation)
	}

	var rental *model.Rental
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		rental, findErr = s.rentalRepo.FindByID(txCtx, rentalID)
		if findErr != nil {
			return fmt.Errorf("rental not found: %w", ErrNotFound)
		}

		if fnErr := fn(txCtx, rental); fnErr != nil {
			return fnErr
		}

		if updateErr := s.rentalRepo.Update(txCtx, rental); updateErr != nil {
			return fmt.Errorf("failed to update rental: %w", updateErr)
		}

		return s.audit(txCtx, actorID, action, rental)
	})
	if err != nil {
		return RentalResponse{}, err
	}

	s.broadcast(event, rental)
	return s.reload(ctx, rentalID)
}

func (s *rentalService) reload(ctx context.Context, id uuid.UUID) (RentalResponse, error) {
	reloaded, err := s.rentalRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return RentalResponse{}, fmt.Errorf("rental not found: %w", ErrNotFound)
	}
	return toRentalResponse(*reloaded), nil
}

// audit runs inside the caller's transaction: a failed log entry rolls the
// lifecycle change back with it.
func (s *rentalService) audit(ctx context.Context, actorID, action string, rental *model.Rental) error {
	details, _ := json.Marshal(map[string]interface{}{
		"rental_no":    rental.RentalNo,
		"status":       rental.Status,
		"vehicle_id":   rental.VehicleID.String(),
		"customer_id":  rental.CustomerID.String(),
		"total_amount": rental.TotalAmount.StringFixed(2),
	})
	entry := &model.AuditLog{
		UserID:     parseActor(actorID),
		Action:     action,
		EntityID:   rental.ID.String(),
		EntityName: rental.RentalNo,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *rentalService) broadcast(event string, rental *model.Rental) {
	if s.events == nil || rental == nil {
		return
	}
	s.events.BroadcastEvent(event, map[string]interface{}{
		"rental_id":  rental.ID.String(),
		"rental_no":  rental.RentalNo,
		"vehicle_id": rental.VehicleID.String(),
		"status":     rental.Status,
	})
}

// --- Helpers ---

// daysBetween returns the billed day count between two instants, rounding
// any partial day up.
func daysBetween(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// parseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func parseOptionalAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}

func parseActor(actorID string) *uuid.UUID {
	id, err := uuid.Parse(actorID)
	if err != nil {
		return nil
	}
	return &id
}

func validPaymentStatus(status string) bool {
	switch status {
	case model.PaymentPending, model.PaymentPartial, model.PaymentPaid, model.PaymentRefunded:
		return true
	}
	return false
}

// generateNumber builds a PREFIX-YYYYMMDD-XXXXXX human-readable identifier.
// The suffix comes from a fresh uuid, so collisions are only possible within
// the same day and are caught by the unique index.
func generateNumber(prefix string) string {
	suffix := strings.ToUpper(uuid.New().String()[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), suffix)
}

// --- Mapping ---

func toRentalResponse(r model.Rental) RentalResponse {
	resp := RentalResponse{
		ID:                r.ID.String(),
		RentalNo:          r.RentalNo,
		CustomerID:        r.CustomerID.String(),
		VehicleID:         r.VehicleID.String(),
		StartDate:         r.StartDate.Format(time.RFC3339),
		EndDate:           r.EndDate.Format(time.RFC3339),
		PickupLocation:    r.PickupLocation,
		ReturnLocation:    r.ReturnLocation,
		DailyRate:         r.DailyRate.StringFixed(2),
		TotalDays:         r.TotalDays,
		Subtotal:          r.Subtotal.StringFixed(2),
		TaxAmount:         r.TaxAmount.StringFixed(2),
		AdditionalCharges: r.AdditionalCharges.StringFixed(2),
		DiscountAmount:    r.DiscountAmount.StringFixed(2),
		TotalAmount:       r.TotalAmount.StringFixed(2),
		PaymentStatus:     r.PaymentStatus,
		Status:            r.Status,
		PickupMileage:     r.PickupMileage,
		ReturnMileage:     r.ReturnMileage,
		FuelLevelPickup:   r.FuelLevelPickup,
		FuelLevelReturn:   r.FuelLevelReturn,
		DamageNotes:       r.DamageNotes,
		CancelReason:      r.CancelReason,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
	if r.ActualReturnDate != nil {
		s := r.ActualReturnDate.Format(time.RFC3339)
		resp.ActualReturnDate = &s
	}
	if r.Customer != nil {
		resp.CustomerName = r.Customer.FirstName + " " + r.Customer.LastName
	}
	if r.Vehicle != nil {
		resp.VehiclePlate = r.Vehicle.Plate
	}
	return resp
}
