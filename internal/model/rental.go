package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalStatus enum constants. The lifecycle moves forward only:
// reserved → confirmed → active → completed, with cancellation possible
// from any non-terminal state.
const (
	RentalReserved  = "reserved"
	RentalConfirmed = "confirmed"
	RentalActive    = "active"
	RentalCompleted = "completed"
	RentalCancelled = "cancelled"
)

// PaymentStatus enum constants
const (
	PaymentPending  = "pending"
	PaymentPartial  = "partial"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// ActiveRentalStatuses are the statuses that hold a vehicle: they count for
// the availability-conflict check and block customer/vehicle soft deletion.
var ActiveRentalStatuses = []string{RentalReserved, RentalConfirmed, RentalActive}

// Rental represents one booking of a vehicle by a customer.
// Invariant: TotalAmount = Subtotal + TaxAmount + AdditionalCharges - DiscountAmount.
// Invariant: no two rentals of the same vehicle with an active-state status
// may have overlapping [StartDate, EndDate] intervals (inclusive bounds).
type Rental struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RentalNo          string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"rental_no"`
	CustomerID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer          *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	VehicleID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle           *Vehicle        `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	StartDate         time.Time       `gorm:"not null;index" json:"start_date"`
	EndDate           time.Time       `gorm:"not null;index" json:"end_date"`
	PickupLocation    string          `gorm:"type:varchar(255)" json:"pickup_location"`
	ReturnLocation    string          `gorm:"type:varchar(255)" json:"return_location"`
	DailyRate         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"daily_rate"` // snapshotted from the vehicle at creation
	TotalDays         int             `gorm:"not null" json:"total_days"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	AdditionalCharges decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"additional_charges"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount_amount"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	PaymentStatus     string          `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Status            string          `gorm:"type:varchar(20);not null;default:'reserved';index" json:"status"`
	PickupMileage     *int            `json:"pickup_mileage"`
	ReturnMileage     *int            `json:"return_mileage"`
	FuelLevelPickup   *int            `json:"fuel_level_pickup"` // percentage 0-100
	FuelLevelReturn   *int            `json:"fuel_level_return"`
	ActualReturnDate  *time.Time      `json:"actual_return_date"`
	DamageNotes       string          `gorm:"type:text" json:"damage_notes"`
	CancelReason      string          `gorm:"type:text" json:"cancel_reason"`
	CreatedBy         *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	Creator           *User           `gorm:"foreignKey:CreatedBy" json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the rental is in a final state.
func (r *Rental) IsTerminal() bool {
	return r.Status == RentalCompleted || r.Status == RentalCancelled
}

// RecalculateTotal reapplies the amount invariant after any charge change.
func (r *Rental) RecalculateTotal() {
	r.TotalAmount = r.Subtotal.Add(r.TaxAmount).Add(r.AdditionalCharges).Sub(r.DiscountAmount)
}
