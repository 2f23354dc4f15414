package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VehicleStatus enum constants
const (
	VehicleAvailable   = "available"
	VehicleRented      = "rented"
	VehicleMaintenance = "maintenance"
	VehicleInactive    = "inactive"
)

// VehicleType enum constants
const (
	VehicleTypeSedan     = "sedan"
	VehicleTypeSUV       = "suv"
	VehicleTypeVan       = "van"
	VehicleTypePickup    = "pickup"
	VehicleTypeHatchback = "hatchback"
)

// FuelType enum constants
const (
	FuelGasoline = "gasoline"
	FuelDiesel   = "diesel"
	FuelHybrid   = "hybrid"
	FuelElectric = "electric"
)

// Transmission enum constants
const (
	TransmissionManual    = "manual"
	TransmissionAutomatic = "automatic"
)

// Vehicle represents a fleet unit available for rental.
// Status is owned by the rental and maintenance lifecycles; it is never
// patched directly through a vehicle update request.
type Vehicle struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Plate              string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"plate"`
	Make               string          `gorm:"type:varchar(100);not null" json:"make"`
	Model              string          `gorm:"type:varchar(100);not null" json:"model"`
	Year               int             `gorm:"not null" json:"year"`
	Type               string          `gorm:"type:varchar(20);not null;index" json:"type"`         // sedan, suv, van, pickup, hatchback
	FuelType           string          `gorm:"type:varchar(20);not null" json:"fuel_type"`          // gasoline, diesel, hybrid, electric
	Transmission       string          `gorm:"type:varchar(20);not null" json:"transmission"`       // manual, automatic
	Seats              int             `gorm:"default:5" json:"seats"`
	Color              string          `gorm:"type:varchar(50)" json:"color"`
	DailyRate          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"daily_rate"`
	CurrentMileage     int             `gorm:"default:0" json:"current_mileage"`
	LastServiceMileage int             `gorm:"default:0" json:"last_service_mileage"`
	NextServiceMileage int             `gorm:"default:0" json:"next_service_mileage"`
	Status             string          `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	Notes              string          `gorm:"type:text" json:"notes"`
	IsActive           bool            `gorm:"default:true" json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}
