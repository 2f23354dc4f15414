package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaintenanceStatus enum constants
const (
	MaintenanceScheduled  = "scheduled"
	MaintenanceInProgress = "in_progress"
	MaintenanceCompleted  = "completed"
	MaintenanceCancelled  = "cancelled"
	MaintenanceOverdue    = "overdue"
)

// MaintenanceType enum constants
const (
	MaintenanceTypePreventive = "preventive"
	MaintenanceTypeCorrective = "corrective"
	MaintenanceTypePredictive = "predictive"
	MaintenanceTypeScheduled  = "scheduled"
)

// MaintenancePriority enum constants
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Maintenance represents a service record for a vehicle. A completed record
// can never be deleted. A scheduled record past its ScheduledDate is marked
// overdue by the periodic sweep.
type Maintenance struct {
	ID                 uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MaintenanceNo      string           `gorm:"type:varchar(30);uniqueIndex;not null" json:"maintenance_no"`
	VehicleID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle            *Vehicle         `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Type               string           `gorm:"type:varchar(20);not null;index" json:"type"` // preventive, corrective, predictive, scheduled
	Description        string           `gorm:"type:text" json:"description"`
	ScheduledDate      time.Time        `gorm:"not null;index" json:"scheduled_date"`
	StartedAt          *time.Time       `json:"started_at"`
	CompletedDate      *time.Time       `json:"completed_date"`
	Status             string           `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Priority           string           `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"` // low, medium, high, critical
	EstimatedCost      decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"estimated_cost"`
	ActualCost         *decimal.Decimal `gorm:"type:decimal(18,4)" json:"actual_cost"`
	PartsCost          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"parts_cost"`
	LaborCost          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"labor_cost"`
	MileageAtService   *int             `json:"mileage_at_service"`
	NextServiceMileage *int             `json:"next_service_mileage"`
	PerformedBy        string           `gorm:"type:varchar(255)" json:"performed_by"` // technician or workshop name
	Notes              string           `gorm:"type:text" json:"notes"`
	CreatedBy          *uuid.UUID       `gorm:"type:uuid" json:"created_by"`
	Creator            *User            `gorm:"foreignKey:CreatedBy" json:"-"`
	CompletedBy        *uuid.UUID       `gorm:"type:uuid" json:"completed_by"`
	Completer          *User            `gorm:"foreignKey:CompletedBy" json:"-"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// IsTerminal reports whether the record is in a final state.
func (m *Maintenance) IsTerminal() bool {
	return m.Status == MaintenanceCompleted || m.Status == MaintenanceCancelled
}
