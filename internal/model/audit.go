package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateVehicle  = "CREATE_VEHICLE"
	ActionUpdateVehicle  = "UPDATE_VEHICLE"
	ActionDeleteVehicle  = "DELETE_VEHICLE"
	ActionCreateCustomer = "CREATE_CUSTOMER"
	ActionUpdateCustomer = "UPDATE_CUSTOMER"
	ActionDeleteCustomer = "DELETE_CUSTOMER"

	// Rental lifecycle actions
	ActionCreateRental   = "CREATE_RENTAL"
	ActionConfirmRental  = "CONFIRM_RENTAL"
	ActionStartRental    = "START_RENTAL"
	ActionCompleteRental = "COMPLETE_RENTAL"
	ActionCancelRental   = "CANCEL_RENTAL"
	ActionUpdateRental   = "UPDATE_RENTAL"

	// Maintenance lifecycle actions
	ActionCreateMaintenance   = "CREATE_MAINTENANCE"
	ActionStartMaintenance    = "START_MAINTENANCE"
	ActionCompleteMaintenance = "COMPLETE_MAINTENANCE"
	ActionCancelMaintenance   = "CANCEL_MAINTENANCE"
	ActionDeleteMaintenance   = "DELETE_MAINTENANCE"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/number)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
