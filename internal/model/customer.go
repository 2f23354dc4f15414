package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer represents a renter. Soft-deleted customers keep their rental
// history; a customer holding a reserved, confirmed, or active rental cannot
// be deleted.
type Customer struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName      string         `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName       string         `gorm:"type:varchar(100);not null" json:"last_name"`
	Email          string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone          string         `gorm:"type:varchar(50)" json:"phone"`
	DocumentNumber string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"document_number"`
	LicenseNumber  string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_number"`
	LicenseExpiry  time.Time      `gorm:"type:date;not null" json:"license_expiry"`
	Address        string         `gorm:"type:text" json:"address"`
	DateOfBirth    *time.Time     `gorm:"type:date" json:"date_of_birth"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
