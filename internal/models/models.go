// Package models defines the gorm models persisted by the API.
//
// Money columns use decimal.Decimal stored as NUMERIC(12,2). Every
// user-owned row carries UserID; rows without it (EnvelopeHistory,
// WishListItem) are only reachable through their owning parent.
package models

import (
	"time"

	"github.com/Willysmile/cash-stuffing/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// All returns every model, in dependency order, for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&BankAccount{},
		&Category{},
		&Envelope{},
		&EnvelopeHistory{},
		&Payee{},
		&Transaction{},
		&WishList{},
		&WishListItem{},
		&AuditLog{},
	}
}
