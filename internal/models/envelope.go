package models

import (
	"time"

	"github.com/Willysmile/cash-stuffing/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Envelope is a named budget bucket. A nil BankAccountID marks a cash envelope.
// CurrentBalance starts at zero and moves through transactions,
// reallocations and direct adjustments.
type Envelope struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index" json:"user_id"`
	BankAccountID  *string         `gorm:"type:uuid;index" json:"bank_account_id"`
	CategoryID     *string         `gorm:"type:uuid;index" json:"category_id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Description    string          `json:"description"`
	TargetAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"target_amount"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_balance"`
	Color          string          `gorm:"size:7" json:"color"`
	Icon           string          `gorm:"size:50" json:"icon"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
}

// IsCash reports whether the envelope holds physical cash.
func (e *Envelope) IsCash() bool {
	return e.BankAccountID == nil
}

// EnvelopeHistory is an append-only record of a direct envelope adjustment.
// Rows are never updated and carry no soft-delete column.
type EnvelopeHistory struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	EnvelopeID   string          `gorm:"type:uuid;not null;index" json:"envelope_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance_after"`
	CreatedAt    time.Time       `gorm:"not null;index" json:"created_at"`
}

// TableName keeps the singular table name used by the migrations.
func (EnvelopeHistory) TableName() string {
	return "envelope_history"
}

// BeforeCreate assigns the id and timestamp.
func (h *EnvelopeHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	return nil
}
