package models

import "github.com/shopspring/decimal"

// DefaultCurrency is applied when an account is created without one.
const DefaultCurrency = "EUR"

// BankAccount is a real-world account. CurrentBalance equals
// InitialBalance plus the signed effects of every live transaction
// touching the account, unless it was adjusted by hand.
type BankAccount struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	AccountType    string          `gorm:"size:50;not null" json:"account_type"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"initial_balance"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_balance"`
	Currency       string          `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	Color          string          `gorm:"size:7" json:"color"`
	Icon           string          `gorm:"size:50" json:"icon"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
}
