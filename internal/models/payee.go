package models

// Payee is a counterparty, unique by name per user.
type Payee struct {
	Base
	UserID string `gorm:"type:uuid;not null;index:idx_payees_user_name" json:"user_id"`
	Name   string `gorm:"size:100;not null;index:idx_payees_user_name" json:"name"`
}
