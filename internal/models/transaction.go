package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType determines how a transaction moves balances.
type TransactionType string

const (
	TransactionTypeIncome     TransactionType = "income"
	TransactionTypeExpense    TransactionType = "expense"
	TransactionTypeTransfer   TransactionType = "transfer"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// TransactionPriority classifies spending by necessity.
type TransactionPriority string

const (
	PriorityVital    TransactionPriority = "vital"
	PriorityComfort  TransactionPriority = "comfort"
	PriorityPleasure TransactionPriority = "pleasure"
)

// Transaction is one money movement. Amount is always a non-negative
// magnitude; the sign comes from TransactionType.
type Transaction struct {
	Base
	UserID          string               `gorm:"type:uuid;not null;index" json:"user_id"`
	BankAccountID   string               `gorm:"type:uuid;not null;index" json:"bank_account_id"`
	ToBankAccountID *string              `gorm:"type:uuid;index" json:"to_bank_account_id,omitempty"`
	EnvelopeID      *string              `gorm:"type:uuid;index" json:"envelope_id"`
	CategoryID      string               `gorm:"type:uuid;not null;index" json:"category_id"`
	PayeeID         *string              `gorm:"type:uuid;index" json:"payee_id"`
	Amount          decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"amount"`
	TransactionType TransactionType      `gorm:"size:20;not null;index" json:"transaction_type"`
	Date            time.Time            `gorm:"not null;index" json:"date"`
	Description     string               `json:"description"`
	Priority        *TransactionPriority `gorm:"size:20" json:"priority"`
	IsRecurring     bool                 `gorm:"default:false" json:"is_recurring"`

	Payee *Payee `gorm:"foreignKey:PayeeID" json:"payee,omitempty"`
}
