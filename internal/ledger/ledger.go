// Package ledger keeps bank account and envelope balances consistent with
// the transactions that move them.
//
// Every write to the transactions table goes through Record, Amend or
// Remove, which persist the row and post its balance effects in the
// caller's database transaction. Postings is the pure half: it turns a
// transaction into signed deltas and never touches the database.
package ledger

import (
	"errors"
	"sort"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/metrics"
	"github.com/Willysmile/cash-stuffing/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Target names the kind of balance a posting moves.
type Target string

const (
	TargetAccount  Target = "bank_account"
	TargetEnvelope Target = "envelope"
)

// Posting is a signed change to one balance.
type Posting struct {
	Target Target
	ID     string
	Delta  decimal.Decimal
}

// MoneyPlaces is the number of fraction digits every stored amount carries.
const MoneyPlaces = 2

// CheckCents rejects amounts with more fraction digits than a money column
// stores. Trailing zeros are fine.
func CheckCents(amount decimal.Decimal, field string) error {
	if amount.Equal(amount.Round(MoneyPlaces)) {
		return nil
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, field+" must have at most 2 decimal places")
}

// Postings returns the balance effects of t.
//
//	income      account +amount, envelope +amount
//	expense     account -amount, envelope -amount
//	transfer    account -amount, destination account +amount
//	adjustment  none; balances are set directly by account adjustment
func Postings(t *models.Transaction) ([]Posting, error) {
	if t.Amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount cannot be negative")
	}
	if err := CheckCents(t.Amount, "Amount"); err != nil {
		return nil, err
	}

	switch t.TransactionType {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		delta := t.Amount
		if t.TransactionType == models.TransactionTypeExpense {
			delta = delta.Neg()
		}
		postings := []Posting{{Target: TargetAccount, ID: t.BankAccountID, Delta: delta}}
		if t.EnvelopeID != nil {
			postings = append(postings, Posting{Target: TargetEnvelope, ID: *t.EnvelopeID, Delta: delta})
		}
		return postings, nil

	case models.TransactionTypeTransfer:
		if t.ToBankAccountID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "A transfer requires a destination account")
		}
		if *t.ToBankAccountID == t.BankAccountID {
			return nil, apperrors.ErrSameAccountTransfer
		}
		if t.EnvelopeID != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "A transfer cannot be assigned to an envelope")
		}
		return []Posting{
			{Target: TargetAccount, ID: t.BankAccountID, Delta: t.Amount.Neg()},
			{Target: TargetAccount, ID: *t.ToBankAccountID, Delta: t.Amount},
		}, nil

	case models.TransactionTypeAdjustment:
		return nil, nil

	default:
		return nil, apperrors.ErrInvalidTransactionType
	}
}

// Invert negates every posting.
func Invert(postings []Posting) []Posting {
	inverted := make([]Posting, len(postings))
	for i, p := range postings {
		inverted[i] = Posting{Target: p.Target, ID: p.ID, Delta: p.Delta.Neg()}
	}
	return inverted
}

// Post applies postings inside tx. Rows are locked in a fixed order so two
// concurrent posts touching the same balances cannot deadlock.
func Post(tx *gorm.DB, postings []Posting) error {
	ordered := make([]Posting, len(postings))
	copy(ordered, postings)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Target != ordered[j].Target {
			return ordered[i].Target < ordered[j].Target
		}
		return ordered[i].ID < ordered[j].ID
	})

	for _, p := range ordered {
		if p.Delta.IsZero() {
			continue
		}
		var err error
		switch p.Target {
		case TargetAccount:
			err = postAccount(tx, p.ID, p.Delta)
		case TargetEnvelope:
			err = postEnvelope(tx, p.ID, p.Delta)
		}
		if err != nil {
			return err
		}
	}
	metrics.LedgerPostings.Add(float64(len(ordered)))
	return nil
}

// Record inserts t and applies its postings.
func Record(tx *gorm.DB, t *models.Transaction) error {
	postings, err := Postings(t)
	if err != nil {
		return err
	}
	if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return Post(tx, postings)
}

// Amend replaces current with next. The effects of current are reversed
// from its stored values before the row is rewritten, then next is applied.
func Amend(tx *gorm.DB, current, next *models.Transaction) error {
	previous, err := Postings(current)
	if err != nil {
		return err
	}
	updated, err := Postings(next)
	if err != nil {
		return err
	}

	if err := Post(tx, Invert(previous)); err != nil {
		return err
	}
	next.ID = current.ID
	if err := tx.Omit(clause.Associations).Save(next).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return Post(tx, updated)
}

// Remove reverses t's postings, detaches any wish list items bought with
// it, and deletes the row.
func Remove(tx *gorm.DB, t *models.Transaction) error {
	postings, err := Postings(t)
	if err != nil {
		return err
	}
	if err := Post(tx, Invert(postings)); err != nil {
		return err
	}
	if err := tx.Model(&models.WishListItem{}).
		Where("transaction_id = ?", t.ID).
		Update("transaction_id", nil).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Delete(t).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ForUpdate adds a row lock on PostgreSQL. sqlite serialises writers on
// its own and has no FOR UPDATE syntax.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func postAccount(tx *gorm.DB, id string, delta decimal.Decimal) error {
	var account models.BankAccount
	if err := ForUpdate(tx).Select("id", "current_balance").First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(apperrors.ErrBankAccountNotFound, "Bank account", id)
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Model(&models.BankAccount{}).
		Where("id = ?", id).
		Update("current_balance", account.CurrentBalance.Add(delta)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func postEnvelope(tx *gorm.DB, id string, delta decimal.Decimal) error {
	var envelope models.Envelope
	if err := ForUpdate(tx).Select("id", "current_balance").First(&envelope, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(apperrors.ErrEnvelopeNotFound, "Envelope", id)
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Model(&models.Envelope{}).
		Where("id = ?", id).
		Update("current_balance", envelope.CurrentBalance.Add(delta)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
