package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/Willysmile/cash-stuffing/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern for a substring
// search. Wildcards in search match literally. Use it with containsClause.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// containsClause compares LOWER(column) against a containsPattern argument.
func containsClause(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}

func applyBankAccountFilters(q *gorm.DB, f BankAccountFilter) *gorm.DB {
	if f.AccountType != nil {
		q = q.Where("account_type = ?", *f.AccountType)
	}
	if f.Currency != nil {
		q = q.Where("currency = ?", strings.ToUpper(*f.Currency))
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if strings.TrimSpace(f.Search) != "" {
		q = q.Where(containsClause("name"), containsPattern(f.Search))
	}
	return q
}

func applyCategoryFilters(q *gorm.DB, f CategoryFilter) *gorm.DB {
	switch {
	case f.ParentID != nil:
		q = q.Where("parent_id = ?", *f.ParentID)
	case f.RootsOnly:
		q = q.Where("parent_id IS NULL")
	}
	if strings.TrimSpace(f.Search) != "" {
		q = q.Where(containsClause("name"), containsPattern(f.Search))
	}
	return q
}

func applyEnvelopeFilters(q *gorm.DB, f EnvelopeFilter) *gorm.DB {
	switch {
	case f.BankAccountID != nil:
		q = q.Where("bank_account_id = ?", *f.BankAccountID)
	case f.CashOnly:
		q = q.Where("bank_account_id IS NULL")
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if strings.TrimSpace(f.Search) != "" {
		q = q.Where(containsClause("name"), containsPattern(f.Search))
	}
	return q
}

// applyTransactionFilters ANDs every set field of f onto q. The account
// filter matches either side of a transfer. Search looks at the
// description and the payee name.
func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.BankAccountID != nil {
		q = q.Where("(bank_account_id = ? OR to_bank_account_id = ?)", *f.BankAccountID, *f.BankAccountID)
	}
	if f.EnvelopeID != nil {
		q = q.Where("envelope_id = ?", *f.EnvelopeID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.PayeeID != nil {
		q = q.Where("payee_id = ?", *f.PayeeID)
	}
	if f.Type != nil {
		q = q.Where("transaction_type = ?", *f.Type)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", *f.Priority)
	}
	if f.IsRecurring != nil {
		q = q.Where("is_recurring = ?", *f.IsRecurring)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", normalizeDate(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", normalizeDate(*f.ToDate))
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if strings.TrimSpace(f.Search) != "" {
		pattern := containsPattern(f.Search)
		q = q.Where(
			"("+containsClause("description")+" OR payee_id IN (?))",
			pattern,
			q.Session(&gorm.Session{NewDB: true}).
				Model(&models.Payee{}).
				Select("id").
				Where(containsClause("name"), pattern),
		)
	}
	return q
}

func applyWishListFilters(q *gorm.DB, f WishListFilter) *gorm.DB {
	if f.ListType != nil {
		q = q.Where("list_type = ?", *f.ListType)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	return q
}
