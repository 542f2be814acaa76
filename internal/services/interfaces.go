package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// BankAccountInput holds the fields for creating a bank account.
type BankAccountInput struct {
	Name           string
	AccountType    string
	InitialBalance decimal.Decimal
	Currency       string
	Color          string
	Icon           string
}

// BankAccountUpdateFields holds optional fields for updating a bank account.
// Balances are never updated through this path.
type BankAccountUpdateFields struct {
	Name        *string
	AccountType *string
	Color       *string
	Icon        *string
	IsActive    *bool
}

// BankAccountFilter holds optional filter parameters for listing bank accounts.
type BankAccountFilter struct {
	AccountType *string
	Currency    *string
	IsActive    *bool
	Search      string
}

// BalanceChange describes a direct rewrite of an account balance.
type BalanceChange struct {
	Account         *models.BankAccount `json:"bank_account"`
	PreviousBalance decimal.Decimal     `json:"previous_balance"`
	Difference      decimal.Decimal     `json:"difference"`
}

// BankAccountServicer defines the contract for bank-account business logic.
type BankAccountServicer interface {
	CreateBankAccount(userID string, input BankAccountInput) (*models.BankAccount, error)
	GetUserBankAccounts(userID string, page pagination.PageRequest, filter BankAccountFilter) (*pagination.PageResponse[models.BankAccount], error)
	GetBankAccountByID(userID, accountID string) (*models.BankAccount, error)
	UpdateBankAccount(userID, accountID string, fields BankAccountUpdateFields) (*models.BankAccount, error)
	AdjustBalance(userID, accountID string, newBalance decimal.Decimal) (*BalanceChange, error)
	RecalculateBalance(userID, accountID string) (*BalanceChange, error)
	DeleteBankAccount(userID, accountID string) error
}

// CategoryInput holds the fields for creating a category.
type CategoryInput struct {
	Name      string
	ParentID  *string
	Color     string
	Icon      string
	IsDefault bool
	SortOrder int
}

// CategoryUpdateFields holds optional fields for updating a category.
// ParentID uses a double pointer: nil leaves it, a pointer to nil clears it.
type CategoryUpdateFields struct {
	Name      *string
	ParentID  **string
	Color     *string
	Icon      *string
	IsDefault *bool
	SortOrder *int
}

// CategoryFilter holds optional filter parameters for listing categories.
type CategoryFilter struct {
	ParentID  *string
	RootsOnly bool
	Search    string
}

// CategoryNode is one category with its children, as returned by the tree endpoint.
type CategoryNode struct {
	models.Category
	Children []*CategoryNode `json:"children"`
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, input CategoryInput) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest, filter CategoryFilter) (*pagination.PageResponse[models.Category], error)
	GetCategoryTree(userID string) ([]*CategoryNode, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// EnvelopeInput holds the fields for creating an envelope.
type EnvelopeInput struct {
	Name          string
	Description   string
	BankAccountID *string
	CategoryID    *string
	TargetAmount  decimal.Decimal
	Color         string
	Icon          string
}

// EnvelopeUpdateFields holds optional fields for updating an envelope.
// The balance is only moved by transactions, reallocations and adjustments.
type EnvelopeUpdateFields struct {
	Name          *string
	Description   *string
	BankAccountID **string
	CategoryID    **string
	TargetAmount  *decimal.Decimal
	Color         *string
	Icon          *string
	IsActive      *bool
}

// EnvelopeFilter holds optional filter parameters for listing envelopes.
type EnvelopeFilter struct {
	BankAccountID *string
	CashOnly      bool
	CategoryID    *string
	IsActive      *bool
	Search        string
}

// Reallocation is the result of moving money between two envelopes.
type Reallocation struct {
	From   *models.Envelope `json:"from_envelope"`
	To     *models.Envelope `json:"to_envelope"`
	Amount decimal.Decimal  `json:"amount"`
}

// EnvelopeServicer defines the contract for envelope-related business logic.
type EnvelopeServicer interface {
	CreateEnvelope(userID string, input EnvelopeInput) (*models.Envelope, error)
	GetUserEnvelopes(userID string, page pagination.PageRequest, filter EnvelopeFilter) (*pagination.PageResponse[models.Envelope], error)
	GetEnvelopeByID(userID, envelopeID string) (*models.Envelope, error)
	UpdateEnvelope(userID, envelopeID string, fields EnvelopeUpdateFields) (*models.Envelope, error)
	DeleteEnvelope(userID, envelopeID string) error
	AdjustEnvelope(userID, envelopeID string, amount decimal.Decimal, direction int) (*models.Envelope, *models.EnvelopeHistory, error)
	GetEnvelopeHistory(userID, envelopeID string, limit int) ([]models.EnvelopeHistory, error)
	Reallocate(userID, fromID, toID string, amount decimal.Decimal) (*Reallocation, error)
}

// PayeeServicer defines the contract for payee-related business logic.
type PayeeServicer interface {
	CreatePayee(userID, name string) (*models.Payee, error)
	GetUserPayees(userID string, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Payee], error)
	GetPayeeByID(userID, payeeID string) (*models.Payee, error)
	UpdatePayee(userID, payeeID, name string) (*models.Payee, error)
	DeletePayee(userID, payeeID string) error
}

// TransactionInput holds the fields for recording a transaction.
type TransactionInput struct {
	BankAccountID   string
	ToBankAccountID *string
	EnvelopeID      *string
	CategoryID      string
	PayeeID         *string
	Amount          decimal.Decimal
	TransactionType models.TransactionType
	Date            time.Time
	Description     string
	Priority        *models.TransactionPriority
	IsRecurring     bool
}

// TransactionUpdateFields holds optional fields for updating a transaction.
// Double pointers distinguish "leave as is" (nil) from "clear" (pointer to nil).
type TransactionUpdateFields struct {
	BankAccountID   *string
	ToBankAccountID **string
	EnvelopeID      **string
	CategoryID      *string
	PayeeID         **string
	Amount          *decimal.Decimal
	TransactionType *models.TransactionType
	Date            *time.Time
	Description     *string
	Priority        **models.TransactionPriority
	IsRecurring     *bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
// All set fields are combined with AND.
type TransactionFilter struct {
	BankAccountID *string
	EnvelopeID    *string
	CategoryID    *string
	PayeeID       *string
	Type          *models.TransactionType
	Priority      *models.TransactionPriority
	IsRecurring   *bool
	FromDate      *time.Time
	ToDate        *time.Time
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	Search        string
}

// TransactionSummary aggregates income and expenses over a date range.
type TransactionSummary struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int64           `json:"transaction_count"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetBankAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetSummary(userID string, from, to *time.Time) (*TransactionSummary, error)
}

// WishListInput holds the fields for creating a wish list.
type WishListInput struct {
	Name            string
	Description     string
	ListType        models.WishListType
	TargetDate      *time.Time
	BudgetAllocated decimal.NullDecimal
}

// WishListUpdateFields holds optional fields for updating a wish list.
type WishListUpdateFields struct {
	Name            *string
	Description     *string
	ListType        *models.WishListType
	Status          *models.WishListStatus
	TargetDate      **time.Time
	BudgetAllocated *decimal.NullDecimal
}

// WishListFilter holds optional filter parameters for listing wish lists.
type WishListFilter struct {
	ListType *models.WishListType
	Status   *models.WishListStatus
}

// WishListItemInput holds the fields for adding an item to a wish list.
type WishListItemInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	URL         string
	ImageURL    string
	Priority    models.ItemPriority
	Recipient   string
	SortOrder   int
}

// WishListItemUpdateFields holds optional fields for updating an item.
type WishListItemUpdateFields struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	Quantity      *int
	URL           *string
	ImageURL      *string
	Priority      *models.ItemPriority
	Status        *models.ItemStatus
	Recipient     *string
	SortOrder     *int
	PurchasedDate **time.Time
}

// WishListTotals are the derived cost figures of a wish list.
type WishListTotals struct {
	TotalCost         decimal.Decimal `json:"total_cost"`
	PurchasedCost     decimal.Decimal `json:"purchased_cost"`
	RemainingCost     decimal.Decimal `json:"remaining_cost"`
	TotalItems        int             `json:"total_items"`
	PurchasedItems    int             `json:"purchased_items"`
	CompletionPercent float64         `json:"completion_percent"`
}

// WishListDetail is a wish list with its items and totals.
type WishListDetail struct {
	*models.WishList
	Totals WishListTotals `json:"totals"`
}

// WishListServicer defines the contract for wish-list business logic.
type WishListServicer interface {
	CreateWishList(userID string, input WishListInput) (*models.WishList, error)
	GetUserWishLists(userID string, page pagination.PageRequest, filter WishListFilter) (*pagination.PageResponse[models.WishList], error)
	GetWishList(userID, wishListID string) (*WishListDetail, error)
	UpdateWishList(userID, wishListID string, fields WishListUpdateFields) (*models.WishList, error)
	DeleteWishList(userID, wishListID string) error
	AddItem(userID, wishListID string, input WishListItemInput) (*models.WishListItem, error)
	GetItems(userID, wishListID string, status *models.ItemStatus) ([]models.WishListItem, error)
	UpdateItem(userID, itemID string, fields WishListItemUpdateFields) (*models.WishListItem, error)
	DeleteItem(userID, itemID string) error
	MarkPurchased(userID, itemID string, purchasedDate *time.Time, transactionID *string) (*models.WishListItem, error)
}

// Dashboard is the overview of a user's money.
type Dashboard struct {
	TotalBalance         decimal.Decimal `json:"total_balance"`
	TotalEnvelopeBalance decimal.Decimal `json:"total_envelope_balance"`
	Unallocated          decimal.Decimal `json:"unallocated"`
	AccountCount         int64           `json:"account_count"`
	EnvelopeCount        int64           `json:"envelope_count"`
	TransactionCount     int64           `json:"transaction_count"`
}

// DashboardServicer defines the contract for the dashboard overview.
type DashboardServicer interface {
	GetDashboard(userID string) (*Dashboard, error)
}

// ReconcileResult summarises a reconciliation run.
type ReconcileResult struct {
	AccountsChecked   int `json:"accounts_checked"`
	AccountsCorrected int `json:"accounts_corrected"`
}

// ReconcileServicer defines the contract for repairing balance drift across all users.
type ReconcileServicer interface {
	ReconcileAll() (*ReconcileResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
