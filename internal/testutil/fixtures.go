package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Willysmile/cash-stuffing/internal/ledger"
	"github.com/Willysmile/cash-stuffing/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBankAccount creates a checking account whose initial and
// current balance are both balance.
func CreateTestBankAccount(t *testing.T, db *gorm.DB, userID string, balance string) *models.BankAccount {
	t.Helper()

	account := &models.BankAccount{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Account %d", nextID()),
		AccountType:    "checking",
		InitialBalance: Dec(balance),
		CurrentBalance: Dec(balance),
		Currency:       models.DefaultCurrency,
		IsActive:       true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test bank account: %v", err)
	}
	return account
}

// CreateTestCategory creates a top-level category.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestSubcategory(t, db, userID, nil)
}

// CreateTestSubcategory creates a category under parentID (nil for a root).
func CreateTestSubcategory(t *testing.T, db *gorm.DB, userID string, parentID *string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:   userID,
		ParentID: parentID,
		Name:     fmt.Sprintf("Test Category %d", nextID()),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestEnvelope creates an envelope holding balance. A nil accountID
// makes it a cash envelope.
func CreateTestEnvelope(t *testing.T, db *gorm.DB, userID string, accountID *string, balance string) *models.Envelope {
	t.Helper()

	envelope := &models.Envelope{
		UserID:         userID,
		BankAccountID:  accountID,
		Name:           fmt.Sprintf("Test Envelope %d", nextID()),
		TargetAmount:   Dec("500"),
		CurrentBalance: Dec(balance),
		IsActive:       true,
	}
	if err := db.Create(envelope).Error; err != nil {
		t.Fatalf("failed to create test envelope: %v", err)
	}
	return envelope
}

// CreateTestPayee creates a payee with a unique name.
func CreateTestPayee(t *testing.T, db *gorm.DB, userID string) *models.Payee {
	t.Helper()

	payee := &models.Payee{
		UserID: userID,
		Name:   fmt.Sprintf("Test Payee %d", nextID()),
	}
	if err := db.Create(payee).Error; err != nil {
		t.Fatalf("failed to create test payee: %v", err)
	}
	return payee
}

// CreateTestTransaction records a transaction through the ledger so the
// account and envelope balances reflect it.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID, categoryID string, txType models.TransactionType, amount string) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		UserID:          userID,
		BankAccountID:   accountID,
		CategoryID:      categoryID,
		TransactionType: txType,
		Amount:          Dec(amount),
		Date:            time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Record(tx, txn)
	}); err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestWishList creates an active mixed wish list.
func CreateTestWishList(t *testing.T, db *gorm.DB, userID string) *models.WishList {
	t.Helper()

	list := &models.WishList{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Wish List %d", nextID()),
		ListType: models.WishListTypeMixed,
		Status:   models.WishListStatusActive,
	}
	if err := db.Create(list).Error; err != nil {
		t.Fatalf("failed to create test wish list: %v", err)
	}
	return list
}

// CreateTestWishListItem adds an item priced at price x quantity.
func CreateTestWishListItem(t *testing.T, db *gorm.DB, wishListID string, price string, quantity int, status models.ItemStatus) *models.WishListItem {
	t.Helper()

	item := &models.WishListItem{
		WishListID: wishListID,
		Name:       fmt.Sprintf("Test Item %d", nextID()),
		Price:      Dec(price),
		Quantity:   quantity,
		Priority:   models.ItemPriorityWanted,
		Status:     status,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test wish list item: %v", err)
	}
	return item
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}
