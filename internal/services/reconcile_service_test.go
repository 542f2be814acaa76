package services

import (
	"testing"

	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/testutil"
)

func TestReconcileAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReconcileService(db)

	healthy := newLedgerFixture(t, db, "100", "0")
	testutil.CreateTestTransaction(t, db, healthy.user.ID, healthy.account.ID, healthy.category.ID, models.TransactionTypeIncome, "50")

	drifted := newLedgerFixture(t, db, "300", "0")
	testutil.CreateTestTransaction(t, db, drifted.user.ID, drifted.account.ID, drifted.category.ID, models.TransactionTypeExpense, "40")
	if err := db.Model(drifted.account).Update("current_balance", testutil.Dec("12.34")).Error; err != nil {
		t.Fatalf("failed to corrupt balance: %v", err)
	}

	inactive := testutil.CreateTestBankAccount(t, db, drifted.user.ID, "10")
	if err := db.Model(inactive).Updates(map[string]interface{}{
		"is_active":       false,
		"current_balance": testutil.Dec("99"),
	}).Error; err != nil {
		t.Fatalf("failed to prepare inactive account: %v", err)
	}

	result, err := svc.ReconcileAll()
	testutil.AssertNoError(t, err)

	if result.AccountsChecked != 2 {
		t.Errorf("expected 2 accounts checked, got %d", result.AccountsChecked)
	}
	if result.AccountsCorrected != 1 {
		t.Errorf("expected 1 account corrected, got %d", result.AccountsCorrected)
	}
	if got := accountBalance(t, db, drifted.account.ID); got != "260.00" {
		t.Errorf("expected drifted account repaired to 260.00, got %s", got)
	}
	if got := accountBalance(t, db, healthy.account.ID); got != "150.00" {
		t.Errorf("expected healthy account to stay 150.00, got %s", got)
	}
	if got := accountBalance(t, db, inactive.ID); got != "99.00" {
		t.Errorf("expected inactive account untouched, got %s", got)
	}

	t.Run("second_run_is_clean", func(t *testing.T) {
		result, err := svc.ReconcileAll()
		testutil.AssertNoError(t, err)
		if result.AccountsCorrected != 0 {
			t.Errorf("expected no corrections, got %d", result.AccountsCorrected)
		}
	})
}
