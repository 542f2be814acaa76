package services

import (
	"testing"

	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/testutil"
)

func TestGetDashboard(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDashboardService(db)
		user := testutil.CreateTestUser(t, db)

		dashboard, err := svc.GetDashboard(user.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, dashboard.TotalBalance, "0", "total balance")
		testutil.AssertDecimal(t, dashboard.Unallocated, "0", "unallocated")
		if dashboard.AccountCount != 0 || dashboard.EnvelopeCount != 0 || dashboard.TransactionCount != 0 {
			t.Errorf("expected zero counts, got %+v", dashboard)
		}
	})

	t.Run("totals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDashboardService(db)
		f := newLedgerFixture(t, db, "1000.50", "300.25")
		testutil.CreateTestBankAccount(t, db, f.user.ID, "200")
		testutil.CreateTestEnvelope(t, db, f.user.ID, nil, "100")
		testutil.CreateTestTransaction(t, db, f.user.ID, f.account.ID, f.category.ID, models.TransactionTypeExpense, "0.50")

		closed := testutil.CreateTestBankAccount(t, db, f.user.ID, "5000")
		if err := db.Model(closed).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate account: %v", err)
		}

		newLedgerFixture(t, db, "9999", "9999")

		dashboard, err := svc.GetDashboard(f.user.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, dashboard.TotalBalance, "1200", "total balance")
		testutil.AssertDecimal(t, dashboard.TotalEnvelopeBalance, "400.25", "envelope balance")
		testutil.AssertDecimal(t, dashboard.Unallocated, "799.75", "unallocated")
		if dashboard.AccountCount != 2 {
			t.Errorf("expected 2 active accounts, got %d", dashboard.AccountCount)
		}
		if dashboard.EnvelopeCount != 2 {
			t.Errorf("expected 2 envelopes, got %d", dashboard.EnvelopeCount)
		}
		if dashboard.TransactionCount != 1 {
			t.Errorf("expected 1 transaction, got %d", dashboard.TransactionCount)
		}
	})
}
