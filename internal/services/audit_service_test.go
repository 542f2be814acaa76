package services

import (
	"encoding/json"
	"testing"

	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, AuditReallocateEnvelope, "envelope", missingID, "10.0.0.1", map[string]interface{}{
		"amount": "100.00",
		"to":     "b",
	})

	var entries []models.AuditLog
	if err := db.Where("user_id = ?", user.ID).Find(&entries).Error; err != nil {
		t.Fatalf("failed to load audit log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Action != "REALLOCATE_ENVELOPE" || entry.ResourceType != "envelope" || entry.IPAddress != "10.0.0.1" {
		t.Errorf("unexpected audit entry: %+v", entry)
	}

	var changes map[string]string
	if err := json.Unmarshal([]byte(entry.Changes), &changes); err != nil {
		t.Fatalf("changes should be JSON: %v", err)
	}
	if changes["amount"] != "100.00" {
		t.Errorf("expected amount 100.00 in changes, got %q", changes["amount"])
	}
}

func TestAuditLog_without_changes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, AuditDeletePayee, "payee", missingID, "", nil)

	var entry models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("failed to load audit log: %v", err)
	}
	if entry.Changes != "" {
		t.Errorf("expected empty changes, got %q", entry.Changes)
	}
}
