package services

import (
	"encoding/json"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, "CREATE_INCOME", "income", "abc", "127.0.0.1", map[string]interface{}{"amount": "10.00"})

	var entry models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("expected audit entry: %v", err)
	}
	if entry.Action != "CREATE_INCOME" || entry.ResourceType != "income" || entry.ResourceID != "abc" {
		t.Errorf("unexpected audit entry: %+v", entry)
	}

	var changes map[string]string
	if err := json.Unmarshal([]byte(entry.Changes), &changes); err != nil {
		t.Fatalf("expected JSON changes, got %q", entry.Changes)
	}
	if changes["amount"] != "10.00" {
		t.Errorf("expected amount change, got %v", changes)
	}
}

func TestGetUserLogs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	for i := 0; i < 5; i++ {
		svc.Log(user.ID, "ADD_FUNDS", "savings_goal", "g", "", nil)
	}
	svc.Log(other.ID, "LOGIN", "user", other.ID, "", nil)

	t.Run("paged", func(t *testing.T) {
		page, err := svc.GetUserLogs(user.ID, pagination.PageRequest{Page: 2, PageSize: 2})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 5 {
			t.Errorf("expected 5 items, got %d", page.TotalItems)
		}
		if page.TotalPages != 3 {
			t.Errorf("expected 3 pages, got %d", page.TotalPages)
		}
		if len(page.Data) != 2 {
			t.Errorf("expected 2 entries on page 2, got %d", len(page.Data))
		}
	})

	t.Run("defaults", func(t *testing.T) {
		page, err := svc.GetUserLogs(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if page.Page != 1 || page.PageSize != 20 {
			t.Errorf("expected default page 1 size 20, got %d/%d", page.Page, page.PageSize)
		}
		if len(page.Data) != 5 {
			t.Errorf("expected 5 entries, got %d", len(page.Data))
		}
		for _, e := range page.Data {
			if e.UserID != user.ID {
				t.Errorf("leaked entry of user %s", e.UserID)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		fresh := testutil.CreateTestUser(t, db)
		page, err := svc.GetUserLogs(fresh.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.Data == nil || len(page.Data) != 0 {
			t.Errorf("expected empty data, got %v", page.Data)
		}
	})
}
