package services

import (
	"testing"

	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/pagination"
	"github.com/Willysmile/cash-stuffing/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, CategoryInput{Name: "Groceries", Color: "#FF0000", Icon: "cart", SortOrder: 3})
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected a generated category ID")
		}
		if cat.Name != "Groceries" {
			t.Errorf("expected name Groceries, got %s", cat.Name)
		}
		if cat.SortOrder != 3 {
			t.Errorf("expected sort order 3, got %d", cat.SortOrder)
		}
		if cat.ParentID != nil {
			t.Errorf("expected a root category, got parent %v", *cat.ParentID)
		}
	})

	t.Run("duplicate_name_same_level", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, CategoryInput{Name: "Food"})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, CategoryInput{Name: "food"})
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_under_different_parents", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		home := testutil.CreateTestCategory(t, db, user.ID)
		car := testutil.CreateTestCategory(t, db, user.ID)

		_, err := svc.CreateCategory(user.ID, CategoryInput{Name: "Insurance", ParentID: &home.ID})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, CategoryInput{Name: "Insurance", ParentID: &car.ID})
		testutil.AssertNoError(t, err)
	})

	t.Run("with_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		parent, err := svc.CreateCategory(user.ID, CategoryInput{Name: "Food"})
		testutil.AssertNoError(t, err)

		child, err := svc.CreateCategory(user.ID, CategoryInput{Name: "Snacks", ParentID: &parent.ID})
		testutil.AssertNoError(t, err)

		if child.ParentID == nil || *child.ParentID != parent.ID {
			t.Errorf("expected parent ID %s, got %v", parent.ID, child.ParentID)
		}
	})

	t.Run("invalid_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		parentID := missingID
		_, err := svc.CreateCategory(user.ID, CategoryInput{Name: "Orphan", ParentID: &parentID})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("parent_of_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		foreign := testutil.CreateTestCategory(t, db, user1.ID)

		_, err := svc.CreateCategory(user2.ID, CategoryInput{Name: "Mine", ParentID: &foreign.ID})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, CategoryInput{Name: "  "})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("duplicate_name_different_users_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user1.ID, CategoryInput{Name: "Salary"})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user2.ID, CategoryInput{Name: "Salary"})
		testutil.AssertNoError(t, err)
	})
}

func TestGetUserCategories(t *testing.T) {
	t.Run("returns_user_categories_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		testutil.CreateTestCategory(t, db, user1.ID)
		testutil.CreateTestCategory(t, db, user1.ID)
		testutil.CreateTestCategory(t, db, user2.ID)

		result, err := svc.GetUserCategories(user1.ID, pagination.PageRequest{}, CategoryFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 categories for user1, got %d", result.TotalItems)
		}
		if len(result.Data) != 2 {
			t.Errorf("expected 2 categories in data, got %d", len(result.Data))
		}
		if result.Limit != pagination.DefaultLimit {
			t.Errorf("expected default limit %d, got %d", pagination.DefaultLimit, result.Limit)
		}
	})

	t.Run("skip_and_limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < 5; i++ {
			testutil.CreateTestCategory(t, db, user.ID)
		}

		result, err := svc.GetUserCategories(user.ID, pagination.PageRequest{Skip: 4, Limit: 2}, CategoryFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 5 {
			t.Errorf("expected 5 total items, got %d", result.TotalItems)
		}
		if len(result.Data) != 1 {
			t.Errorf("expected 1 item after skipping 4, got %d", len(result.Data))
		}
	})

	t.Run("ordered_by_sort_order_then_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		for _, in := range []CategoryInput{
			{Name: "Zoo", SortOrder: 0},
			{Name: "Bills", SortOrder: 2},
			{Name: "Apples", SortOrder: 0},
		} {
			_, err := svc.CreateCategory(user.ID, in)
			testutil.AssertNoError(t, err)
		}

		result, err := svc.GetUserCategories(user.ID, pagination.PageRequest{}, CategoryFilter{})
		testutil.AssertNoError(t, err)

		want := []string{"Apples", "Zoo", "Bills"}
		for i, name := range want {
			if result.Data[i].Name != name {
				t.Errorf("position %d: expected %s, got %s", i, name, result.Data[i].Name)
			}
		}
	})

	t.Run("filters_by_parent_and_search", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		parent, _ := svc.CreateCategory(user.ID, CategoryInput{Name: "Food"})
		_, _ = svc.CreateCategory(user.ID, CategoryInput{Name: "Restaurants", ParentID: &parent.ID})
		_, _ = svc.CreateCategory(user.ID, CategoryInput{Name: "Groceries", ParentID: &parent.ID})
		_, _ = svc.CreateCategory(user.ID, CategoryInput{Name: "Rent"})

		children, err := svc.GetUserCategories(user.ID, pagination.PageRequest{}, CategoryFilter{ParentID: &parent.ID})
		testutil.AssertNoError(t, err)
		if children.TotalItems != 2 {
			t.Errorf("expected 2 children, got %d", children.TotalItems)
		}

		found, err := svc.GetUserCategories(user.ID, pagination.PageRequest{}, CategoryFilter{Search: "R"})
		testutil.AssertNoError(t, err)
		if found.TotalItems != 3 {
			t.Errorf("expected 3 categories matching 'r', got %d", found.TotalItems)
		}

		roots, err := svc.GetUserCategories(user.ID, pagination.PageRequest{}, CategoryFilter{RootsOnly: true})
		testutil.AssertNoError(t, err)
		if roots.TotalItems != 2 {
			t.Errorf("expected 2 root categories, got %d", roots.TotalItems)
		}
	})
}

func TestGetCategoryTree(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)

	food, _ := svc.CreateCategory(user.ID, CategoryInput{Name: "Food", SortOrder: 1})
	_, _ = svc.CreateCategory(user.ID, CategoryInput{Name: "Groceries", ParentID: &food.ID})
	eatingOut, _ := svc.CreateCategory(user.ID, CategoryInput{Name: "Eating out", ParentID: &food.ID})
	_, _ = svc.CreateCategory(user.ID, CategoryInput{Name: "Brunch", ParentID: &eatingOut.ID})
	_, _ = svc.CreateCategory(user.ID, CategoryInput{Name: "Housing", SortOrder: 0})

	tree, err := svc.GetCategoryTree(user.ID)
	testutil.AssertNoError(t, err)

	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	if tree[0].Name != "Housing" || tree[1].Name != "Food" {
		t.Errorf("expected roots [Housing Food], got [%s %s]", tree[0].Name, tree[1].Name)
	}
	if len(tree[1].Children) != 2 {
		t.Fatalf("expected Food to have 2 children, got %d", len(tree[1].Children))
	}
	if tree[1].Children[0].Name != "Eating out" {
		t.Errorf("expected first child 'Eating out', got %s", tree[1].Children[0].Name)
	}
	if len(tree[1].Children[0].Children) != 1 || tree[1].Children[0].Children[0].Name != "Brunch" {
		t.Error("expected Brunch under Eating out")
	}
}

func TestBuildCategoryTree_orphans_become_roots(t *testing.T) {
	gone := "deleted-parent"
	categories := []models.Category{
		{Base: models.Base{ID: "a"}, Name: "A"},
		{Base: models.Base{ID: "b"}, Name: "B", ParentID: &gone},
		{Base: models.Base{ID: "c"}, Name: "C", ParentID: testutil.StrPtr("a")},
	}

	tree := BuildCategoryTree(categories)

	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	if tree[1].ID != "b" {
		t.Errorf("expected orphan b to be a root, got %s", tree[1].ID)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].ID != "c" {
		t.Error("expected c under a")
	}
	if tree[1].Children == nil {
		t.Error("expected leaf children to be an empty slice, not nil")
	}
}

func TestGetCategoryByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestCategory(t, db, user.ID)

		cat, err := svc.GetCategoryByID(user.ID, created.ID)
		testutil.AssertNoError(t, err)

		if cat.ID != created.ID {
			t.Errorf("expected category ID %s, got %s", created.ID, cat.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetCategoryByID(user.ID, missingID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user1.ID)

		_, err := svc.GetCategoryByID(user2.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		name, icon, color := "New Name", "star", "#00FF00"
		updated, err := svc.UpdateCategory(user.ID, cat.ID, CategoryUpdateFields{Name: &name, Icon: &icon, Color: &color})
		testutil.AssertNoError(t, err)

		if updated.Name != "New Name" {
			t.Errorf("expected name 'New Name', got %s", updated.Name)
		}
		if updated.Icon != "star" {
			t.Errorf("expected icon 'star', got %s", updated.Icon)
		}
		if updated.Color != "#00FF00" {
			t.Errorf("expected color '#00FF00', got %s", updated.Color)
		}
	})

	t.Run("self_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		parent := &cat.ID
		_, err := svc.UpdateCategory(user.ID, cat.ID, CategoryUpdateFields{ParentID: &parent})
		testutil.AssertAppError(t, err, "SELF_PARENT_CATEGORY")
	})

	t.Run("descendant_as_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		root := testutil.CreateTestCategory(t, db, user.ID)
		child := testutil.CreateTestSubcategory(t, db, user.ID, &root.ID)
		grandchild := testutil.CreateTestSubcategory(t, db, user.ID, &child.ID)

		parent := &grandchild.ID
		_, err := svc.UpdateCategory(user.ID, root.ID, CategoryUpdateFields{ParentID: &parent})
		testutil.AssertAppError(t, err, "CATEGORY_CYCLE")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		name := "Name"
		_, err := svc.UpdateCategory(user.ID, missingID, CategoryUpdateFields{Name: &name})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("with_valid_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		parent := testutil.CreateTestCategory(t, db, user.ID)
		child := testutil.CreateTestCategory(t, db, user.ID)

		parentID := &parent.ID
		updated, err := svc.UpdateCategory(user.ID, child.ID, CategoryUpdateFields{ParentID: &parentID})
		testutil.AssertNoError(t, err)

		if updated.ParentID == nil || *updated.ParentID != parent.ID {
			t.Errorf("expected parent ID %s, got %v", parent.ID, updated.ParentID)
		}
	})

	t.Run("clear_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		parent := testutil.CreateTestCategory(t, db, user.ID)
		child := testutil.CreateTestSubcategory(t, db, user.ID, &parent.ID)

		var none *string
		updated, err := svc.UpdateCategory(user.ID, child.ID, CategoryUpdateFields{ParentID: &none})
		testutil.AssertNoError(t, err)

		if updated.ParentID != nil {
			t.Errorf("expected parent to be cleared, got %s", *updated.ParentID)
		}
	})

	t.Run("rename_to_sibling_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestCategory(t, db, user.ID)
		second := testutil.CreateTestCategory(t, db, user.ID)

		_, err := svc.UpdateCategory(user.ID, second.ID, CategoryUpdateFields{Name: &first.Name})
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		err := svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.GetCategoryByID(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

		var count int64
		db.Unscoped().Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected soft-deleted record to exist in DB, got count %d", count)
		}
	})

	t.Run("has_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		parent := testutil.CreateTestCategory(t, db, user.ID)
		testutil.CreateTestSubcategory(t, db, user.ID, &parent.ID)

		err := svc.DeleteCategory(user.ID, parent.ID)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")
	})

	t.Run("referenced_by_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestBankAccount(t, db, user.ID, "100")
		cat := testutil.CreateTestCategory(t, db, user.ID)
		testutil.CreateTestTransaction(t, db, user.ID, account.ID, cat.ID, models.TransactionTypeExpense, "10")

		err := svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("unlinks_envelopes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		envelope := testutil.CreateTestEnvelope(t, db, user.ID, nil, "0")
		db.Model(envelope).Update("category_id", cat.ID)

		err := svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertNoError(t, err)

		var stored models.Envelope
		db.First(&stored, "id = ?", envelope.ID)
		if stored.CategoryID != nil {
			t.Errorf("expected envelope category to be cleared, got %s", *stored.CategoryID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.DeleteCategory(user.ID, missingID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user1.ID)

		err := svc.DeleteCategory(user2.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}
