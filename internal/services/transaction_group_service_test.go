package services

import (
	"testing"

	"bukukas/internal/models"
	"bukukas/internal/testutil"
)

func TestListGroups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGroupService(db)

	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
	hayabusa := testutil.CreateTestUserWithRole(t, db, models.RoleHayabusa)

	kas := testutil.CreateTestGroupNamed(t, db, alice.ID, "Kas")
	testutil.CreateTestGroupNamed(t, db, admin.ID, models.SimpaskorGroupName)
	archived := testutil.CreateTestGroupNamed(t, db, alice.ID, "Arsip")
	db.Model(archived).Update("is_active", false)

	testutil.CreateTestTransaction(t, db, alice.ID, kas.ID, models.TransactionTypeIncome, 1000, day(2025, 10, 1))
	testutil.CreateTestTransaction(t, db, alice.ID, kas.ID, models.TransactionTypeExpense, 300, day(2025, 10, 2))
	testutil.CreateTestTransaction(t, db, bob.ID, kas.ID, models.TransactionTypeIncome, 5000, day(2025, 10, 3))

	t.Run("active_groups_with_scoped_statistics", func(t *testing.T) {
		groups, err := svc.ListGroups(actorOf(alice))
		testutil.AssertNoError(t, err)
		if len(groups) != 2 {
			t.Fatalf("expected 2 active groups, got %d", len(groups))
		}
		if groups[0].Name != "Kas" || groups[1].Name != models.SimpaskorGroupName {
			t.Errorf("expected groups ordered by name, got %s, %s", groups[0].Name, groups[1].Name)
		}
		stats := groups[0].Statistics
		if stats.TotalIncome != 1000 || stats.TotalExpense != 300 || stats.NetAmount != 700 || stats.TransactionCount != 2 {
			t.Errorf("unexpected statistics %+v", stats)
		}
		if stats.LastTransaction == nil {
			t.Error("expected last transaction time")
		}
		if !groups[1].IsSimpaskor || groups[0].IsSimpaskor {
			t.Error("expected only Simpaskor to be flagged")
		}
	})

	t.Run("staff_statistics_cover_all_owners", func(t *testing.T) {
		groups, err := svc.ListGroups(actorOf(admin))
		testutil.AssertNoError(t, err)
		if groups[0].Statistics.TransactionCount != 3 || groups[0].Statistics.TotalIncome != 6000 {
			t.Errorf("unexpected statistics %+v", groups[0].Statistics)
		}
	})

	t.Run("hayabusa_sees_no_groups", func(t *testing.T) {
		groups, err := svc.ListGroups(actorOf(hayabusa))
		testutil.AssertNoError(t, err)
		if len(groups) != 0 {
			t.Errorf("expected no groups, got %d", len(groups))
		}
	})
}

func TestGetGroupOptions(t *testing.T) {
	t.Run("seeds_defaults_when_empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		user := testutil.CreateTestUser(t, db)
		groups, err := svc.GetGroupOptions(actorOf(user))
		testutil.AssertNoError(t, err)
		if len(groups) != 3 {
			t.Fatalf("expected 3 default groups, got %d", len(groups))
		}
		for _, g := range groups {
			if g.CreatedBy != user.ID || !g.IsActive || g.Type != models.GroupTypeUniversal {
				t.Errorf("unexpected default group %+v", g)
			}
		}

		again, err := svc.GetGroupOptions(actorOf(user))
		testutil.AssertNoError(t, err)
		if len(again) != 3 {
			t.Errorf("expected defaults to be seeded once, got %d groups", len(again))
		}
	})

	t.Run("existing_groups_returned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestGroupNamed(t, db, user.ID, "Only")
		groups, err := svc.GetGroupOptions(actorOf(user))
		testutil.AssertNoError(t, err)
		if len(groups) != 1 || groups[0].Name != "Only" {
			t.Errorf("expected the existing group only, got %+v", groups)
		}
	})
}

func TestGetGroupByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGroupService(db)

	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	group := testutil.CreateTestGroup(t, db, alice.ID)
	testutil.CreateTestTransaction(t, db, alice.ID, group.ID, models.TransactionTypeIncome, 100, day(2025, 10, 1))
	testutil.CreateTestTransaction(t, db, bob.ID, group.ID, models.TransactionTypeIncome, 900, day(2025, 10, 1))

	t.Run("detail_scoped_to_actor", func(t *testing.T) {
		detail, err := svc.GetGroupByID(actorOf(alice), group.ID)
		testutil.AssertNoError(t, err)
		if len(detail.Transactions) != 1 {
			t.Errorf("expected 1 visible transaction, got %d", len(detail.Transactions))
		}
		if detail.Statistics.TotalIncome != 100 {
			t.Errorf("expected income 100, got %s", detail.Statistics.TotalIncome)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetGroupByID(actorOf(alice), "0190a3c4-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "GROUP_NOT_FOUND")
	})
}

func TestCreateGroup(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		user := testutil.CreateTestUser(t, db)
		group, err := svc.CreateGroup(actorOf(user), GroupInput{Name: "  Acara  "})
		testutil.AssertNoError(t, err)
		if group.Name != "Acara" {
			t.Errorf("expected trimmed name, got %q", group.Name)
		}
		if group.Type != models.GroupTypeUniversal || group.Color != models.DefaultGroupColor || !group.IsActive {
			t.Errorf("unexpected defaults %+v", group)
		}
		if group.CreatedBy != user.ID {
			t.Errorf("expected creator %s, got %s", user.ID, group.CreatedBy)
		}
	})

	t.Run("inactive_on_create", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		user := testutil.CreateTestUser(t, db)
		inactive := false
		group, err := svc.CreateGroup(actorOf(user), GroupInput{Name: "Dormant", IsActive: &inactive})
		testutil.AssertNoError(t, err)

		var reloaded models.TransactionGroup
		db.First(&reloaded, "id = ?", group.ID)
		if reloaded.IsActive {
			t.Error("expected group to be stored inactive")
		}
	})

	t.Run("duplicate_name_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestGroupNamed(t, db, user.ID, "Operasional")
		_, err := svc.CreateGroup(actorOf(user), GroupInput{Name: "operasional"})
		testutil.AssertFieldError(t, err, "name")
	})
}

func TestUpdateGroup(t *testing.T) {
	t.Run("creator_updates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		updated, err := svc.UpdateGroup(actorOf(user), group.ID, GroupInput{Name: "Baru", Color: "#10B981", Type: models.GroupTypeIncome})
		testutil.AssertNoError(t, err)
		if updated.Name != "Baru" || updated.Color != "#10B981" || updated.Type != models.GroupTypeIncome {
			t.Errorf("unexpected group after update %+v", updated)
		}
	})

	t.Run("non_creator_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
		group := testutil.CreateTestGroup(t, db, owner.ID)
		_, err := svc.UpdateGroup(actorOf(other), group.ID, GroupInput{Name: "Hijack"})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("admin_updates_any_group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		owner := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		group := testutil.CreateTestGroup(t, db, owner.ID)
		_, err := svc.UpdateGroup(actorOf(admin), group.ID, GroupInput{Name: "Diatur Admin"})
		testutil.AssertNoError(t, err)
	})

	t.Run("simpaskor_rename_refused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		group := testutil.CreateTestGroupNamed(t, db, admin.ID, models.SimpaskorGroupName)
		_, err := svc.UpdateGroup(actorOf(admin), group.ID, GroupInput{Name: "Renamed"})
		testutil.AssertAppError(t, err, "PROTECTED_GROUP")
	})

	t.Run("simpaskor_recolor_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		group := testutil.CreateTestGroupNamed(t, db, admin.ID, models.SimpaskorGroupName)
		updated, err := svc.UpdateGroup(actorOf(admin), group.ID, GroupInput{Name: models.SimpaskorGroupName, Color: "#EF4444"})
		testutil.AssertNoError(t, err)
		if updated.Color != "#EF4444" {
			t.Errorf("expected new color, got %s", updated.Color)
		}
	})

	t.Run("keeps_own_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroupNamed(t, db, user.ID, "Stabil")
		_, err := svc.UpdateGroup(actorOf(user), group.ID, GroupInput{Name: "STABIL"})
		testutil.AssertNoError(t, err)
	})
}

func TestDeleteGroup(t *testing.T) {
	t.Run("empty_group_deleted_by_creator", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		db.Model(group).Update("type", models.GroupTypeExpense)

		testutil.AssertNoError(t, svc.DeleteGroup(actorOf(user), group.ID))

		_, err := svc.GetGroupByID(actorOf(user), group.ID)
		testutil.AssertAppError(t, err, "GROUP_NOT_FOUND")
	})

	t.Run("group_in_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		user := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, user.ID)
		testutil.CreateTestTransaction(t, db, user.ID, group.ID, models.TransactionTypeExpense, 10, day(2025, 10, 1))

		err := svc.DeleteGroup(actorOf(user), group.ID)
		testutil.AssertAppError(t, err, "GROUP_IN_USE")
		testutil.AssertStatus(t, err, 400)

		var groups, transactions int64
		db.Model(&models.TransactionGroup{}).Count(&groups)
		db.Model(&models.Transaction{}).Count(&transactions)
		if groups != 1 || transactions != 1 {
			t.Errorf("expected group and transaction unchanged, got %d groups, %d transactions", groups, transactions)
		}
	})

	t.Run("simpaskor_protected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		group := testutil.CreateTestGroupNamed(t, db, admin.ID, models.SimpaskorGroupName)
		err := svc.DeleteGroup(actorOf(admin), group.ID)
		testutil.AssertAppError(t, err, "PROTECTED_GROUP")
	})

	t.Run("non_creator_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, owner.ID)
		err := svc.DeleteGroup(actorOf(other), group.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestEnsureSimpaskorGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGroupService(db)

	admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
	first, err := svc.EnsureSimpaskorGroup(admin.ID)
	testutil.AssertNoError(t, err)
	second, err := svc.EnsureSimpaskorGroup(admin.ID)
	testutil.AssertNoError(t, err)

	if first.ID != second.ID {
		t.Error("expected the same group on repeated calls")
	}
	if !first.IsSimpaskor() || !first.IsActive {
		t.Errorf("unexpected Simpaskor group %+v", first)
	}
}
