package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"bukukas/internal/models"
	"bukukas/internal/money"
	"bukukas/internal/pagination"
	"bukukas/internal/policy"
	"bukukas/internal/report"
	"bukukas/internal/testutil"
)

func actorOf(u *models.User) policy.Actor {
	return policy.Actor{ID: u.ID, Role: u.Role}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func TestCreateTransaction(t *testing.T) {
	t.Run("user_cannot_assign_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		a := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, a.ID)

		tx, err := svc.CreateTransaction(actorOf(a), TransactionInput{
			Description:        "Kas masuk",
			Type:               models.TransactionTypeIncome,
			Amount:             10000,
			Date:               day(2025, 10, 3),
			TransactionGroupID: group.ID,
			UserID:             &b.ID,
		})
		testutil.AssertNoError(t, err)
		if tx.UserID != a.ID {
			t.Errorf("expected owner %s, got %s", a.ID, tx.UserID)
		}
		if tx.CreatedBy != a.ID {
			t.Errorf("expected creator %s, got %s", a.ID, tx.CreatedBy)
		}
	})

	t.Run("staff_assigns_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		finance := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
		owner := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, finance.ID)

		tx, err := svc.CreateTransaction(actorOf(finance), TransactionInput{
			Description:        "Sewa",
			Type:               models.TransactionTypeExpense,
			Amount:             25000,
			Date:               day(2025, 10, 4),
			TransactionGroupID: group.ID,
			UserID:             &owner.ID,
		})
		testutil.AssertNoError(t, err)
		if tx.UserID != owner.ID {
			t.Errorf("expected owner %s, got %s", owner.ID, tx.UserID)
		}
		if tx.User == nil || tx.User.Name != owner.Name {
			t.Error("expected the owner to be preloaded")
		}
	})

	t.Run("staff_defaults_owner_to_self", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		group := testutil.CreateTestGroup(t, db, admin.ID)

		tx, err := svc.CreateTransaction(actorOf(admin), TransactionInput{
			Description:        "Donasi",
			Type:               models.TransactionTypeIncome,
			Amount:             5000,
			Date:               day(2025, 10, 4),
			TransactionGroupID: group.ID,
		})
		testutil.AssertNoError(t, err)
		if tx.UserID != admin.ID {
			t.Errorf("expected owner %s, got %s", admin.ID, tx.UserID)
		}
	})

	t.Run("unknown_group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		_, err := svc.CreateTransaction(actorOf(user), TransactionInput{
			Description:        "x",
			Type:               models.TransactionTypeIncome,
			Amount:             1,
			Date:               day(2025, 10, 4),
			TransactionGroupID: "0190a3c4-0000-7000-8000-000000000000",
		})
		testutil.AssertFieldError(t, err, "transaction_group_id")
	})

	t.Run("unknown_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		group := testutil.CreateTestGroup(t, db, admin.ID)
		_, err := svc.CreateTransaction(actorOf(admin), TransactionInput{
			Description:        "x",
			Type:               models.TransactionTypeIncome,
			Amount:             1,
			Date:               day(2025, 10, 4),
			TransactionGroupID: group.ID,
			UserID:             strPtr("0190a3c4-0000-7000-8000-000000000000"),
		})
		testutil.AssertFieldError(t, err, "user_id")
	})
}

func TestCreateTransaction_HayabusaPayout(t *testing.T) {
	t.Run("creates_paid_payment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db).(*transactionService)
		paidAt := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return paidAt }

		finance := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
		payee := testutil.CreateTestUserWithRole(t, db, models.RoleHayabusa)
		group := testutil.CreateTestGroupNamed(t, db, finance.ID, models.SimpaskorGroupName)

		tx, err := svc.CreateTransaction(actorOf(finance), TransactionInput{
			Description:        "Honor juri",
			Type:               models.TransactionTypeExpense,
			Amount:             money.Amount(150000),
			Date:               day(2025, 10, 18),
			ExpenseCategory:    models.ExpenseCategoryHayabusa,
			TransactionGroupID: group.ID,
			HayabusaUserID:     &payee.ID,
		})
		testutil.AssertNoError(t, err)

		if tx.HayabusaPayment == nil {
			t.Fatal("expected a linked hayabusa payment")
		}
		p := tx.HayabusaPayment
		if p.HayabusaUserID != payee.ID {
			t.Errorf("expected payee %s, got %s", payee.ID, p.HayabusaUserID)
		}
		if p.Status != models.HayabusaPaymentPaid {
			t.Errorf("expected paid, got %s", p.Status)
		}
		if p.Period != "October 2025" {
			t.Errorf("expected period October 2025, got %q", p.Period)
		}
		if p.Amount != tx.Amount {
			t.Errorf("expected amount %s, got %s", tx.Amount, p.Amount)
		}
		if p.PaidBy == nil || *p.PaidBy != finance.ID {
			t.Error("expected paid_by to be the actor")
		}
		if p.PaidAt == nil || !p.PaidAt.Equal(paidAt) {
			t.Errorf("expected paid_at %v, got %v", paidAt, p.PaidAt)
		}
	})

	t.Run("requires_hayabusa_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		finance := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
		group := testutil.CreateTestGroup(t, db, finance.ID)

		_, err := svc.CreateTransaction(actorOf(finance), TransactionInput{
			Description:        "Honor",
			Type:               models.TransactionTypeExpense,
			Amount:             1000,
			Date:               day(2025, 10, 18),
			ExpenseCategory:    models.ExpenseCategoryHayabusa,
			TransactionGroupID: group.ID,
		})
		testutil.AssertFieldError(t, err, "hayabusa_user_id")
	})

	t.Run("payee_must_have_hayabusa_role", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		finance := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
		notPayee := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, finance.ID)

		_, err := svc.CreateTransaction(actorOf(finance), TransactionInput{
			Description:        "Honor",
			Type:               models.TransactionTypeExpense,
			Amount:             1000,
			Date:               day(2025, 10, 18),
			ExpenseCategory:    models.ExpenseCategoryHayabusa,
			TransactionGroupID: group.ID,
			HayabusaUserID:     &notPayee.ID,
		})
		testutil.AssertFieldError(t, err, "hayabusa_user_id")

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no transaction to be written, found %d", count)
		}
	})

	t.Run("rolls_back_when_payment_insert_fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		finance := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
		payee := testutil.CreateTestUserWithRole(t, db, models.RoleHayabusa)
		group := testutil.CreateTestGroup(t, db, finance.ID)
		failHayabusaInserts(t, db)

		_, err := svc.CreateTransaction(actorOf(finance), TransactionInput{
			Description:        "Honor",
			Type:               models.TransactionTypeExpense,
			Amount:             1000,
			Date:               day(2025, 10, 18),
			ExpenseCategory:    models.ExpenseCategoryHayabusa,
			TransactionGroupID: group.ID,
			HayabusaUserID:     &payee.ID,
		})
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
		assertNoPayoutRows(t, db)
	})
}

// failHayabusaInserts makes every insert into hayabusa_payments fail.
func failHayabusaInserts(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_hayabusa", func(d *gorm.DB) {
		if d.Statement.Schema != nil && d.Statement.Schema.Table == "hayabusa_payments" {
			_ = d.AddError(errors.New("induced hayabusa payment failure"))
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}
}

func assertNoPayoutRows(t *testing.T, db *gorm.DB) {
	t.Helper()
	var transactions, payments int64
	db.Unscoped().Model(&models.Transaction{}).Count(&transactions)
	db.Unscoped().Model(&models.HayabusaPayment{}).Count(&payments)
	if transactions != 0 || payments != 0 {
		t.Errorf("expected no rows after rollback, got %d transactions and %d payments", transactions, payments)
	}
}

func TestListTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)

	alice := testutil.CreateTestUserWithEmail(t, db, "alice@example.com", "Alice Wijaya", models.RoleUser)
	bob := testutil.CreateTestUserWithEmail(t, db, "bob@example.com", "Bob Santoso", models.RoleUser)
	finance := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
	hayabusa := testutil.CreateTestUserWithRole(t, db, models.RoleHayabusa)
	groupA := testutil.CreateTestGroup(t, db, alice.ID)
	groupB := testutil.CreateTestGroup(t, db, bob.ID)

	testutil.CreateTestTransaction(t, db, alice.ID, groupA.ID, models.TransactionTypeIncome, 100, day(2025, 10, 1))
	testutil.CreateTestTransaction(t, db, alice.ID, groupA.ID, models.TransactionTypeExpense, 40, day(2025, 10, 15))
	coffee := testutil.CreateTestTransaction(t, db, bob.ID, groupB.ID, models.TransactionTypeExpense, 10, day(2025, 11, 2))
	db.Model(coffee).Update("description", "Beli Kopi")

	t.Run("user_sees_own_rows", func(t *testing.T) {
		page, err := svc.ListTransactions(actorOf(alice), TransactionFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(page.Items) != 2 {
			t.Fatalf("expected 2 transactions, got %d", len(page.Items))
		}
		for _, tx := range page.Items {
			if tx.UserID != alice.ID {
				t.Errorf("leaked transaction owned by %s", tx.UserID)
			}
		}
	})

	t.Run("staff_sees_all_rows", func(t *testing.T) {
		page, err := svc.ListTransactions(actorOf(finance), TransactionFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.Meta == nil || page.Meta.Total != 3 {
			t.Fatalf("expected total 3, got %+v", page.Meta)
		}
		if page.Meta.PerPage != pagination.DefaultPerPage {
			t.Errorf("expected per_page %d, got %d", pagination.DefaultPerPage, page.Meta.PerPage)
		}
	})

	t.Run("hayabusa_sees_nothing", func(t *testing.T) {
		page, err := svc.ListTransactions(actorOf(hayabusa), TransactionFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(page.Items) != 0 {
			t.Errorf("expected no rows, got %d", len(page.Items))
		}
	})

	t.Run("filter_by_type", func(t *testing.T) {
		typ := models.TransactionTypeExpense
		page, err := svc.ListTransactions(actorOf(finance), TransactionFilter{Type: &typ}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.Meta.Total != 2 {
			t.Errorf("expected 2 expenses, got %d", page.Meta.Total)
		}
	})

	t.Run("filter_by_group", func(t *testing.T) {
		page, err := svc.ListTransactions(actorOf(finance), TransactionFilter{GroupID: &groupB.ID}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.Meta.Total != 1 {
			t.Errorf("expected 1 transaction in group B, got %d", page.Meta.Total)
		}
	})

	t.Run("filter_by_date_range", func(t *testing.T) {
		from, to := day(2025, 10, 1), day(2025, 10, 31)
		page, err := svc.ListTransactions(actorOf(finance), TransactionFilter{DateFrom: &from, DateTo: &to}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.Meta.Total != 2 {
			t.Errorf("expected 2 October transactions, got %d", page.Meta.Total)
		}
	})

	t.Run("search_description", func(t *testing.T) {
		page, err := svc.ListTransactions(actorOf(finance), TransactionFilter{Search: "kopi"}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.Meta.Total != 1 || page.Items[0].ID != coffee.ID {
			t.Errorf("expected only the coffee transaction, got %d rows", page.Meta.Total)
		}
	})

	t.Run("search_owner_name", func(t *testing.T) {
		page, err := svc.ListTransactions(actorOf(finance), TransactionFilter{Search: "wijaya"}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.Meta.Total != 2 {
			t.Errorf("expected Alice's 2 transactions, got %d", page.Meta.Total)
		}
	})

	t.Run("search_stays_scoped", func(t *testing.T) {
		page, err := svc.ListTransactions(actorOf(alice), TransactionFilter{Search: "santoso"}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(page.Items) != 0 {
			t.Errorf("expected no rows from another owner, got %d", len(page.Items))
		}
	})

	t.Run("limit_returns_short_list", func(t *testing.T) {
		page, err := svc.ListTransactions(actorOf(finance), TransactionFilter{Limit: 2}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.Meta != nil {
			t.Error("expected no pagination meta for a limited list")
		}
		if len(page.Items) != 2 {
			t.Errorf("expected 2 rows, got %d", len(page.Items))
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := svc.ListTransactions(actorOf(finance), TransactionFilter{}, pagination.PageRequest{Page: 2, PerPage: 2})
		testutil.AssertNoError(t, err)
		if len(page.Items) != 1 {
			t.Errorf("expected 1 row on page 2, got %d", len(page.Items))
		}
		if page.Meta.LastPage != 2 || page.Meta.CurrentPage != 2 {
			t.Errorf("unexpected meta %+v", page.Meta)
		}
	})
}

func TestGetTransactionByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)

	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	group := testutil.CreateTestGroup(t, db, alice.ID)
	tx := testutil.CreateTestTransaction(t, db, alice.ID, group.ID, models.TransactionTypeIncome, 100, day(2025, 10, 1))

	t.Run("owner", func(t *testing.T) {
		got, err := svc.GetTransactionByID(actorOf(alice), tx.ID)
		testutil.AssertNoError(t, err)
		if got.TransactionGroup == nil || got.TransactionGroup.ID != group.ID {
			t.Error("expected the group to be preloaded")
		}
	})

	t.Run("other_user_forbidden", func(t *testing.T) {
		_, err := svc.GetTransactionByID(actorOf(bob), tx.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetTransactionByID(actorOf(alice), "0190a3c4-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("malformed_id", func(t *testing.T) {
		_, err := svc.GetTransactionByID(actorOf(alice), "abc")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("propagates_to_hayabusa_payment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		finance := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
		payee := testutil.CreateTestUserWithRole(t, db, models.RoleHayabusa)
		group := testutil.CreateTestGroup(t, db, finance.ID)
		other := testutil.CreateTestGroup(t, db, finance.ID)
		payment := testutil.CreateTestHayabusaPayment(t, db, finance.ID, payee.ID, group.ID, 5000, models.HayabusaPaymentPending)

		_, err := svc.UpdateTransaction(actorOf(finance), *payment.TransactionID, TransactionInput{
			Description:        "Honor revisi",
			Type:               models.TransactionTypeExpense,
			Amount:             7500,
			Date:               day(2025, 10, 9),
			TransactionGroupID: other.ID,
		})
		testutil.AssertNoError(t, err)

		var reloaded models.HayabusaPayment
		db.First(&reloaded, "id = ?", payment.ID)
		if reloaded.Amount != 7500 {
			t.Errorf("expected amount 7500, got %d", reloaded.Amount)
		}
		if !models.Day(reloaded.PaymentDate).Equal(day(2025, 10, 9)) {
			t.Errorf("expected payment date 2025-10-09, got %v", reloaded.PaymentDate)
		}
		if reloaded.TransactionGroupID == nil || *reloaded.TransactionGroupID != other.ID {
			t.Error("expected group to follow the transaction")
		}
	})

	t.Run("user_keeps_ownership", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, alice.ID)
		tx := testutil.CreateTestTransaction(t, db, alice.ID, group.ID, models.TransactionTypeIncome, 100, day(2025, 10, 1))

		updated, err := svc.UpdateTransaction(actorOf(alice), tx.ID, TransactionInput{
			Description:        "Updated",
			Type:               models.TransactionTypeIncome,
			Amount:             200,
			Date:               day(2025, 10, 2),
			TransactionGroupID: group.ID,
			UserID:             &bob.ID,
		})
		testutil.AssertNoError(t, err)
		if updated.UserID != alice.ID {
			t.Errorf("expected owner to stay %s, got %s", alice.ID, updated.UserID)
		}
		if updated.Amount != 200 || updated.Description != "Updated" {
			t.Errorf("unexpected transaction after update: %+v", updated)
		}
	})

	t.Run("other_user_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, alice.ID)
		tx := testutil.CreateTestTransaction(t, db, alice.ID, group.ID, models.TransactionTypeIncome, 100, day(2025, 10, 1))

		_, err := svc.UpdateTransaction(actorOf(bob), tx.ID, TransactionInput{
			Description:        "Hijack",
			Type:               models.TransactionTypeIncome,
			Amount:             1,
			Date:               day(2025, 10, 2),
			TransactionGroupID: group.ID,
		})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("cascades_to_hayabusa_payment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		finance := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
		payee := testutil.CreateTestUserWithRole(t, db, models.RoleHayabusa)
		group := testutil.CreateTestGroup(t, db, finance.ID)
		payment := testutil.CreateTestHayabusaPayment(t, db, finance.ID, payee.ID, group.ID, 5000, models.HayabusaPaymentPaid)

		testutil.AssertNoError(t, svc.DeleteTransaction(actorOf(finance), *payment.TransactionID))

		var transactions, payments int64
		db.Model(&models.Transaction{}).Count(&transactions)
		db.Model(&models.HayabusaPayment{}).Count(&payments)
		if transactions != 0 || payments != 0 {
			t.Errorf("expected both rows gone, got %d transactions and %d payments", transactions, payments)
		}
	})

	t.Run("other_user_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, alice.ID)
		tx := testutil.CreateTestTransaction(t, db, alice.ID, group.ID, models.TransactionTypeIncome, 100, day(2025, 10, 1))

		err := svc.DeleteTransaction(actorOf(bob), tx.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 1 {
			t.Errorf("expected transaction to survive, count = %d", count)
		}
	})
}

func TestGetStatistics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)

	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
	group := testutil.CreateTestGroup(t, db, alice.ID)

	testutil.CreateTestTransaction(t, db, alice.ID, group.ID, models.TransactionTypeIncome, 10000, day(2025, 10, 1))
	testutil.CreateTestTransaction(t, db, alice.ID, group.ID, models.TransactionTypeExpense, 2500, day(2025, 10, 2))
	testutil.CreateTestTransaction(t, db, bob.ID, group.ID, models.TransactionTypeExpense, 1000, day(2025, 10, 3))

	t.Run("scoped_to_user", func(t *testing.T) {
		stats, err := svc.GetStatistics(actorOf(alice))
		testutil.AssertNoError(t, err)
		if stats.TotalIncome != 10000 || stats.TotalExpense != 2500 || stats.Balance != 7500 || stats.TransactionCount != 2 {
			t.Errorf("unexpected totals %+v", stats)
		}
	})

	t.Run("staff_totals_everything", func(t *testing.T) {
		stats, err := svc.GetStatistics(actorOf(admin))
		testutil.AssertNoError(t, err)
		if stats.TotalExpense != 3500 || stats.Balance != 6500 || stats.TransactionCount != 3 {
			t.Errorf("unexpected totals %+v", stats)
		}
	})

	t.Run("empty", func(t *testing.T) {
		fresh := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, fresh)
		empty, err := NewTransactionService(fresh).GetStatistics(actorOf(admin))
		testutil.AssertNoError(t, err)
		if empty.TransactionCount != 0 || empty.Balance != 0 {
			t.Errorf("expected zero totals, got %+v", empty)
		}
	})
}

func TestGetReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)

	finance := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
	group := testutil.CreateTestGroup(t, db, finance.ID)

	testutil.CreateTestTransaction(t, db, finance.ID, group.ID, models.TransactionTypeIncome, 100, day(2025, 10, 1))
	testutil.CreateTestTransaction(t, db, finance.ID, group.ID, models.TransactionTypeExpense, 40, day(2025, 10, 1))
	testutil.CreateTestTransaction(t, db, finance.ID, group.ID, models.TransactionTypeExpense, 10, day(2025, 10, 31))
	testutil.CreateTestTransaction(t, db, finance.ID, group.ID, models.TransactionTypeIncome, 999, day(2025, 11, 1))
	testutil.CreateTestTransaction(t, db, finance.ID, group.ID, models.TransactionTypeIncome, 7, day(2025, 3, 12))

	t.Run("monthly", func(t *testing.T) {
		r, err := svc.GetReport(actorOf(finance), report.Period{Type: report.Monthly, Year: 2025, Month: 10})
		testutil.AssertNoError(t, err)

		s := r.Summary
		if s.TotalIncome != 100 || s.TotalExpense != 50 || s.Balance != 50 || s.TransactionCount != 3 {
			t.Errorf("unexpected summary %+v", s.Totals)
		}
		if s.Period != "2025-10" {
			t.Errorf("expected label 2025-10, got %s", s.Period)
		}
		if len(r.ChartData) != 2 || r.ChartData[0].Period != 1 || r.ChartData[1].Period != 31 {
			t.Errorf("expected buckets for days 1 and 31, got %+v", r.ChartData)
		}
		if len(r.Transactions) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(r.Transactions))
		}
		if r.Transactions[0].Date != "2025-10-31" {
			t.Errorf("expected newest row first, got %s", r.Transactions[0].Date)
		}
		if r.Transactions[0].Category != group.Name || r.Transactions[0].User != finance.Name {
			t.Errorf("unexpected projection %+v", r.Transactions[0])
		}
	})

	t.Run("yearly", func(t *testing.T) {
		r, err := svc.GetReport(actorOf(finance), report.Period{Type: report.Yearly, Year: 2025})
		testutil.AssertNoError(t, err)

		if r.Summary.TransactionCount != 5 {
			t.Errorf("expected 5 transactions, got %d", r.Summary.TransactionCount)
		}
		if len(r.ChartData) != 3 {
			t.Fatalf("expected buckets for March, October and November, got %+v", r.ChartData)
		}
		if r.ChartData[1].Period != 10 || r.ChartData[1].Income != 100 || r.ChartData[1].Expense != 50 {
			t.Errorf("unexpected October bucket %+v", r.ChartData[1])
		}
	})

	t.Run("empty_period", func(t *testing.T) {
		r, err := svc.GetReport(actorOf(finance), report.Period{Type: report.Monthly, Year: 2024, Month: 1})
		testutil.AssertNoError(t, err)
		if r.ChartData == nil || len(r.ChartData) != 0 || len(r.Transactions) != 0 {
			t.Errorf("expected empty report, got %+v", r)
		}
	})
}

func TestTransactionService_LinkedPayoutRequiresStaff(t *testing.T) {
	t.Run("user_cannot_create_payout", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		payee := testutil.CreateTestUserWithRole(t, db, models.RoleHayabusa)
		group := testutil.CreateTestGroup(t, db, user.ID)

		_, err := svc.CreateTransaction(actorOf(user), TransactionInput{
			Description:        "Honor juri",
			Type:               models.TransactionTypeExpense,
			Amount:             1000,
			Date:               day(2025, 10, 18),
			ExpenseCategory:    models.ExpenseCategoryHayabusa,
			TransactionGroupID: group.ID,
			HayabusaUserID:     &payee.ID,
		})
		testutil.AssertAppError(t, err, "FORBIDDEN")
		assertNoPayoutRows(t, db)
	})

	t.Run("user_cannot_update_backing_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		payee := testutil.CreateTestUserWithRole(t, db, models.RoleHayabusa)
		group := testutil.CreateTestGroup(t, db, user.ID)
		p := testutil.CreateTestHayabusaPayment(t, db, user.ID, payee.ID, group.ID, 1000, models.HayabusaPaymentPaid)

		_, err := svc.UpdateTransaction(actorOf(user), *p.TransactionID, TransactionInput{
			Description:        "Honor juri",
			Type:               models.TransactionTypeExpense,
			Amount:             999,
			Date:               day(2025, 10, 5),
			TransactionGroupID: group.ID,
		})
		testutil.AssertAppError(t, err, "FORBIDDEN")

		var stored models.HayabusaPayment
		db.First(&stored, "id = ?", p.ID)
		if stored.Amount != 1000 {
			t.Errorf("expected payment amount to stay 1000, got %d", stored.Amount)
		}
	})

	t.Run("user_cannot_delete_backing_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		payee := testutil.CreateTestUserWithRole(t, db, models.RoleHayabusa)
		group := testutil.CreateTestGroup(t, db, user.ID)
		p := testutil.CreateTestHayabusaPayment(t, db, user.ID, payee.ID, group.ID, 1000, models.HayabusaPaymentPaid)

		err := svc.DeleteTransaction(actorOf(user), *p.TransactionID)
		testutil.AssertAppError(t, err, "FORBIDDEN")

		var payments int64
		db.Model(&models.HayabusaPayment{}).Count(&payments)
		if payments != 1 {
			t.Errorf("expected the payment to survive, got %d", payments)
		}
	})

	t.Run("staff_updates_backing_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		finance := testutil.CreateTestUserWithRole(t, db, models.RoleFinance)
		payee := testutil.CreateTestUserWithRole(t, db, models.RoleHayabusa)
		group := testutil.CreateTestGroup(t, db, finance.ID)
		p := testutil.CreateTestHayabusaPayment(t, db, finance.ID, payee.ID, group.ID, 1000, models.HayabusaPaymentPaid)

		_, err := svc.UpdateTransaction(actorOf(finance), *p.TransactionID, TransactionInput{
			Description:        "Honor juri",
			Type:               models.TransactionTypeExpense,
			Amount:             2500,
			Date:               day(2025, 10, 5),
			TransactionGroupID: group.ID,
		})
		testutil.AssertNoError(t, err)

		var stored models.HayabusaPayment
		db.First(&stored, "id = ?", p.ID)
		if stored.Amount != 2500 {
			t.Errorf("expected payment amount 2500, got %d", stored.Amount)
		}
	})
}
