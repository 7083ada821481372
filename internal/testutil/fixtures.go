package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"bukukas/internal/models"
	"bukukas/internal/money"

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

// CreateTestUser creates a role=user account with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.RoleUser)
}

// CreateTestUserWithRole creates a user holding role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("%s%d@test.com", role, n), fmt.Sprintf("%s %d", role, n), role)
}

// CreateTestUserWithEmail creates a user with the given email, name and role.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email, name string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestGroup creates an active universal group owned by creatorID.
func CreateTestGroup(t *testing.T, db *gorm.DB, creatorID string) *models.TransactionGroup {
	t.Helper()
	return CreateTestGroupNamed(t, db, creatorID, fmt.Sprintf("Test Group %d", nextID()))
}

// CreateTestGroupNamed creates an active universal group with the given name.
func CreateTestGroupNamed(t *testing.T, db *gorm.DB, creatorID, name string) *models.TransactionGroup {
	t.Helper()

	group := &models.TransactionGroup{
		Name:      name,
		Type:      models.GroupTypeUniversal,
		Color:     models.DefaultGroupColor,
		IsActive:  true,
		CreatedBy: creatorID,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateTestTransaction creates a transaction owned by userID in groupID on date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, groupID string, txType models.TransactionType, amount money.Amount, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Description:        fmt.Sprintf("Test Transaction %d", nextID()),
		Type:               txType,
		Amount:             amount,
		Date:               models.Day(date),
		TransactionGroupID: &groupID,
		UserID:             userID,
		CreatedBy:          userID,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestEmployeePayment creates a pending salary payment for userID.
func CreateTestEmployeePayment(t *testing.T, db *gorm.DB, userID string, amount money.Amount) *models.EmployeePayment {
	t.Helper()

	p := &models.EmployeePayment{
		UserID:        userID,
		PaymentType:   models.EmployeePaymentSalary,
		Amount:        amount,
		PaymentPeriod: "October 2025",
		PaymentDate:   time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC),
		Status:        models.EmployeePaymentPending,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test employee payment: %v", err)
	}
	return p
}

// CreateTestHayabusaPayment creates a payment for hayabusaUserID backed by a
// new expense transaction owned by actorID.
func CreateTestHayabusaPayment(t *testing.T, db *gorm.DB, actorID, hayabusaUserID, groupID string, amount money.Amount, status models.HayabusaPaymentStatus) *models.HayabusaPayment {
	t.Helper()

	date := time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)
	tx := CreateTestTransaction(t, db, actorID, groupID, models.TransactionTypeExpense, amount, date)

	p := &models.HayabusaPayment{
		HayabusaUserID:     hayabusaUserID,
		TransactionID:      &tx.ID,
		TransactionGroupID: &groupID,
		Amount:             amount,
		PaymentDate:        date,
		Period:             date.Format(models.PeriodLayout),
		Status:             status,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test hayabusa payment: %v", err)
	}
	return p
}
