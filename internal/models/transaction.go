package models

import (
	"time"

	"bukukas/internal/money"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ExpenseCategoryHayabusa marks an expense that pays a hayabusa user.
const ExpenseCategoryHayabusa = "Pembayaran Hayabusa"

// Transaction is a single income or expense entry. UserID is whose books the
// entry belongs to; CreatedBy is who recorded it.
type Transaction struct {
	Base
	Description        string          `gorm:"size:255;not null" json:"description"`
	Type               TransactionType `gorm:"type:varchar(10);not null;index" json:"type"`
	Amount             money.Amount    `gorm:"type:bigint;not null" json:"amount"`
	Date               time.Time       `gorm:"type:date;not null;index" json:"date"`
	Category           string          `json:"category,omitempty"`
	ExpenseCategory    string          `json:"expense_category,omitempty"`
	ExpenseSubcategory string          `json:"expense_subcategory,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	TransactionGroupID *string         `gorm:"type:uuid;index" json:"transaction_group_id"`
	EmployeePaymentID  *string         `gorm:"type:uuid;index" json:"employee_payment_id,omitempty"`
	UserID             string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedBy          string          `gorm:"type:uuid;not null" json:"created_by"`

	User             *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Creator          *User             `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	TransactionGroup *TransactionGroup `gorm:"foreignKey:TransactionGroupID" json:"transaction_group,omitempty"`
	EmployeePayment  *EmployeePayment  `gorm:"foreignKey:EmployeePaymentID" json:"employee_payment,omitempty"`
	HayabusaPayment  *HayabusaPayment  `gorm:"foreignKey:TransactionID" json:"hayabusa_payment,omitempty"`
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
