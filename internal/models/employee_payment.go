package models

import (
	"time"

	"bukukas/internal/money"
)

// EmployeePaymentType is the kind of compensation paid to an employee.
type EmployeePaymentType string

const (
	EmployeePaymentSalary     EmployeePaymentType = "salary"
	EmployeePaymentBonus      EmployeePaymentType = "bonus"
	EmployeePaymentOvertime   EmployeePaymentType = "overtime"
	EmployeePaymentAllowance  EmployeePaymentType = "allowance"
	EmployeePaymentCommission EmployeePaymentType = "commission"
)

// EmployeePaymentStatus is the lifecycle state of an employee payment.
type EmployeePaymentStatus string

const (
	EmployeePaymentPending   EmployeePaymentStatus = "pending"
	EmployeePaymentApproved  EmployeePaymentStatus = "approved"
	EmployeePaymentPaid      EmployeePaymentStatus = "paid"
	EmployeePaymentCancelled EmployeePaymentStatus = "cancelled"
)

// EmployeePayment is a compensation record for a role=user employee.
type EmployeePayment struct {
	Base
	UserID        string                `gorm:"type:uuid;not null;index" json:"user_id"`
	PaymentType   EmployeePaymentType   `gorm:"type:varchar(20);not null" json:"payment_type"`
	Amount        money.Amount          `gorm:"type:bigint;not null" json:"amount"`
	PaymentPeriod string                `gorm:"not null" json:"payment_period"`
	PaymentDate   time.Time             `gorm:"type:date;not null" json:"payment_date"`
	Description   string                `json:"description,omitempty"`
	Status        EmployeePaymentStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	ApprovedBy    *string               `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt    *time.Time            `json:"approved_at,omitempty"`

	User     *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Approver *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

// Approve moves a pending payment to approved, stamping the approver and at.
// Approving an already-approved payment is a no-op and reports false; paid
// and cancelled payments cannot be approved.
func (p *EmployeePayment) Approve(approverID string, at time.Time) (bool, error) {
	switch p.Status {
	case EmployeePaymentApproved:
		return false, nil
	case EmployeePaymentPending:
		p.Status = EmployeePaymentApproved
		p.ApprovedBy = &approverID
		if p.ApprovedAt == nil {
			p.ApprovedAt = &at
		}
		return true, nil
	default:
		return false, ErrTransitionNotAllowed
	}
}
