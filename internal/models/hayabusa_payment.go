package models

import (
	"errors"
	"time"

	"bukukas/internal/money"
)

// ErrTransitionNotAllowed is returned by state transitions that the current
// status does not permit.
var ErrTransitionNotAllowed = errors.New("status transition not allowed")

// HayabusaPaymentStatus is the lifecycle state of a hayabusa payout.
type HayabusaPaymentStatus string

const (
	HayabusaPaymentPending   HayabusaPaymentStatus = "pending"
	HayabusaPaymentPaid      HayabusaPaymentStatus = "paid"
	HayabusaPaymentCancelled HayabusaPaymentStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s HayabusaPaymentStatus) Valid() bool {
	switch s {
	case HayabusaPaymentPending, HayabusaPaymentPaid, HayabusaPaymentCancelled:
		return true
	}
	return false
}

// PeriodLayout formats a payment period label ("October 2025").
const PeriodLayout = "January 2006"

// HayabusaPayment is a payout to a hayabusa user, backed by an expense Transaction.
type HayabusaPayment struct {
	Base
	HayabusaUserID     string                `gorm:"type:uuid;not null;index" json:"hayabusa_user_id"`
	TransactionID      *string               `gorm:"type:uuid;index" json:"transaction_id"`
	TransactionGroupID *string               `gorm:"type:uuid" json:"transaction_group_id"`
	Amount             money.Amount          `gorm:"type:bigint;not null" json:"amount"`
	PaymentDate        time.Time             `gorm:"type:date;not null" json:"payment_date"`
	Period             string                `gorm:"not null" json:"period"`
	Description        string                `json:"description,omitempty"`
	Status             HayabusaPaymentStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	PaidBy             *string               `gorm:"type:uuid" json:"paid_by,omitempty"`
	PaidAt             *time.Time            `json:"paid_at,omitempty"`

	HayabusaUser     *User             `gorm:"foreignKey:HayabusaUserID" json:"hayabusa_user,omitempty"`
	Transaction      *Transaction      `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
	TransactionGroup *TransactionGroup `gorm:"foreignKey:TransactionGroupID" json:"transaction_group,omitempty"`
	Payer            *User             `gorm:"foreignKey:PaidBy" json:"payer,omitempty"`
}

// hayabusaTransitions lists the statuses reachable from each status.
// Staying put is allowed for every status; cancelled is terminal.
var hayabusaTransitions = map[HayabusaPaymentStatus][]HayabusaPaymentStatus{
	HayabusaPaymentPending:   {HayabusaPaymentPending, HayabusaPaymentPaid, HayabusaPaymentCancelled},
	HayabusaPaymentPaid:      {HayabusaPaymentPaid, HayabusaPaymentCancelled},
	HayabusaPaymentCancelled: {HayabusaPaymentCancelled},
}

// CanTransitionTo reports whether the payment may move to status.
func (p *HayabusaPayment) CanTransitionTo(status HayabusaPaymentStatus) bool {
	for _, next := range hayabusaTransitions[p.Status] {
		if next == status {
			return true
		}
	}
	return false
}

// TransitionTo sets the payment status. Entering paid stamps paid_at and
// paid_by only when they are not already set, so repeated calls keep the
// first timestamp.
func (p *HayabusaPayment) TransitionTo(status HayabusaPaymentStatus, actorID string, at time.Time) error {
	if !status.Valid() || !p.CanTransitionTo(status) {
		return ErrTransitionNotAllowed
	}
	p.Status = status
	if status == HayabusaPaymentPaid {
		if p.PaidAt == nil {
			p.PaidAt = &at
		}
		if p.PaidBy == nil {
			p.PaidBy = &actorID
		}
	}
	return nil
}
