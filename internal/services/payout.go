package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/models"
)

// payout creates a hayabusa payment together with the expense transaction
// that records its cash outflow. Either both rows are written or neither.
type payout struct {
	actorID string
	payee   *models.User
	payment *models.HayabusaPayment
	// expense is the backing transaction. When nil it is synthesized from the
	// payment fields.
	expense *models.Transaction
}

// payoutDescription labels a synthesized backing transaction.
func payoutDescription(payeeName, period string) string {
	return fmt.Sprintf("Honor Hayabusa: %s - %s", payeeName, period)
}

// execute performs both writes on tx, which must be an open database transaction.
func (p *payout) execute(tx *gorm.DB) error {
	if p.expense == nil {
		p.expense = &models.Transaction{
			Description:        payoutDescription(p.payee.Name, p.payment.Period),
			Type:               models.TransactionTypeExpense,
			Amount:             p.payment.Amount,
			Date:               p.payment.PaymentDate,
			ExpenseCategory:    models.ExpenseCategoryHayabusa,
			Notes:              p.payment.Description,
			TransactionGroupID: p.payment.TransactionGroupID,
			UserID:             p.actorID,
			CreatedBy:          p.actorID,
		}
	}

	if err := tx.Omit(clause.Associations).Create(p.expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	p.payment.HayabusaUserID = p.payee.ID
	p.payment.TransactionID = &p.expense.ID
	if err := tx.Omit(clause.Associations).Create(p.payment).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// simpaskorGroupID returns the id of the Simpaskor group, or nil when it has
// not been seeded.
func simpaskorGroupID(db *gorm.DB) (*string, error) {
	var group models.TransactionGroup
	err := db.Where("LOWER(name) = LOWER(?)", models.SimpaskorGroupName).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &group.ID, nil
}
