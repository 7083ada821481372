package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/models"
	"bukukas/internal/money"
	"bukukas/internal/pagination"
	"bukukas/internal/policy"
)

// recentPaymentsLimit bounds the recent list in hayabusa statistics.
const recentPaymentsLimit = 5

// hayabusaPaymentService handles hayabusa payout business logic.
type hayabusaPaymentService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewHayabusaPaymentService creates a new HayabusaPaymentServicer.
func NewHayabusaPaymentService(db *gorm.DB) HayabusaPaymentServicer {
	return &hayabusaPaymentService{db: db, now: time.Now}
}

// ListHayabusaPayments returns a page of payouts visible to actor, newest first.
func (s *hayabusaPaymentService) ListHayabusaPayments(actor policy.Actor, filter HayabusaPaymentFilter, page pagination.PageRequest) (*pagination.Page[models.HayabusaPayment], error) {
	page.Defaults()

	base := s.scoped(actor)
	if filter.Status != nil {
		base = base.Where("hayabusa_payments.status = ?", *filter.Status)
	}
	if filter.Period != "" {
		base = base.Where("LOWER(hayabusa_payments.period) LIKE ?", likePattern(filter.Period))
	}
	if filter.HayabusaUserID != "" {
		base = base.Where("hayabusa_payments.hayabusa_user_id = ?", filter.HayabusaUserID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.HayabusaPayment
	if err := withHayabusaPaymentRelations(base).
		Scopes(pagination.Paginate(page)).
		Order("hayabusa_payments.created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(payments, page, totalItems)
	return &result, nil
}

func withHayabusaPaymentRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("HayabusaUser", selectUserSummary).
		Preload("Payer", selectUserSummary).
		Preload("TransactionGroup").
		Preload("Transaction")
}

// CreateHayabusaPayment records a payout and its backing expense transaction
// in one database transaction. Without an explicit group the payout is
// booked against the Simpaskor group.
func (s *hayabusaPaymentService) CreateHayabusaPayment(actor policy.Actor, input HayabusaPaymentInput) (*models.HayabusaPayment, error) {
	payee, err := requireUserWithRole(s.db, "hayabusa_user_id", input.HayabusaUserID, models.RoleHayabusa)
	if err != nil {
		return nil, err
	}
	groupID, err := s.resolveGroup(input.TransactionGroupID)
	if err != nil {
		return nil, err
	}

	payment := &models.HayabusaPayment{Status: models.HayabusaPaymentPending}
	applyHayabusaPaymentInput(payment, input, groupID)
	if input.Status != "" {
		if err := payment.TransitionTo(input.Status, actor.ID, s.now()); err != nil {
			return nil, apperrors.Field("status", "The selected status is invalid.")
		}
	}

	cmd := &payout{actorID: actor.ID, payee: payee, payment: payment}
	if err := s.db.Transaction(cmd.execute); err != nil {
		return nil, err
	}
	return s.GetHayabusaPaymentByID(actor, payment.ID)
}

// GetHayabusaPaymentByID retrieves a payout the actor is allowed to see.
func (s *hayabusaPaymentService) GetHayabusaPaymentByID(actor policy.Actor, id string) (*models.HayabusaPayment, error) {
	payment, err := findByID[models.HayabusaPayment](withHayabusaPaymentRelations(s.db), id, apperrors.ErrHayabusaPaymentNotFound)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessRow(actor, policy.ResourceHayabusaPayment, payment.HayabusaUserID) {
		return nil, apperrors.ErrForbidden
	}
	return payment, nil
}

// UpdateHayabusaPayment replaces a payout's fields and copies amount, date and
// group onto the backing transaction in the same database transaction. A new
// payee also relabels the backing transaction. Status is left to
// UpdateHayabusaPaymentStatus; a differing status is refused.
func (s *hayabusaPaymentService) UpdateHayabusaPayment(actor policy.Actor, id string, input HayabusaPaymentInput) (*models.HayabusaPayment, error) {
	payment, err := s.loadAccessible(actor, id)
	if err != nil {
		return nil, err
	}
	payee, err := requireUserWithRole(s.db, "hayabusa_user_id", input.HayabusaUserID, models.RoleHayabusa)
	if err != nil {
		return nil, err
	}
	if input.Status != "" && input.Status != payment.Status {
		return nil, apperrors.Field("status", "The status can only be changed through the status update.")
	}
	payeeChanged := payee.ID != payment.HayabusaUserID
	groupID := payment.TransactionGroupID
	if input.TransactionGroupID != nil && *input.TransactionGroupID != "" {
		if groupID, err = s.resolveGroup(input.TransactionGroupID); err != nil {
			return nil, err
		}
	}

	applyHayabusaPaymentInput(payment, input, groupID)

	changes := map[string]any{
		"amount":               payment.Amount,
		"date":                 payment.PaymentDate,
		"transaction_group_id": payment.TransactionGroupID,
	}
	if payeeChanged {
		changes["description"] = payoutDescription(payee.Name, payment.Period)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(payment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if payment.TransactionID == nil {
			return nil
		}
		if err := tx.Model(&models.Transaction{}).
			Where("id = ?", *payment.TransactionID).
			Updates(changes).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetHayabusaPaymentByID(actor, payment.ID)
}

// UpdateHayabusaPaymentStatus moves a payout to status. Entering paid keeps
// the first paid_at.
func (s *hayabusaPaymentService) UpdateHayabusaPaymentStatus(actor policy.Actor, id string, status models.HayabusaPaymentStatus) (*models.HayabusaPayment, error) {
	payment, err := s.loadAccessible(actor, id)
	if err != nil {
		return nil, err
	}

	if err := payment.TransitionTo(status, actor.ID, s.now()); err != nil {
		if errors.Is(err, models.ErrTransitionNotAllowed) {
			return nil, apperrors.ErrInvalidStateTransition
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(payment).Omit(clause.Associations).Updates(map[string]any{
		"status":  payment.Status,
		"paid_by": payment.PaidBy,
		"paid_at": payment.PaidAt,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetHayabusaPaymentByID(actor, payment.ID)
}

// DeleteHayabusaPayment removes a payout together with its backing transaction.
func (s *hayabusaPaymentService) DeleteHayabusaPayment(actor policy.Actor, id string) error {
	payment, err := s.loadAccessible(actor, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(payment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if payment.TransactionID == nil {
			return nil
		}
		if err := tx.Where("id = ?", *payment.TransactionID).Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

type hayabusaTotalsRow struct {
	TotalPaid       int64
	PendingPayments int64
}

// GetHayabusaStatistics summarizes the payouts visible to actor.
func (s *hayabusaPaymentService) GetHayabusaStatistics(actor policy.Actor) (*HayabusaStatistics, error) {
	var row hayabusaTotalsRow
	if err := s.scoped(actor).
		Select("COALESCE(SUM(CASE WHEN hayabusa_payments.status = ? THEN hayabusa_payments.amount ELSE 0 END), 0) AS total_paid, "+
			"COALESCE(SUM(CASE WHEN hayabusa_payments.status = ? THEN 1 ELSE 0 END), 0) AS pending_payments",
			models.HayabusaPaymentPaid, models.HayabusaPaymentPending).
		Scan(&row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var recent []models.HayabusaPayment
	if err := s.scoped(actor).
		Preload("HayabusaUser", selectUserSummary).
		Order("hayabusa_payments.created_at DESC").
		Limit(recentPaymentsLimit).
		Find(&recent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if recent == nil {
		recent = []models.HayabusaPayment{}
	}

	return &HayabusaStatistics{
		TotalPaid:       money.Amount(row.TotalPaid),
		PendingPayments: row.PendingPayments,
		RecentPayments:  recent,
	}, nil
}

// ListHayabusaUsers returns the hayabusa directory with payout bank details.
func (s *hayabusaPaymentService) ListHayabusaUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Select("id", "name", "email", "role", "bank_name", "account_number", "account_holder_name").
		Where("role = ?", models.RoleHayabusa).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *hayabusaPaymentService) scoped(actor policy.Actor) *gorm.DB {
	return policy.Scope(actor, policy.ResourceHayabusaPayment)(s.db.Model(&models.HayabusaPayment{}))
}

func (s *hayabusaPaymentService) loadAccessible(actor policy.Actor, id string) (*models.HayabusaPayment, error) {
	payment, err := findByID[models.HayabusaPayment](s.db, id, apperrors.ErrHayabusaPaymentNotFound)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessRow(actor, policy.ResourceHayabusaPayment, payment.HayabusaUserID) {
		return nil, apperrors.ErrForbidden
	}
	return payment, nil
}

// resolveGroup validates an explicit group or falls back to Simpaskor.
func (s *hayabusaPaymentService) resolveGroup(requested *string) (*string, error) {
	if requested == nil || *requested == "" {
		return simpaskorGroupID(s.db)
	}
	group, err := requireGroup(s.db, "transaction_group_id", *requested)
	if err != nil {
		return nil, err
	}
	return &group.ID, nil
}

func applyHayabusaPaymentInput(p *models.HayabusaPayment, input HayabusaPaymentInput, groupID *string) {
	p.HayabusaUserID = input.HayabusaUserID
	p.Amount = input.Amount
	p.PaymentDate = models.Day(input.PaymentDate)
	p.Period = strings.TrimSpace(input.Period)
	if p.Period == "" {
		p.Period = p.PaymentDate.Format(models.PeriodLayout)
	}
	p.Description = input.Description
	p.TransactionGroupID = groupID
}
