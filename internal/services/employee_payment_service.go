package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/models"
	"bukukas/internal/pagination"
	"bukukas/internal/policy"
)

// employeePaymentService handles employee payment business logic.
type employeePaymentService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewEmployeePaymentService creates a new EmployeePaymentServicer.
func NewEmployeePaymentService(db *gorm.DB) EmployeePaymentServicer {
	return &employeePaymentService{db: db, now: time.Now}
}

// ListEmployeePayments returns a page of payments visible to actor, newest first.
func (s *employeePaymentService) ListEmployeePayments(actor policy.Actor, filter EmployeePaymentFilter, page pagination.PageRequest) (*pagination.Page[models.EmployeePayment], error) {
	page.Defaults()

	base := policy.Scope(actor, policy.ResourceEmployeePayment)(s.db.Model(&models.EmployeePayment{}))
	if filter.Status != nil {
		base = base.Where("employee_payments.status = ?", *filter.Status)
	}
	if filter.PaymentType != nil {
		base = base.Where("employee_payments.payment_type = ?", *filter.PaymentType)
	}
	if filter.Period != "" {
		base = base.Where("LOWER(employee_payments.payment_period) LIKE ?", likePattern(filter.Period))
	}
	if filter.UserID != "" {
		base = base.Where("employee_payments.user_id = ?", filter.UserID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.EmployeePayment
	if err := withEmployeePaymentRelations(base).
		Scopes(pagination.Paginate(page)).
		Order("employee_payments.created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(payments, page, totalItems)
	return &result, nil
}

func withEmployeePaymentRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("User", selectUserSummary).Preload("Approver", selectUserSummary)
}

// CreateEmployeePayment records a pending payment for an existing user.
func (s *employeePaymentService) CreateEmployeePayment(actor policy.Actor, input EmployeePaymentInput) (*models.EmployeePayment, error) {
	if err := s.requireEmployee(input.UserID); err != nil {
		return nil, err
	}

	payment := &models.EmployeePayment{Status: models.EmployeePaymentPending}
	applyEmployeePaymentInput(payment, input)

	if err := s.db.Omit(clause.Associations).Create(payment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetEmployeePaymentByID(actor, payment.ID)
}

// GetEmployeePaymentByID retrieves a payment the actor is allowed to see.
func (s *employeePaymentService) GetEmployeePaymentByID(actor policy.Actor, id string) (*models.EmployeePayment, error) {
	payment, err := findByID[models.EmployeePayment](withEmployeePaymentRelations(s.db), id, apperrors.ErrEmployeePaymentNotFound)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessRow(actor, policy.ResourceEmployeePayment, payment.UserID) {
		return nil, apperrors.ErrForbidden
	}
	return payment, nil
}

// UpdateEmployeePayment replaces a payment's fields. A status in the input is
// applied directly, except that approval only happens through approve.
func (s *employeePaymentService) UpdateEmployeePayment(actor policy.Actor, id string, input EmployeePaymentInput) (*models.EmployeePayment, error) {
	payment, err := s.loadAccessible(actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireEmployee(input.UserID); err != nil {
		return nil, err
	}

	if input.Status != nil && *input.Status != payment.Status {
		if *input.Status == models.EmployeePaymentApproved {
			return nil, apperrors.ErrInvalidStateTransition
		}
		payment.Status = *input.Status
	}
	applyEmployeePaymentInput(payment, input)

	if err := s.db.Omit(clause.Associations).Save(payment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetEmployeePaymentByID(actor, payment.ID)
}

// DeleteEmployeePayment removes a payment.
func (s *employeePaymentService) DeleteEmployeePayment(actor policy.Actor, id string) error {
	payment, err := s.loadAccessible(actor, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(payment).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ApproveEmployeePayment approves a pending payment. Approving an approved
// payment returns it unchanged.
func (s *employeePaymentService) ApproveEmployeePayment(actor policy.Actor, id string) (*models.EmployeePayment, error) {
	payment, err := s.loadAccessible(actor, id)
	if err != nil {
		return nil, err
	}

	changed, err := payment.Approve(actor.ID, s.now())
	if err != nil {
		if errors.Is(err, models.ErrTransitionNotAllowed) {
			return nil, apperrors.ErrInvalidStateTransition
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if changed {
		if err := s.db.Model(payment).Omit(clause.Associations).Updates(map[string]any{
			"status":      payment.Status,
			"approved_by": payment.ApprovedBy,
			"approved_at": payment.ApprovedAt,
		}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetEmployeePaymentByID(actor, payment.ID)
}

// ListEmployees returns the role=user directory for payee pickers.
func (s *employeePaymentService) ListEmployees() ([]models.User, error) {
	var users []models.User
	if err := s.db.Select("id", "name", "email", "role").
		Where("role = ?", models.RoleUser).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *employeePaymentService) loadAccessible(actor policy.Actor, id string) (*models.EmployeePayment, error) {
	payment, err := findByID[models.EmployeePayment](s.db, id, apperrors.ErrEmployeePaymentNotFound)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessRow(actor, policy.ResourceEmployeePayment, payment.UserID) {
		return nil, apperrors.ErrForbidden
	}
	return payment, nil
}

func (s *employeePaymentService) requireEmployee(userID string) error {
	_, err := findByID[models.User](s.db, userID, apperrors.Field("user_id", "The selected user id is invalid."))
	return err
}

func applyEmployeePaymentInput(p *models.EmployeePayment, input EmployeePaymentInput) {
	p.UserID = input.UserID
	p.PaymentType = input.PaymentType
	p.Amount = input.Amount
	p.PaymentPeriod = strings.TrimSpace(input.PaymentPeriod)
	p.PaymentDate = models.Day(input.PaymentDate)
	p.Description = input.Description
}
