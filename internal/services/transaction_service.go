package services

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bukukas/internal/aggregate"
	apperrors "bukukas/internal/errors"
	"bukukas/internal/models"
	"bukukas/internal/money"
	"bukukas/internal/pagination"
	"bukukas/internal/policy"
	"bukukas/internal/report"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db, now: time.Now}
}

// ListTransactions returns the transactions visible to actor, newest first.
// A positive filter.Limit returns that many rows without pagination metadata.
func (s *transactionService) ListTransactions(actor policy.Actor, filter TransactionFilter, page pagination.PageRequest) (*pagination.Page[models.Transaction], error) {
	base := policy.Scope(actor, policy.ResourceTransaction)(s.db.Model(&models.Transaction{}))
	base = s.applyFilters(base, filter)

	var transactions []models.Transaction
	if filter.Limit > 0 {
		if err := withTransactionRelations(base).
			Order("transactions.created_at DESC").
			Limit(filter.Limit).
			Find(&transactions).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result := pagination.List(transactions)
		return &result, nil
	}

	page.Defaults()

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := withTransactionRelations(base).
		Scopes(pagination.Paginate(page)).
		Order("transactions.created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(transactions, page, totalItems)
	return &result, nil
}

func (s *transactionService) applyFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.GroupID != nil {
		q = q.Where("transactions.transaction_group_id = ?", *f.GroupID)
	}
	if f.Type != nil {
		q = q.Where("transactions.type = ?", *f.Type)
	}
	if f.DateFrom != nil {
		q = q.Where("transactions.date >= ?", models.Day(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("transactions.date <= ?", models.Day(*f.DateTo))
	}
	if strings.TrimSpace(f.Search) != "" {
		like := likePattern(f.Search)
		owners := s.db.Model(&models.User{}).Select("id").Where("LOWER(name) LIKE ?", like)
		q = q.Where(s.db.
			Where("LOWER(transactions.description) LIKE ?", like).
			Or("LOWER(transactions.category) LIKE ?", like).
			Or("LOWER(transactions.expense_category) LIKE ?", like).
			Or("transactions.user_id IN (?)", owners))
	}
	return q
}

func withTransactionRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", selectUserSummary).
		Preload("Creator", selectUserSummary).
		Preload("TransactionGroup").
		Preload("HayabusaPayment")
}

// CreateTransaction records a transaction. An expense in the hayabusa payout
// category also creates a paid HayabusaPayment for hayabusa_user_id in the
// same database transaction.
func (s *transactionService) CreateTransaction(actor policy.Actor, input TransactionInput) (*models.Transaction, error) {
	ownerID := policy.ResolveOwner(actor, input.UserID, "")
	if err := s.validateReferences(input, ownerID); err != nil {
		return nil, err
	}

	var payee *models.User
	if isHayabusaPayout(input) {
		if err := policy.Authorize(actor.Role, policy.ActionCreate, policy.ResourceHayabusaPayment); err != nil {
			return nil, err
		}
		if input.HayabusaUserID == nil || *input.HayabusaUserID == "" {
			return nil, apperrors.Field("hayabusa_user_id", "The hayabusa user id field is required when expense category is "+models.ExpenseCategoryHayabusa+".")
		}
		var err error
		payee, err = requireUserWithRole(s.db, "hayabusa_user_id", *input.HayabusaUserID, models.RoleHayabusa)
		if err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{CreatedBy: actor.ID}
	applyTransactionInput(transaction, input, ownerID)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if payee == nil {
			if err := tx.Omit(clause.Associations).Create(transaction).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		}

		paidAt := s.now()
		cmd := &payout{
			actorID: actor.ID,
			payee:   payee,
			expense: transaction,
			payment: &models.HayabusaPayment{
				TransactionGroupID: transaction.TransactionGroupID,
				Amount:             transaction.Amount,
				PaymentDate:        transaction.Date,
				Period:             transaction.Date.Format(models.PeriodLayout),
				Description:        transaction.Description,
				Status:             models.HayabusaPaymentPaid,
				PaidBy:             &actor.ID,
				PaidAt:             &paidAt,
			},
		}
		return cmd.execute(tx)
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(actor, transaction.ID)
}

// GetTransactionByID retrieves a transaction the actor is allowed to see.
func (s *transactionService) GetTransactionByID(actor policy.Actor, id string) (*models.Transaction, error) {
	transaction, err := findByID[models.Transaction](withTransactionRelations(s.db), id, apperrors.ErrTransactionNotFound)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessRow(actor, policy.ResourceTransaction, transaction.UserID) {
		return nil, apperrors.ErrForbidden
	}
	return transaction, nil
}

// UpdateTransaction replaces a transaction's fields. Amount, date and group
// changes are copied onto a linked HayabusaPayment in the same database
// transaction.
func (s *transactionService) UpdateTransaction(actor policy.Actor, id string, input TransactionInput) (*models.Transaction, error) {
	transaction, err := s.loadAccessible(actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.guardLinkedPayout(actor, transaction.ID, policy.ActionUpdate); err != nil {
		return nil, err
	}

	ownerID := policy.ResolveOwner(actor, input.UserID, transaction.UserID)
	if err := s.validateReferences(input, ownerID); err != nil {
		return nil, err
	}
	applyTransactionInput(transaction, input, ownerID)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&models.HayabusaPayment{}).
			Where("transaction_id = ?", transaction.ID).
			Updates(map[string]any{
				"amount":               transaction.Amount,
				"payment_date":         transaction.Date,
				"transaction_group_id": transaction.TransactionGroupID,
			}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(actor, transaction.ID)
}

// DeleteTransaction removes a transaction and its linked HayabusaPayment together.
func (s *transactionService) DeleteTransaction(actor policy.Actor, id string) error {
	transaction, err := s.loadAccessible(actor, id)
	if err != nil {
		return err
	}
	if err := s.guardLinkedPayout(actor, transaction.ID, policy.ActionDelete); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&models.HayabusaPayment{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetStatistics totals every transaction visible to actor in one query.
func (s *transactionService) GetStatistics(actor policy.Actor) (*aggregate.Totals, error) {
	var row totalsRow
	if err := policy.Scope(actor, policy.ResourceReport)(s.db.Model(&models.Transaction{})).
		Select(totalsSelect, models.TransactionTypeIncome, models.TransactionTypeExpense).
		Scan(&row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &aggregate.Totals{
		TotalIncome:      money.Amount(row.TotalIncome),
		TotalExpense:     money.Amount(row.TotalExpense),
		Balance:          money.Amount(row.TotalIncome - row.TotalExpense),
		TransactionCount: row.TransactionCount,
	}, nil
}

// GetReport composes the report for period from the rows visible to actor,
// ordered by date then creation time, newest first.
func (s *transactionService) GetReport(actor policy.Actor, period report.Period) (*report.Report, error) {
	from, to := period.Range()

	var transactions []models.Transaction
	if err := policy.Scope(actor, policy.ResourceReport)(s.db.Model(&models.Transaction{})).
		Where("transactions.date >= ? AND transactions.date < ?", from, to).
		Preload("User", selectUserSummary).
		Preload("TransactionGroup").
		Order("transactions.date DESC").
		Order("transactions.created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := report.Compose(transactions, aggregate.Rollup(transactions, period.BucketBy()), period)
	return &result, nil
}

func (s *transactionService) loadAccessible(actor policy.Actor, id string) (*models.Transaction, error) {
	transaction, err := findByID[models.Transaction](s.db, id, apperrors.ErrTransactionNotFound)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessRow(actor, policy.ResourceTransaction, transaction.UserID) {
		return nil, apperrors.ErrForbidden
	}
	return transaction, nil
}

// guardLinkedPayout requires action on hayabusa payments when the transaction
// backs one, since the change carries over to the payment.
func (s *transactionService) guardLinkedPayout(actor policy.Actor, transactionID string, action policy.Action) error {
	var linked int64
	if err := s.db.Model(&models.HayabusaPayment{}).
		Where("transaction_id = ?", transactionID).
		Count(&linked).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if linked == 0 {
		return nil
	}
	return policy.Authorize(actor.Role, action, policy.ResourceHayabusaPayment)
}

// validateReferences checks that every id in the payload points at a live row.
func (s *transactionService) validateReferences(input TransactionInput, ownerID string) error {
	if _, err := requireGroup(s.db, "transaction_group_id", input.TransactionGroupID); err != nil {
		return err
	}
	if _, err := findByID[models.User](s.db, ownerID, apperrors.Field("user_id", "The selected user id is invalid.")); err != nil {
		return err
	}
	if input.EmployeePaymentID != nil && *input.EmployeePaymentID != "" {
		if _, err := findByID[models.EmployeePayment](s.db, *input.EmployeePaymentID, apperrors.Field("employee_payment_id", "The selected employee payment id is invalid.")); err != nil {
			return err
		}
	}
	return nil
}

func isHayabusaPayout(input TransactionInput) bool {
	return input.Type == models.TransactionTypeExpense && input.ExpenseCategory == models.ExpenseCategoryHayabusa
}

func applyTransactionInput(t *models.Transaction, input TransactionInput, ownerID string) {
	groupID := input.TransactionGroupID

	t.Description = strings.TrimSpace(input.Description)
	t.Type = input.Type
	t.Amount = input.Amount
	t.Date = models.Day(input.Date)
	t.Category = input.Category
	t.ExpenseCategory = input.ExpenseCategory
	t.ExpenseSubcategory = input.ExpenseSubcategory
	t.Notes = input.Notes
	t.TransactionGroupID = &groupID
	t.UserID = ownerID
	t.EmployeePaymentID = nil
	if input.EmployeePaymentID != nil && *input.EmployeePaymentID != "" {
		t.EmployeePaymentID = input.EmployeePaymentID
	}
}
