package services

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/models"
	"bukukas/internal/uuid"
)

// findByID loads a single row by primary key. Malformed ids and missing rows
// both map to notFound.
func findByID[T any](db *gorm.DB, id string, notFound *apperrors.AppError) (*T, error) {
	if !uuid.IsValid(id) {
		return nil, notFound
	}
	var row T
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &row, nil
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?.
func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

// selectUserSummary limits preloaded users to their public identity.
func selectUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "role")
}

// requireUserWithRole loads a user that must hold role, reporting a field
// validation error otherwise.
func requireUserWithRole(db *gorm.DB, field, id string, role models.Role) (*models.User, error) {
	invalid := apperrors.Field(field, fmt.Sprintf("The selected %s is invalid.", strings.ReplaceAll(field, "_", " ")))
	user, err := findByID[models.User](db, id, invalid)
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, invalid
	}
	return user, nil
}

// requireGroup loads a transaction group referenced by a payload field.
func requireGroup(db *gorm.DB, field, id string) (*models.TransactionGroup, error) {
	return findByID[models.TransactionGroup](db, id, apperrors.Field(field, "The selected transaction group id is invalid."))
}

// totalsRow receives the single-pass income/expense/count aggregate.
type totalsRow struct {
	TotalIncome      int64
	TotalExpense     int64
	TransactionCount int64
}

const totalsSelect = "COALESCE(SUM(CASE WHEN transactions.type = ? THEN transactions.amount ELSE 0 END), 0) AS total_income, " +
	"COALESCE(SUM(CASE WHEN transactions.type = ? THEN transactions.amount ELSE 0 END), 0) AS total_expense, " +
	"COUNT(*) AS transaction_count"

// scannedTime scans timestamps produced by SQL aggregates, which some drivers
// return as text rather than time values.
type scannedTime struct {
	Time  time.Time
	Valid bool
}

var scannedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Scan implements sql.Scanner.
func (t *scannedTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = scannedTime{}
		return nil
	case time.Time:
		*t = scannedTime{Time: v, Valid: true}
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("cannot scan %T into a timestamp", src)
}

func (t *scannedTime) parse(s string) error {
	for _, layout := range scannedTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = scannedTime{Time: parsed, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

// Value implements driver.Valuer.
func (t scannedTime) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time, nil
}

// Ptr returns the time or nil when the aggregate was NULL.
func (t scannedTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	out := t.Time
	return &out
}
