// Package policy decides which roles may act on which resources and which
// rows each role can see. Route middleware evaluates Authorize once per
// request; services apply Scope and CanAccessRow to queries and loaded rows.
package policy

import (
	"gorm.io/gorm"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/models"
)

// Action is an operation on a resource.
type Action string

const (
	ActionList         Action = "list"
	ActionView         Action = "view"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionApprove      Action = "approve"
	ActionUpdateStatus Action = "update_status"
)

// Resource is a protected kind of record.
type Resource string

const (
	ResourceTransaction      Resource = "transaction"
	ResourceReport           Resource = "report"
	ResourceTransactionGroup Resource = "transaction_group"
	ResourceEmployeePayment  Resource = "employee_payment"
	ResourceHayabusaPayment  Resource = "hayabusa_payment"
	ResourceUser             Resource = "user"
	ResourceSchedule         Resource = "schedule"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role models.Role
}

// IsStaff reports whether the actor is admin or finance.
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleFinance
}

type rule struct {
	action   Action
	resource Resource
}

var (
	staff       = roles(models.RoleAdmin, models.RoleFinance)
	bookkeepers = roles(models.RoleAdmin, models.RoleFinance, models.RoleUser)
	payees      = roles(models.RoleAdmin, models.RoleFinance, models.RoleHayabusa)
	admins      = roles(models.RoleAdmin)
	everyone    = roles(models.Roles...)
)

// table lists every allowed (action, resource) pair. Anything absent is denied.
var table = map[rule]map[models.Role]bool{
	{ActionList, ResourceTransaction}:   bookkeepers,
	{ActionView, ResourceTransaction}:   bookkeepers,
	{ActionCreate, ResourceTransaction}: bookkeepers,
	{ActionUpdate, ResourceTransaction}: bookkeepers,
	{ActionDelete, ResourceTransaction}: bookkeepers,

	{ActionView, ResourceReport}: bookkeepers,

	{ActionList, ResourceTransactionGroup}:   bookkeepers,
	{ActionView, ResourceTransactionGroup}:   bookkeepers,
	{ActionCreate, ResourceTransactionGroup}: bookkeepers,
	{ActionUpdate, ResourceTransactionGroup}: bookkeepers,
	{ActionDelete, ResourceTransactionGroup}: bookkeepers,

	{ActionList, ResourceEmployeePayment}:    staff,
	{ActionView, ResourceEmployeePayment}:    staff,
	{ActionCreate, ResourceEmployeePayment}:  staff,
	{ActionUpdate, ResourceEmployeePayment}:  staff,
	{ActionDelete, ResourceEmployeePayment}:  staff,
	{ActionApprove, ResourceEmployeePayment}: staff,

	{ActionList, ResourceHayabusaPayment}:         payees,
	{ActionView, ResourceHayabusaPayment}:         payees,
	{ActionCreate, ResourceHayabusaPayment}:       staff,
	{ActionUpdate, ResourceHayabusaPayment}:       staff,
	{ActionDelete, ResourceHayabusaPayment}:       staff,
	{ActionUpdateStatus, ResourceHayabusaPayment}: staff,

	{ActionList, ResourceUser}:   admins,
	{ActionView, ResourceUser}:   admins,
	{ActionCreate, ResourceUser}: admins,
	{ActionUpdate, ResourceUser}: admins,

	{ActionView, ResourceSchedule}: everyone,
}

func roles(rs ...models.Role) map[models.Role]bool {
	m := make(map[models.Role]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// Allowed reports whether role may perform action on resource.
func Allowed(role models.Role, action Action, resource Resource) bool {
	return table[rule{action, resource}][role]
}

// Authorize returns ErrForbidden unless role may perform action on resource.
func Authorize(role models.Role, action Action, resource Resource) error {
	if !Allowed(role, action, resource) {
		return apperrors.ErrForbidden
	}
	return nil
}

// visibility describes which rows of a resource a role can see.
type visibility int

const (
	seeNone visibility = iota
	seeOwn
	seeAll
)

// ownerColumns names the column that ties a row to its owning user.
var ownerColumns = map[Resource]string{
	ResourceTransaction:     "transactions.user_id",
	ResourceReport:          "transactions.user_id",
	ResourceEmployeePayment: "employee_payments.user_id",
	ResourceHayabusaPayment: "hayabusa_payments.hayabusa_user_id",
}

func visible(actor Actor, resource Resource) visibility {
	if actor.IsStaff() {
		return seeAll
	}
	switch resource {
	case ResourceTransaction, ResourceReport:
		if actor.Role == models.RoleUser {
			return seeOwn
		}
	case ResourceHayabusaPayment:
		if actor.Role == models.RoleHayabusa {
			return seeOwn
		}
	case ResourceTransactionGroup:
		if actor.Role == models.RoleUser {
			return seeAll
		}
	}
	return seeNone
}

// Scope returns a GORM scope restricting a query to the rows actor may see.
func Scope(actor Actor, resource Resource) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch visible(actor, resource) {
		case seeAll:
			return db
		case seeOwn:
			return db.Where(ownerColumns[resource]+" = ?", actor.ID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// CanAccessRow applies the Scope rule to a single loaded row owned by ownerID.
func CanAccessRow(actor Actor, resource Resource, ownerID string) bool {
	switch visible(actor, resource) {
	case seeAll:
		return true
	case seeOwn:
		return ownerID == actor.ID
	default:
		return false
	}
}

// ResolveOwner picks the owning user for a new or updated row. role=user is
// always forced to itself. Staff may choose; with no choice the fallback
// (the existing owner on update, empty on create) wins, then the actor.
func ResolveOwner(actor Actor, requested *string, fallback string) string {
	if !actor.IsStaff() {
		return actor.ID
	}
	if requested != nil && *requested != "" {
		return *requested
	}
	if fallback != "" {
		return fallback
	}
	return actor.ID
}

// CanUpdateGroup guards group updates. Renaming the Simpaskor group is
// refused first; otherwise only its creator or an admin may change it.
func CanUpdateGroup(actor Actor, group *models.TransactionGroup, newName string) error {
	if group.IsSimpaskor() && !models.IsSimpaskorName(newName) {
		return apperrors.ErrProtectedGroup
	}
	return canMutateGroup(actor, group)
}

// CanDeleteGroup guards group deletion. The Simpaskor group is never deleted.
func CanDeleteGroup(actor Actor, group *models.TransactionGroup) error {
	if group.IsSimpaskor() {
		return apperrors.ErrProtectedGroup
	}
	return canMutateGroup(actor, group)
}

func canMutateGroup(actor Actor, group *models.TransactionGroup) error {
	if actor.Role == models.RoleAdmin || group.CreatedBy == actor.ID {
		return nil
	}
	return apperrors.ErrForbidden
}

// CanChangeRole refuses role changes an actor makes to their own account.
func CanChangeRole(actor Actor, targetID string, current, requested models.Role) error {
	if actor.ID == targetID && current != requested {
		return apperrors.ErrSelfRoleChange
	}
	return nil
}
