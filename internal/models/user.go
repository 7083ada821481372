package models

// Role is the closed set of roles a user may hold.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleFinance  Role = "finance"
	RoleUser     Role = "user"
	RoleHayabusa Role = "hayabusa"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleFinance, RoleUser, RoleHayabusa}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFinance, RoleUser, RoleHayabusa:
		return true
	}
	return false
}

// User represents an account holder. Users are never hard-deleted.
type User struct {
	Base
	Name              string `gorm:"not null" json:"name"`
	Email             string `gorm:"uniqueIndex;not null" json:"email"`
	Password          string `gorm:"not null" json:"-"`
	Role              Role   `gorm:"type:varchar(20);not null;default:user;index" json:"role"`
	BankName          string `json:"bank_name,omitempty"`
	AccountNumber     string `json:"account_number,omitempty"`
	AccountHolderName string `json:"account_holder_name,omitempty"`
	ProfilePicture    string `json:"profile_picture,omitempty"`
	TokenVersion      int    `gorm:"not null;default:0" json:"-"`
}
