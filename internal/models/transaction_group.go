package models

import "strings"

// GroupType classifies which kind of transactions a group is meant for.
type GroupType string

const (
	GroupTypeIncome    GroupType = "income"
	GroupTypeExpense   GroupType = "expense"
	GroupTypeUniversal GroupType = "universal"
)

// SimpaskorGroupName names the protected system group.
const SimpaskorGroupName = "Simpaskor"

// DefaultGroupColor is applied when a group is created without a color.
const DefaultGroupColor = "#3B82F6"

// TransactionGroup is a named, colored bucket for transactions.
type TransactionGroup struct {
	Base
	Name        string    `gorm:"not null;index" json:"name"`
	Description string    `json:"description"`
	Type        GroupType `gorm:"type:varchar(20);not null;default:universal" json:"type"`
	Color       string    `gorm:"type:varchar(7);not null" json:"color"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedBy   string    `gorm:"type:uuid;not null;index" json:"created_by"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

// IsSimpaskor reports whether g is the protected system group.
func (g *TransactionGroup) IsSimpaskor() bool {
	return IsSimpaskorName(g.Name)
}

// IsSimpaskorName reports whether name identifies the protected system group.
func IsSimpaskorName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), SimpaskorGroupName)
}
