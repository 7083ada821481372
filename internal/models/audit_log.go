package models

import "gorm.io/datatypes"

// AuditLog records mutations of financial records and users.
type AuditLog struct {
	Base
	UserID       string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string         `gorm:"not null" json:"action"`
	ResourceType string         `gorm:"not null;index:idx_audit_resource" json:"resource_type"`
	ResourceID   string         `gorm:"type:uuid;index:idx_audit_resource" json:"resource_id"`
	IPAddress    string         `json:"ip_address"`
	Changes      datatypes.JSON `json:"changes,omitempty"`
}
