package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records a non-financial state change made through the API.
type AuditLog struct {
	gorm.Model
	CompanyID  uint              `json:"company_id" gorm:"index"`
	UserID     uint              `json:"user_id" gorm:"index"`
	EntityType string            `json:"entity_type" gorm:"index"`
	EntityID   uint              `json:"entity_id" gorm:"index"`
	Action     string            `json:"action"` // "check_in", "transfer", "no_show"
	Details    datatypes.JSONMap `json:"details" gorm:"type:jsonb"`
}

// Invitation lets a company invite a new member by email.
type Invitation struct {
	gorm.Model
	CompanyID  uint       `json:"company_id" gorm:"index"`
	Email      string     `json:"email" gorm:"index"`
	Role       string     `json:"role"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at"`
}
