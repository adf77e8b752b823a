package models

import (
	"gorm.io/gorm"
)

const StopTypeTerminal = "terminal"

// Stop is a named terminal or station owned by a company.
// FullLocation keeps the legacy "City, State|Name" encoding. The identity
// index ignores soft-deleted rows.
type Stop struct {
	gorm.Model

	CompanyID    uint   `json:"company_id" gorm:"not null;uniqueIndex:idx_stop_identity,where:deleted_at IS NULL"`
	Name         string `json:"name" gorm:"not null;uniqueIndex:idx_stop_identity"`
	City         string `json:"city" gorm:"not null;uniqueIndex:idx_stop_identity"`
	State        string `json:"state" gorm:"uniqueIndex:idx_stop_identity"`
	Country      string `json:"country"`
	FullLocation string `json:"full_location" gorm:"index"`
	StopType     string `json:"stop_type" gorm:"default:terminal"`
	IsActive     bool   `json:"is_active"`
}
