// internal/models/company.go
package models

import (
	"gorm.io/gorm"
)

// Company is a bus-transport operator; every other record is scoped to one.
type Company struct {
	gorm.Model

	Name     string `json:"name" binding:"required"`
	Email    string `gorm:"uniqueIndex" json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsActive bool   `json:"is_active"`

	Routes   []Route   `gorm:"foreignKey:CompanyID" json:"routes,omitempty"`
	Vehicles []Vehicle `gorm:"foreignKey:CompanyID" json:"vehicles,omitempty"`
}
