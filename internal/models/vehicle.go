// internal/models/vehicle.go
package models

import (
	"gorm.io/gorm"
)

type Vehicle struct {
	gorm.Model
	CompanyID uint   `json:"company_id" gorm:"index"`
	Plate     string `json:"plate"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	InService bool   `json:"in_service"`
}
