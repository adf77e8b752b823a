package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Reservation books seats of a trip segment for a client. Seat, payment and
// cash mutations happen inside the reservation stored procedures.
type Reservation struct {
	gorm.Model

	CompanyID     uint    `json:"company_id" gorm:"index;not null"`
	TripSegmentID uint    `json:"trip_segment_id" gorm:"index;not null"`
	ClientID      uint    `json:"client_id" gorm:"index"`
	Seats         int     `json:"seats"`
	TotalAmount   float64 `json:"total_amount"`
	AmountPaid    float64 `json:"amount_paid"`
	Status        string  `json:"status" gorm:"default:confirmed;index"`

	CheckInAt   *time.Time `json:"check_in_at"`
	CheckedInBy *uint      `json:"checked_in_by"`
	IsNoShow    bool       `json:"is_no_show" gorm:"default:false"`

	TransferredToCompanyID *uint  `json:"transferred_to_company_id"`
	Notes                  string `json:"notes"`
	CreatedBy              uint   `json:"created_by"`

	TripSegment *TripSegment `gorm:"foreignKey:TripSegmentID" json:"trip_segment,omitempty"`
	Client      *Client      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

// Client is a passenger known to a company.
type Client struct {
	gorm.Model

	CompanyID uint   `json:"company_id" gorm:"not null;uniqueIndex:idx_client_phone"`
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" gorm:"uniqueIndex:idx_client_phone" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
}

// Transaction is a money movement recorded by the reservation procedures.
type Transaction struct {
	gorm.Model

	CompanyID     uint    `json:"company_id" gorm:"index"`
	ReservationID *uint   `json:"reservation_id" gorm:"index"`
	UserID        uint    `json:"user_id" gorm:"index"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	Kind          string  `json:"kind"`
}
