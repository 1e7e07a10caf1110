package models

import (
	"time"
)

// Payment placeholder used for auto-generated income records
const PaymentPending = "Pending"

// Income represents a received or receivable payment, optionally tied to the
// service order that generated it
type Income struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	ServiceOrderID *uint         `gorm:"index" json:"service_order_id"`
	ServiceOrder   *ServiceOrder `gorm:"foreignKey:ServiceOrderID;constraint:OnDelete:SET NULL" json:"service_order,omitempty"`
	Description    string        `gorm:"not null" json:"description"`
	Amount         float64       `gorm:"not null;check:amount >= 0" json:"amount"`
	ReceivedAt     time.Time     `gorm:"not null" json:"received_at"`
	PaymentMethod  string        `gorm:"not null" json:"payment_method"`
	PaymentStatus  string        `gorm:"not null" json:"payment_status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Income model
func (Income) TableName() string {
	return "incomes"
}
