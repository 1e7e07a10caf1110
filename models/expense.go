package models

import (
	"time"
)

// Expense status values
const (
	ExpensePending = "pending"
	ExpensePaid    = "paid"
)

// Expense represents a shop expense, independent of any service order
type Expense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"not null" json:"description"`
	Amount      float64   `gorm:"not null;check:amount >= 0" json:"amount"`
	PaidAt      time.Time `gorm:"not null" json:"paid_at"`
	Status      string    `gorm:"not null;default:'pending'" json:"status"` // pending, paid
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}
