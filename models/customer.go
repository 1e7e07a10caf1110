package models

import (
	"time"
)

// Customer represents a customer of the repair shop
type Customer struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Name      string      `gorm:"not null" json:"name"`
	TaxID     string      `json:"tax_id"` // CPF/CNPJ
	Phone     string      `json:"phone"`
	Email     string      `json:"email"`
	Address   string      `json:"address"`
	Equipment []Equipment `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"equipment,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
