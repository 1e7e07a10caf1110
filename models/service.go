package models

import (
	"time"
)

// Service represents a billable service from the shop's catalog
type Service struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"not null" json:"description"`
	Value       float64   `gorm:"not null;check:value >= 0" json:"value"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// ServiceOrderItem is a line item linking a catalog service to a service order
type ServiceOrderItem struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	ServiceOrderID uint     `gorm:"not null;index" json:"service_order_id"`
	ServiceID      uint     `gorm:"not null;index" json:"service_id"`
	Service        *Service `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE" json:"service,omitempty"`
	Quantity       int      `gorm:"not null;check:quantity > 0" json:"quantity"`
}

// TableName specifies the table name for the ServiceOrderItem model
func (ServiceOrderItem) TableName() string {
	return "service_order_items"
}
