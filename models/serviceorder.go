package models

import (
	"time"
)

// OrderStatus is the lifecycle state of a service order
type OrderStatus string

// Service order status values
const (
	StatusOpen         OrderStatus = "open"
	StatusInProgress   OrderStatus = "in_progress"
	StatusAwaitingPart OrderStatus = "awaiting_part"
	StatusCompleted    OrderStatus = "completed"
	StatusCancelled    OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known statuses
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusAwaitingPart, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ServiceOrder represents a repair ticket tracking one piece of equipment
// through diagnosis and repair. The order number is assigned once at creation
// and never changes afterwards.
type ServiceOrder struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	OrderNumber    string             `gorm:"uniqueIndex;not null" json:"order_number"` // OS-<year>-<4-digit sequence>
	EquipmentID    uint               `gorm:"not null;index" json:"equipment_id"`
	Equipment      *Equipment         `gorm:"foreignKey:EquipmentID;constraint:OnDelete:CASCADE" json:"equipment,omitempty"`
	TechnicianID   *uint              `gorm:"index" json:"technician_id"`
	Technician     *Technician        `gorm:"foreignKey:TechnicianID;constraint:OnDelete:SET NULL" json:"technician,omitempty"`
	OpenedAt       time.Time          `gorm:"not null" json:"opened_at"`
	ClosedAt       *time.Time         `json:"closed_at"`
	Status         OrderStatus        `gorm:"not null;default:'open'" json:"status"`
	ReportedDefect string             `gorm:"not null" json:"reported_defect"`
	Diagnosis      string             `json:"diagnosis"`
	Resolution     string             `json:"resolution"`
	ServiceValue   float64            `gorm:"not null;default:0;check:service_value >= 0" json:"service_value"`
	PhotoS3Key     *string            `json:"photo_s3_key,omitempty"`
	PhotoURL       *string            `gorm:"-" json:"photo_url,omitempty"` // computed, presigned URL for the intake photo
	Items          []ServiceOrderItem `gorm:"foreignKey:ServiceOrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// TableName specifies the table name for the ServiceOrder model
func (ServiceOrder) TableName() string {
	return "service_orders"
}
