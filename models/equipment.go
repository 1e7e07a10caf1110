package models

import (
	"time"
)

// Equipment type values
const (
	EquipmentTypeComputer   = "computer"
	EquipmentTypeNotebook   = "notebook"
	EquipmentTypePrinter    = "printer"
	EquipmentTypeMonitor    = "monitor"
	EquipmentTypePeripheral = "peripheral"
)

// Equipment represents a piece of customer equipment brought in for repair
type Equipment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CustomerID   uint      `gorm:"not null;index" json:"customer_id"`
	Customer     *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Type         string    `gorm:"not null" json:"type"` // computer, notebook, printer, monitor, peripheral
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	SerialNumber string    `json:"serial_number"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Equipment model
func (Equipment) TableName() string {
	return "equipment"
}

// ValidEquipmentType reports whether t is one of the supported equipment types
func ValidEquipmentType(t string) bool {
	switch t {
	case EquipmentTypeComputer, EquipmentTypeNotebook, EquipmentTypePrinter,
		EquipmentTypeMonitor, EquipmentTypePeripheral:
		return true
	}
	return false
}
