package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fmtech/fmtech-api/models"
)

// maxNumberAttempts bounds the regenerate-and-retry loop when two concurrent
// creates race for the same order number and the unique index rejects one.
const maxNumberAttempts = 3

// ErrOrderNumberConflict is returned when an order number could not be
// allocated after exhausting all retry attempts.
var ErrOrderNumberConflict = errors.New("could not allocate order number")

// ErrOrderNotFound is returned when the referenced service order does not exist.
var ErrOrderNotFound = errors.New("service order not found")

// ValidationError is a user-correctable error attributed to a single field.
// Nothing is persisted when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CustomerIntake holds the fields for creating a customer inline while
// opening a service order
type CustomerIntake struct {
	Name    string
	TaxID   string
	Phone   string
	Email   string
	Address string
}

// EquipmentIntake holds the fields for creating equipment inline while
// opening a service order
type EquipmentIntake struct {
	Type         string
	Brand        string
	Model        string
	SerialNumber string
	Description  string
}

// OrderIntake is the input for opening a new service order. The caller
// supplies either an existing customer/equipment reference or enough fields
// to create one inline.
type OrderIntake struct {
	CustomerID     uint
	Customer       *CustomerIntake
	EquipmentID    uint
	Equipment      *EquipmentIntake
	TechnicianID   *uint
	Status         models.OrderStatus
	ReportedDefect string
	Diagnosis      string
	Resolution     string
	ServiceValue   float64
}

// OrderUpdate carries the mutable fields of a service order. Nil pointers
// leave the current value untouched. The order number and opening date are
// immutable and cannot appear here.
type OrderUpdate struct {
	TechnicianID   *uint
	ClearTech      bool
	Status         *models.OrderStatus
	ReportedDefect *string
	Diagnosis      *string
	Resolution     *string
	ServiceValue   *float64
	ClosedAt       *time.Time
}

// LifecycleService owns the service-order lifecycle: sequential numbering,
// intake resolution, and the income record generated when an order is
// completed. Every operation runs in a single transaction.
type LifecycleService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLifecycleService creates a lifecycle service backed by db
func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db, now: time.Now}
}

// OpenOrder resolves the customer and equipment references (creating them
// inline when needed), assigns the next order number for the current year,
// and persists the new order. All writes happen in one transaction; a
// failure in any step leaves no partial records behind.
func (s *LifecycleService) OpenOrder(intake OrderIntake) (*models.ServiceOrder, error) {
	if err := validateIntake(intake); err != nil {
		return nil, err
	}

	status := intake.Status
	if status == "" {
		status = models.StatusOpen
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		var order *models.ServiceOrder
		err := s.db.Transaction(func(tx *gorm.DB) error {
			customer, err := s.resolveCustomer(tx, intake)
			if err != nil {
				return err
			}

			equipment, err := s.resolveEquipment(tx, intake, customer)
			if err != nil {
				return err
			}

			number, err := s.nextOrderNumber(tx, s.now().Year())
			if err != nil {
				return err
			}

			order = &models.ServiceOrder{
				OrderNumber:    number,
				EquipmentID:    equipment.ID,
				TechnicianID:   intake.TechnicianID,
				OpenedAt:       s.now(),
				Status:         status,
				ReportedDefect: intake.ReportedDefect,
				Diagnosis:      intake.Diagnosis,
				Resolution:     intake.Resolution,
				ServiceValue:   intake.ServiceValue,
			}
			if err := tx.Create(order).Error; err != nil {
				return err
			}

			// An order can be opened already completed (walk-in repair
			// paid on the spot); that still counts as entering the
			// completed state.
			if order.Status == models.StatusCompleted {
				return s.completeOrder(tx, order)
			}
			return nil
		})
		if err == nil {
			return order, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race for the number; regenerate and retry
			continue
		}
		return nil, err
	}

	return nil, ErrOrderNumberConflict
}

// UpdateOrder applies update to the order with the given ID. When the status
// moves into completed from any other status, exactly one income record is
// created for the order in the same transaction; a failure in either write
// aborts both. Re-saving a completed order never creates a second income.
func (s *LifecycleService) UpdateOrder(id uint, update OrderUpdate) (*models.ServiceOrder, error) {
	if update.Status != nil && !models.ValidOrderStatus(*update.Status) {
		return nil, &ValidationError{Field: "status", Message: "invalid status"}
	}
	if update.ServiceValue != nil && *update.ServiceValue < 0 {
		return nil, &ValidationError{Field: "service_value", Message: "service value must not be negative"}
	}

	var order models.ServiceOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		previous := order.Status

		if update.TechnicianID != nil {
			order.TechnicianID = update.TechnicianID
		} else if update.ClearTech {
			order.TechnicianID = nil
		}
		if update.Status != nil {
			order.Status = *update.Status
		}
		if update.ReportedDefect != nil {
			order.ReportedDefect = *update.ReportedDefect
		}
		if update.Diagnosis != nil {
			order.Diagnosis = *update.Diagnosis
		}
		if update.Resolution != nil {
			order.Resolution = *update.Resolution
		}
		if update.ServiceValue != nil {
			order.ServiceValue = *update.ServiceValue
		}
		if update.ClosedAt != nil {
			order.ClosedAt = update.ClosedAt
		}

		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		// Fire only on the transition edge into completed
		if previous != models.StatusCompleted && order.Status == models.StatusCompleted {
			return s.completeOrder(tx, &order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// completeOrder records the side effects of entering the completed state:
// the closing date is stamped if still empty, and one income record is
// created unless the order already has one.
func (s *LifecycleService) completeOrder(tx *gorm.DB, order *models.ServiceOrder) error {
	if order.ClosedAt == nil {
		closed := s.now()
		order.ClosedAt = &closed
		if err := tx.Model(order).Update("closed_at", closed).Error; err != nil {
			return err
		}
	}

	// Duplicate guard, independent of the edge-trigger check: skip if any
	// income already references this order
	var count int64
	if err := tx.Model(&models.Income{}).
		Where("service_order_id = ?", order.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	income := models.Income{
		ServiceOrderID: &order.ID,
		Description:    fmt.Sprintf("Service - OS %s", order.OrderNumber),
		Amount:         order.ServiceValue,
		ReceivedAt:     s.now(),
		PaymentMethod:  models.PaymentPending,
		PaymentStatus:  models.PaymentPending,
	}
	return tx.Create(&income).Error
}

// nextOrderNumber scans the numbers already issued for the year and returns
// the highest sequence plus one, zero-padded to four digits. The first order
// of a year starts at 0001. Concurrent callers may compute the same number;
// the unique index on order_number rejects the loser and OpenOrder retries.
func (s *LifecycleService) nextOrderNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("OS-%d-", year)

	type numbered struct {
		ID          uint
		OrderNumber string
	}
	var rows []numbered
	if err := tx.Model(&models.ServiceOrder{}).
		Select("id", "order_number").
		Where("order_number LIKE ?", prefix+"%").
		Find(&rows).Error; err != nil {
		return "", err
	}

	maxSeq := 0
	var maxID uint
	for _, row := range rows {
		seq, err := strconv.Atoi(strings.TrimPrefix(row.OrderNumber, prefix))
		if err != nil {
			// Hand-edited number that no longer matches the format
			continue
		}
		if seq > maxSeq || (seq == maxSeq && row.ID > maxID) {
			maxSeq = seq
			maxID = row.ID
		}
	}

	return fmt.Sprintf("%s%04d", prefix, maxSeq+1), nil
}

// resolveCustomer returns the existing customer referenced by the intake or
// creates one from the inline fields. Missing both is a validation error
// attributed to the customer field.
func (s *LifecycleService) resolveCustomer(tx *gorm.DB, intake OrderIntake) (*models.Customer, error) {
	if intake.CustomerID != 0 {
		var customer models.Customer
		if err := tx.First(&customer, intake.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ValidationError{Field: "customer_id", Message: "customer not found"}
			}
			return nil, err
		}
		return &customer, nil
	}

	if intake.Customer == nil || intake.Customer.Name == "" {
		return nil, &ValidationError{Field: "customer_id", Message: "select an existing customer or provide a name to register one"}
	}

	customer := models.Customer{
		Name:    intake.Customer.Name,
		TaxID:   intake.Customer.TaxID,
		Phone:   intake.Customer.Phone,
		Email:   intake.Customer.Email,
		Address: intake.Customer.Address,
	}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// resolveEquipment returns the existing equipment referenced by the intake or
// creates one inline under the resolved customer
func (s *LifecycleService) resolveEquipment(tx *gorm.DB, intake OrderIntake, customer *models.Customer) (*models.Equipment, error) {
	if intake.EquipmentID != 0 {
		var equipment models.Equipment
		if err := tx.First(&equipment, intake.EquipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ValidationError{Field: "equipment_id", Message: "equipment not found"}
			}
			return nil, err
		}
		if equipment.CustomerID != customer.ID {
			return nil, &ValidationError{Field: "equipment_id", Message: "equipment belongs to a different customer"}
		}
		return &equipment, nil
	}

	if intake.Equipment == nil || intake.Equipment.Type == "" {
		return nil, &ValidationError{Field: "equipment_id", Message: "select existing equipment or provide a type to register it"}
	}
	if !models.ValidEquipmentType(intake.Equipment.Type) {
		return nil, &ValidationError{Field: "equipment_id", Message: "invalid equipment type"}
	}

	equipment := models.Equipment{
		CustomerID:   customer.ID,
		Type:         intake.Equipment.Type,
		Brand:        intake.Equipment.Brand,
		Model:        intake.Equipment.Model,
		SerialNumber: intake.Equipment.SerialNumber,
		Description:  intake.Equipment.Description,
	}
	if err := tx.Create(&equipment).Error; err != nil {
		return nil, err
	}
	return &equipment, nil
}

// validateIntake checks the order's own fields before touching the database
func validateIntake(intake OrderIntake) error {
	if intake.ReportedDefect == "" {
		return &ValidationError{Field: "reported_defect", Message: "reported defect is required"}
	}
	if intake.ServiceValue < 0 {
		return &ValidationError{Field: "service_value", Message: "service value must not be negative"}
	}
	if intake.Status != "" && !models.ValidOrderStatus(intake.Status) {
		return &ValidationError{Field: "status", Message: "invalid status"}
	}
	return nil
}
