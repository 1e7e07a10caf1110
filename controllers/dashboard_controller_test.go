package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fmtech/fmtech-api/config"
	"github.com/fmtech/fmtech-api/models"
)

func setupDashboardTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Equipment{},
		&models.ServiceOrder{},
		&models.Income{},
		&models.Expense{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func TestGetDashboard(t *testing.T) {
	db := setupDashboardTestDB(t)
	config.SetDB(db)

	customer := models.Customer{Name: "Dash Customer"}
	db.Create(&customer)
	equipment := models.Equipment{CustomerID: customer.ID, Type: models.EquipmentTypeComputer}
	db.Create(&equipment)

	now := time.Now()

	// Two orders still on the bench, one completed, one cancelled
	orders := []models.ServiceOrder{
		{OrderNumber: "OS-2024-0001", EquipmentID: equipment.ID, OpenedAt: now, Status: models.StatusOpen, ReportedDefect: "a"},
		{OrderNumber: "OS-2024-0002", EquipmentID: equipment.ID, OpenedAt: now, Status: models.StatusAwaitingPart, ReportedDefect: "b"},
		{OrderNumber: "OS-2024-0003", EquipmentID: equipment.ID, OpenedAt: now, Status: models.StatusCompleted, ReportedDefect: "c"},
		{OrderNumber: "OS-2024-0004", EquipmentID: equipment.ID, OpenedAt: now, Status: models.StatusCancelled, ReportedDefect: "d"},
	}
	for i := range orders {
		db.Create(&orders[i])
	}

	// This month's money plus an old income that must not count
	incomes := []models.Income{
		{Description: "Repair", Amount: 300, ReceivedAt: now, PaymentMethod: "cash", PaymentStatus: "paid"},
		{Description: "Repair", Amount: 150, ReceivedAt: now, PaymentMethod: "card", PaymentStatus: "paid"},
		{Description: "Old repair", Amount: 999, ReceivedAt: now.AddDate(0, -2, 0), PaymentMethod: "cash", PaymentStatus: "paid"},
	}
	for i := range incomes {
		db.Create(&incomes[i])
	}

	expenses := []models.Expense{
		{Description: "Parts order", Amount: 120, PaidAt: now, Status: models.ExpensePaid},
		{Description: "Old rent", Amount: 800, PaidAt: now.AddDate(0, -2, 0), Status: models.ExpensePaid},
	}
	for i := range expenses {
		db.Create(&expenses[i])
	}

	router := setupTestRouter()
	router.GET("/dashboard", GetDashboard)

	req, _ := http.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total_customers"])
	assert.Equal(t, float64(2), data["open_orders"], "open and awaiting_part count as open work")
	assert.Equal(t, float64(1), data["completed_orders"])
	assert.Equal(t, float64(450), data["month_income"])
	assert.Equal(t, float64(120), data["month_expenses"])
	assert.Equal(t, float64(330), data["month_balance"])

	recentOrders := data["recent_orders"].([]interface{})
	assert.Len(t, recentOrders, 4)

	recentExpenses := data["recent_expenses"].([]interface{})
	assert.Len(t, recentExpenses, 2)
}

func TestGetDashboard_EmptyDatabase(t *testing.T) {
	db := setupDashboardTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.GET("/dashboard", GetDashboard)

	req, _ := http.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total_customers"])
	assert.Equal(t, float64(0), data["month_income"])
	assert.Equal(t, float64(0), data["month_balance"])
}
