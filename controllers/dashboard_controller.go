package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fmtech/fmtech-api/config"
	"github.com/fmtech/fmtech-api/models"
)

// GetDashboard handles GET /api/v1/dashboard - summary counters, the current
// month's financial totals, and the most recent activity
func GetDashboard(c *gin.Context) {
	db := config.GetDB()
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	var totalCustomers int64
	if err := db.Model(&models.Customer{}).Count(&totalCustomers).Error; err != nil {
		dashboardError(c)
		return
	}

	var openOrders int64
	if err := db.Model(&models.ServiceOrder{}).
		Where("status IN ?", []models.OrderStatus{
			models.StatusOpen,
			models.StatusInProgress,
			models.StatusAwaitingPart,
		}).
		Count(&openOrders).Error; err != nil {
		dashboardError(c)
		return
	}

	var completedOrders int64
	if err := db.Model(&models.ServiceOrder{}).
		Where("status = ?", models.StatusCompleted).
		Count(&completedOrders).Error; err != nil {
		dashboardError(c)
		return
	}

	var monthIncome float64
	if err := db.Model(&models.Income{}).
		Where("received_at >= ? AND received_at < ?", monthStart, monthEnd).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&monthIncome).Error; err != nil {
		dashboardError(c)
		return
	}

	var monthExpenses float64
	if err := db.Model(&models.Expense{}).
		Where("paid_at >= ? AND paid_at < ?", monthStart, monthEnd).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&monthExpenses).Error; err != nil {
		dashboardError(c)
		return
	}

	var recentOrders []models.ServiceOrder
	if err := db.Preload("Equipment.Customer").
		Order("opened_at DESC, id DESC").
		Limit(5).
		Find(&recentOrders).Error; err != nil {
		dashboardError(c)
		return
	}

	var recentExpenses []models.Expense
	if err := db.Order("paid_at DESC, id DESC").
		Limit(5).
		Find(&recentExpenses).Error; err != nil {
		dashboardError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_customers":  totalCustomers,
			"open_orders":      openOrders,
			"completed_orders": completedOrders,
			"month_income":     monthIncome,
			"month_expenses":   monthExpenses,
			"month_balance":    monthIncome - monthExpenses,
			"recent_orders":    recentOrders,
			"recent_expenses":  recentExpenses,
		},
	})
}

func dashboardError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": "Failed to load dashboard data",
		},
	})
}
