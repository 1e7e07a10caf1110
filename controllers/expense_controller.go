package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fmtech/fmtech-api/config"
	"github.com/fmtech/fmtech-api/models"
)

// ExpenseRequest represents the request body for creating or updating an expense
type ExpenseRequest struct {
	Description string    `json:"description" binding:"required"`
	Amount      *float64  `json:"amount" binding:"required,gte=0"`
	PaidAt      time.Time `json:"paid_at" binding:"required"`
	Status      string    `json:"status"`
	Note        string    `json:"note"`
}

func validExpenseStatus(s string) bool {
	return s == models.ExpensePending || s == models.ExpensePaid
}

// CreateExpense handles POST /api/v1/expenses
func CreateExpense(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	status := req.Status
	if status == "" {
		status = models.ExpensePending
	}
	if !validExpenseStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid expense status",
				"details": gin.H{"field": "status"},
			},
		})
		return
	}

	expense := models.Expense{
		Description: req.Description,
		Amount:      *req.Amount,
		PaidAt:      req.PaidAt,
		Status:      status,
		Note:        req.Note,
	}

	db := config.GetDB()
	if err := db.Create(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create expense",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    expense,
	})
}

// ListExpenses handles GET /api/v1/expenses - most recent first
func ListExpenses(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("paid_at DESC, id DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list expenses",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    expenses,
	})
}

// GetExpense handles GET /api/v1/expenses/:id
func GetExpense(c *gin.Context) {
	db := config.GetDB()

	var expense models.Expense
	if err := db.First(&expense, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPENSE_NOT_FOUND",
				"message": "Expense not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    expense,
	})
}

// UpdateExpense handles PUT /api/v1/expenses/:id
func UpdateExpense(c *gin.Context) {
	db := config.GetDB()

	var expense models.Expense
	if err := db.First(&expense, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPENSE_NOT_FOUND",
				"message": "Expense not found",
			},
		})
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	status := req.Status
	if status == "" {
		status = expense.Status
	}
	if !validExpenseStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid expense status",
				"details": gin.H{"field": "status"},
			},
		})
		return
	}

	updates := map[string]interface{}{
		"description": req.Description,
		"amount":      *req.Amount,
		"paid_at":     req.PaidAt,
		"status":      status,
		"note":        req.Note,
	}
	if err := db.Model(&expense).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update expense",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    expense,
	})
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
func DeleteExpense(c *gin.Context) {
	db := config.GetDB()

	var expense models.Expense
	if err := db.First(&expense, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPENSE_NOT_FOUND",
				"message": "Expense not found",
			},
		})
		return
	}

	if err := db.Delete(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete expense",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Expense deleted",
	})
}
