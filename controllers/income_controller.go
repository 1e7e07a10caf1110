package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fmtech/fmtech-api/config"
	"github.com/fmtech/fmtech-api/models"
)

// IncomeRequest represents the request body for creating or updating an
// income record manually
type IncomeRequest struct {
	ServiceOrderID *uint     `json:"service_order_id"`
	Description    string    `json:"description" binding:"required"`
	Amount         *float64  `json:"amount" binding:"required,gte=0"`
	ReceivedAt     time.Time `json:"received_at" binding:"required"`
	PaymentMethod  string    `json:"payment_method" binding:"required"`
	PaymentStatus  string    `json:"payment_status" binding:"required"`
}

// CreateIncome handles POST /api/v1/incomes
func CreateIncome(c *gin.Context) {
	var req IncomeRequest
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

	db := config.GetDB()

	if req.ServiceOrderID != nil {
		var order models.ServiceOrder
		if err := db.First(&order, *req.ServiceOrderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Service order not found",
				},
			})
			return
		}
	}

	income := models.Income{
		ServiceOrderID: req.ServiceOrderID,
		Description:    req.Description,
		Amount:         *req.Amount,
		ReceivedAt:     req.ReceivedAt,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  req.PaymentStatus,
	}
	if err := db.Create(&income).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create income record",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    income,
	})
}

// ListIncomes handles GET /api/v1/incomes - most recent first
func ListIncomes(c *gin.Context) {
	db := config.GetDB()

	var incomes []models.Income
	if err := db.Preload("ServiceOrder").
		Order("received_at DESC, id DESC").
		Find(&incomes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list income records",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    incomes,
	})
}

// GetIncome handles GET /api/v1/incomes/:id
func GetIncome(c *gin.Context) {
	db := config.GetDB()

	var income models.Income
	if err := db.Preload("ServiceOrder").First(&income, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INCOME_NOT_FOUND",
				"message": "Income record not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    income,
	})
}

// UpdateIncome handles PUT /api/v1/incomes/:id
func UpdateIncome(c *gin.Context) {
	db := config.GetDB()

	var income models.Income
	if err := db.First(&income, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INCOME_NOT_FOUND",
				"message": "Income record not found",
			},
		})
		return
	}

	var req IncomeRequest
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

	updates := map[string]interface{}{
		"service_order_id": req.ServiceOrderID,
		"description":      req.Description,
		"amount":           *req.Amount,
		"received_at":      req.ReceivedAt,
		"payment_method":   req.PaymentMethod,
		"payment_status":   req.PaymentStatus,
	}
	if err := db.Model(&income).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update income record",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    income,
	})
}

// DeleteIncome handles DELETE /api/v1/incomes/:id
func DeleteIncome(c *gin.Context) {
	db := config.GetDB()

	var income models.Income
	if err := db.First(&income, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INCOME_NOT_FOUND",
				"message": "Income record not found",
			},
		})
		return
	}

	if err := db.Delete(&income).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete income record",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Income record deleted",
	})
}
