package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fmtech/fmtech-api/config"
	"github.com/fmtech/fmtech-api/models"
)

// EquipmentRequest represents the request body for creating or updating equipment
type EquipmentRequest struct {
	CustomerID   uint   `json:"customer_id" binding:"required"`
	Type         string `json:"type" binding:"required"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Description  string `json:"description"`
}

// CreateEquipment handles POST /api/v1/equipment
func CreateEquipment(c *gin.Context) {
	var req EquipmentRequest
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

	if !models.ValidEquipmentType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid equipment type",
				"details": gin.H{"field": "type"},
			},
		})
		return
	}

	db := config.GetDB()

	var customer models.Customer
	if err := db.First(&customer, req.CustomerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CUSTOMER_NOT_FOUND",
				"message": "Customer not found",
			},
		})
		return
	}

	equipment := models.Equipment{
		CustomerID:   req.CustomerID,
		Type:         req.Type,
		Brand:        req.Brand,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Description:  req.Description,
	}
	if err := db.Create(&equipment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create equipment",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    equipment,
	})
}

// ListEquipment handles GET /api/v1/equipment - optionally filtered by customer
func ListEquipment(c *gin.Context) {
	db := config.GetDB()

	query := db.Preload("Customer")
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var equipment []models.Equipment
	if err := query.Find(&equipment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list equipment",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    equipment,
	})
}

// GetEquipment handles GET /api/v1/equipment/:id
func GetEquipment(c *gin.Context) {
	db := config.GetDB()

	var equipment models.Equipment
	if err := db.Preload("Customer").First(&equipment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EQUIPMENT_NOT_FOUND",
				"message": "Equipment not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    equipment,
	})
}

// UpdateEquipment handles PUT /api/v1/equipment/:id
func UpdateEquipment(c *gin.Context) {
	db := config.GetDB()

	var equipment models.Equipment
	if err := db.First(&equipment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EQUIPMENT_NOT_FOUND",
				"message": "Equipment not found",
			},
		})
		return
	}

	var req EquipmentRequest
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

	if !models.ValidEquipmentType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid equipment type",
				"details": gin.H{"field": "type"},
			},
		})
		return
	}

	updates := map[string]interface{}{
		"customer_id":   req.CustomerID,
		"type":          req.Type,
		"brand":         req.Brand,
		"model":         req.Model,
		"serial_number": req.SerialNumber,
		"description":   req.Description,
	}
	if err := db.Model(&equipment).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update equipment",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    equipment,
	})
}

// DeleteEquipment handles DELETE /api/v1/equipment/:id - removes equipment
// and the service orders opened for it
func DeleteEquipment(c *gin.Context) {
	db := config.GetDB()

	var equipment models.Equipment
	if err := db.First(&equipment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EQUIPMENT_NOT_FOUND",
				"message": "Equipment not found",
			},
		})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var orderIDs []uint
		if err := tx.Model(&models.ServiceOrder{}).
			Where("equipment_id = ?", equipment.ID).
			Pluck("id", &orderIDs).Error; err != nil {
			return err
		}

		if len(orderIDs) > 0 {
			if err := tx.Where("service_order_id IN ?", orderIDs).
				Delete(&models.ServiceOrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Income{}).
				Where("service_order_id IN ?", orderIDs).
				Update("service_order_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", orderIDs).
				Delete(&models.ServiceOrder{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&equipment).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete equipment",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Equipment deleted",
	})
}
