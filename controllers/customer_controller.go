package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fmtech/fmtech-api/config"
	"github.com/fmtech/fmtech-api/models"
)

// CustomerRequest represents the request body for creating or updating a customer
type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	TaxID   string `json:"tax_id"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

// CreateCustomer handles POST /api/v1/customers
func CreateCustomer(c *gin.Context) {
	var req CustomerRequest
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

	customer := models.Customer{
		Name:    req.Name,
		TaxID:   req.TaxID,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}

	db := config.GetDB()
	if err := db.Create(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create customer",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    customer,
	})
}

// ListCustomers handles GET /api/v1/customers - lists customers by name
func ListCustomers(c *gin.Context) {
	db := config.GetDB()

	var customers []models.Customer
	if err := db.Order("name ASC").Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list customers",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    customers,
	})
}

// GetCustomer handles GET /api/v1/customers/:id - returns one customer with
// their registered equipment
func GetCustomer(c *gin.Context) {
	db := config.GetDB()

	var customer models.Customer
	if err := db.Preload("Equipment").First(&customer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CUSTOMER_NOT_FOUND",
				"message": "Customer not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    customer,
	})
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func UpdateCustomer(c *gin.Context) {
	db := config.GetDB()

	var customer models.Customer
	if err := db.First(&customer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CUSTOMER_NOT_FOUND",
				"message": "Customer not found",
			},
		})
		return
	}

	var req CustomerRequest
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
		"name":    req.Name,
		"tax_id":  req.TaxID,
		"phone":   req.Phone,
		"email":   req.Email,
		"address": req.Address,
	}
	if err := db.Model(&customer).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update customer",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    customer,
	})
}

// DeleteCustomer handles DELETE /api/v1/customers/:id - removes a customer
// together with their equipment and the service orders opened for it
func DeleteCustomer(c *gin.Context) {
	db := config.GetDB()

	var customer models.Customer
	if err := db.First(&customer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CUSTOMER_NOT_FOUND",
				"message": "Customer not found",
			},
		})
		return
	}

	// Cascade in application code so the sqlite test driver behaves the
	// same as postgres with FK constraints enabled
	err := db.Transaction(func(tx *gorm.DB) error {
		var equipmentIDs []uint
		if err := tx.Model(&models.Equipment{}).
			Where("customer_id = ?", customer.ID).
			Pluck("id", &equipmentIDs).Error; err != nil {
			return err
		}

		if len(equipmentIDs) > 0 {
			var orderIDs []uint
			if err := tx.Model(&models.ServiceOrder{}).
				Where("equipment_id IN ?", equipmentIDs).
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

			if err := tx.Where("customer_id = ?", customer.ID).
				Delete(&models.Equipment{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&customer).Error
	})
	if err != nil {
		log.Printf("Failed to delete customer %d: %v", customer.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete customer",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Customer deleted",
	})
}
