package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fmtech/fmtech-api/config"
	"github.com/fmtech/fmtech-api/models"
	"github.com/fmtech/fmtech-api/services"
	"github.com/fmtech/fmtech-api/utils"
)

// CustomerIntakeRequest carries the fields for registering a customer inline
// while opening a service order
type CustomerIntakeRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

// EquipmentIntakeRequest carries the fields for registering equipment inline
// while opening a service order
type EquipmentIntakeRequest struct {
	Type         string `json:"type"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Description  string `json:"description"`
}

// CreateOrderRequest represents the request body for opening a service order.
// Either customer_id or customer must be supplied, and either equipment_id
// or equipment.
type CreateOrderRequest struct {
	CustomerID     uint                    `json:"customer_id"`
	Customer       *CustomerIntakeRequest  `json:"customer"`
	EquipmentID    uint                    `json:"equipment_id"`
	Equipment      *EquipmentIntakeRequest `json:"equipment"`
	TechnicianID   *uint                   `json:"technician_id"`
	Status         models.OrderStatus      `json:"status"`
	ReportedDefect string                  `json:"reported_defect" binding:"required"`
	Diagnosis      string                  `json:"diagnosis"`
	Resolution     string                  `json:"resolution"`
	ServiceValue   float64                 `json:"service_value" binding:"omitempty,gte=0"`
}

// UpdateOrderRequest represents the request body for updating a service order.
// The order number and opening date are immutable and not accepted here.
type UpdateOrderRequest struct {
	TechnicianID   *uint               `json:"technician_id"`
	ClearTech      bool                `json:"clear_technician"`
	Status         *models.OrderStatus `json:"status"`
	ReportedDefect *string             `json:"reported_defect"`
	Diagnosis      *string             `json:"diagnosis"`
	Resolution     *string             `json:"resolution"`
	ServiceValue   *float64            `json:"service_value" binding:"omitempty,gte=0"`
	ClosedAt       *time.Time          `json:"closed_at"`
}

// AddOrderItemRequest represents the request body for adding a line item
type AddOrderItemRequest struct {
	ServiceID uint `json:"service_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrder handles POST /api/v1/orders - opens a new service order,
// resolving or creating the customer and equipment records it references
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
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

	intake := services.OrderIntake{
		CustomerID:     req.CustomerID,
		EquipmentID:    req.EquipmentID,
		TechnicianID:   req.TechnicianID,
		Status:         req.Status,
		ReportedDefect: req.ReportedDefect,
		Diagnosis:      req.Diagnosis,
		Resolution:     req.Resolution,
		ServiceValue:   req.ServiceValue,
	}
	if req.Customer != nil {
		intake.Customer = &services.CustomerIntake{
			Name:    req.Customer.Name,
			TaxID:   req.Customer.TaxID,
			Phone:   req.Customer.Phone,
			Email:   req.Customer.Email,
			Address: req.Customer.Address,
		}
	}
	if req.Equipment != nil {
		intake.Equipment = &services.EquipmentIntake{
			Type:         req.Equipment.Type,
			Brand:        req.Equipment.Brand,
			Model:        req.Equipment.Model,
			SerialNumber: req.Equipment.SerialNumber,
			Description:  req.Equipment.Description,
		}
	}

	db := config.GetDB()
	lifecycle := services.NewLifecycleService(db)
	order, err := lifecycle.OpenOrder(intake)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": vErr.Message,
					"details": gin.H{"field": vErr.Field},
				},
			})
			return
		}
		if errors.Is(err, services.ErrOrderNumberConflict) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NUMBER_CONFLICT",
					"message": "Could not allocate an order number, please retry",
				},
			})
			return
		}
		log.Printf("Failed to open service order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create service order",
			},
		})
		return
	}

	// Load the relationships to return complete data
	if err := db.Preload("Equipment.Customer").Preload("Technician").First(order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load service order details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists service orders, most recent
// first, optionally filtered by status or technician
func ListOrders(c *gin.Context) {
	db := config.GetDB()

	query := db.Preload("Equipment.Customer").Preload("Technician").Order("opened_at DESC, id DESC")

	if status := c.Query("status"); status != "" {
		if !models.ValidOrderStatus(models.OrderStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid status filter",
				},
			})
			return
		}
		query = query.Where("status = ?", status)
	}
	if technicianID := c.Query("technician_id"); technicianID != "" {
		query = query.Where("technician_id = ?", technicianID)
	}

	var orders []models.ServiceOrder
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list service orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - returns one service order with
// its items and, when a photo is attached, a presigned URL for it
func GetOrder(c *gin.Context) {
	db := config.GetDB()

	var order models.ServiceOrder
	if err := db.Preload("Equipment.Customer").
		Preload("Technician").
		Preload("Items.Service").
		First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Service order not found",
			},
		})
		return
	}

	// Attach a presigned photo URL when S3 is configured, otherwise fall
	// back to the locally served path
	if order.PhotoS3Key != nil {
		if s3Service := services.GetS3Service(); s3Service != nil {
			if url, err := s3Service.GetPresignedURL(*order.PhotoS3Key); err == nil && url != "" {
				order.PhotoURL = &url
			} else if err != nil {
				log.Printf("Failed to presign photo URL for order %s: %v", order.OrderNumber, err)
			}
		} else if url := utils.GetPhotoURL(*order.PhotoS3Key); url != "" {
			order.PhotoURL = &url
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id - updates a service order.
// When the status moves into completed, an income record is created in the
// same transaction.
func UpdateOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid order ID",
			},
		})
		return
	}

	var req UpdateOrderRequest
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
	lifecycle := services.NewLifecycleService(db)
	order, err := lifecycle.UpdateOrder(uint(id), services.OrderUpdate{
		TechnicianID:   req.TechnicianID,
		ClearTech:      req.ClearTech,
		Status:         req.Status,
		ReportedDefect: req.ReportedDefect,
		Diagnosis:      req.Diagnosis,
		Resolution:     req.Resolution,
		ServiceValue:   req.ServiceValue,
		ClosedAt:       req.ClosedAt,
	})
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Service order not found",
				},
			})
			return
		}
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": vErr.Message,
					"details": gin.H{"field": vErr.Field},
				},
			})
			return
		}
		log.Printf("Failed to update service order %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update service order",
			},
		})
		return
	}

	if err := db.Preload("Equipment.Customer").Preload("Technician").First(order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load service order details",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id - administrative removal of
// a service order and its line items
func DeleteOrder(c *gin.Context) {
	db := config.GetDB()

	var order models.ServiceOrder
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Service order not found",
			},
		})
		return
	}

	// Line items go with the order; the generated income record, if any,
	// stays and simply loses its order reference
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_order_id = ?", order.ID).Delete(&models.ServiceOrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Income{}).
			Where("service_order_id = ?", order.ID).
			Update("service_order_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		log.Printf("Failed to delete service order %s: %v", order.OrderNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete service order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Service order " + order.OrderNumber + " deleted",
	})
}

// AddOrderItem handles POST /api/v1/orders/:id/items - attaches a catalog
// service to an order as a line item
func AddOrderItem(c *gin.Context) {
	db := config.GetDB()

	var order models.ServiceOrder
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Service order not found",
			},
		})
		return
	}

	var req AddOrderItemRequest
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

	var service models.Service
	if err := db.First(&service, req.ServiceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVICE_NOT_FOUND",
				"message": "Catalog service not found",
			},
		})
		return
	}

	item := models.ServiceOrderItem{
		ServiceOrderID: order.ID,
		ServiceID:      service.ID,
		Quantity:       req.Quantity,
	}
	if err := db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add line item",
			},
		})
		return
	}

	if err := db.Preload("Service").First(&item, item.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load line item details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
	})
}

// DeleteOrderItem handles DELETE /api/v1/orders/:id/items/:itemID
func DeleteOrderItem(c *gin.Context) {
	db := config.GetDB()

	var item models.ServiceOrderItem
	if err := db.Where("service_order_id = ?", c.Param("id")).
		First(&item, c.Param("itemID")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ITEM_NOT_FOUND",
				"message": "Line item not found",
			},
		})
		return
	}

	if err := db.Delete(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete line item",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Line item deleted",
	})
}

// UploadOrderPhoto handles POST /api/v1/orders/:id/photo - attaches an
// equipment-condition photo to a service order. The photo goes to S3 when
// configured, otherwise to local storage.
func UploadOrderPhoto(c *gin.Context) {
	db := config.GetDB()

	var order models.ServiceOrder
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Service order not found",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "A photo file is required",
			},
		})
		return
	}

	if err := utils.ValidatePhotoFile(fileHeader); err != nil {
		var uploadErr *utils.PhotoUploadError
		code := "INVALID_FILE"
		if errors.As(err, &uploadErr) {
			code = uploadErr.Code
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	var photoKey string
	if s3Service := services.GetS3Service(); s3Service != nil {
		photoKey, err = s3Service.UploadOrderPhoto(order.OrderNumber, fileHeader)
	} else {
		photoKey, err = utils.SavePhotoLocally(fileHeader, utils.PhotoDir)
	}
	if err != nil {
		log.Printf("Failed to store photo for order %s: %v", order.OrderNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to store photo",
			},
		})
		return
	}

	if err := db.Model(&order).Update("photo_s3_key", photoKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to attach photo to service order",
			},
		})
		return
	}

	order.PhotoS3Key = &photoKey
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
