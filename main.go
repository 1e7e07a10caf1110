package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fmtech/fmtech-api/config"
	"github.com/fmtech/fmtech-api/controllers"
	"github.com/fmtech/fmtech-api/middleware"
	"github.com/fmtech/fmtech-api/models"
	"github.com/fmtech/fmtech-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting FMTech repair shop API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Equipment{},
		&models.Technician{},
		&models.ServiceOrder{},
		&models.Service{},
		&models.ServiceOrderItem{},
		&models.Income{},
		&models.Expense{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize S3 storage for order photos when a bucket is configured;
	// photos fall back to local storage otherwise
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitS3Service(); err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		log.Println("S3 photo storage initialized")
	} else {
		log.Println("AWS_S3_BUCKET not set, storing photos locally")
	}

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the gin engine with all API routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Locally stored order photos
		v1.GET("/uploads/:filename", controllers.GetOrderPhoto)
	}

	// Authenticated routes
	authorized := v1.Group("")
	authorized.Use(middleware.EnsureValidToken(cfg))
	{
		// Database status endpoint
		authorized.GET("/database/status", databaseStatus)

		// Staff profiles
		authorized.POST("/users", controllers.CreateUser)
		authorized.GET("/users/me", controllers.GetMyProfile)
		authorized.PUT("/users/me", controllers.UpdateMyProfile)

		// Customers
		authorized.POST("/customers", controllers.CreateCustomer)
		authorized.GET("/customers", controllers.ListCustomers)
		authorized.GET("/customers/:id", controllers.GetCustomer)
		authorized.PUT("/customers/:id", controllers.UpdateCustomer)
		authorized.DELETE("/customers/:id", middleware.RequireAdmin(), controllers.DeleteCustomer)

		// Equipment
		authorized.POST("/equipment", controllers.CreateEquipment)
		authorized.GET("/equipment", controllers.ListEquipment)
		authorized.GET("/equipment/:id", controllers.GetEquipment)
		authorized.PUT("/equipment/:id", controllers.UpdateEquipment)
		authorized.DELETE("/equipment/:id", middleware.RequireAdmin(), controllers.DeleteEquipment)

		// Technicians
		authorized.POST("/technicians", controllers.CreateTechnician)
		authorized.GET("/technicians", controllers.ListTechnicians)
		authorized.GET("/technicians/:id", controllers.GetTechnician)
		authorized.PUT("/technicians/:id", controllers.UpdateTechnician)
		authorized.DELETE("/technicians/:id", middleware.RequireAdmin(), controllers.DeleteTechnician)

		// Service catalog
		authorized.POST("/services", controllers.CreateService)
		authorized.GET("/services", controllers.ListServices)
		authorized.GET("/services/:id", controllers.GetService)
		authorized.PUT("/services/:id", controllers.UpdateService)
		authorized.DELETE("/services/:id", middleware.RequireAdmin(), controllers.DeleteService)

		// Service orders
		authorized.POST("/orders", controllers.CreateOrder)
		authorized.GET("/orders", controllers.ListOrders)
		authorized.GET("/orders/:id", controllers.GetOrder)
		authorized.PUT("/orders/:id", controllers.UpdateOrder)
		authorized.DELETE("/orders/:id", middleware.RequireAdmin(), controllers.DeleteOrder)
		authorized.POST("/orders/:id/items", controllers.AddOrderItem)
		authorized.DELETE("/orders/:id/items/:itemID", controllers.DeleteOrderItem)
		authorized.POST("/orders/:id/photo", controllers.UploadOrderPhoto)

		// Income
		authorized.POST("/incomes", controllers.CreateIncome)
		authorized.GET("/incomes", controllers.ListIncomes)
		authorized.GET("/incomes/:id", controllers.GetIncome)
		authorized.PUT("/incomes/:id", controllers.UpdateIncome)
		authorized.DELETE("/incomes/:id", middleware.RequireAdmin(), controllers.DeleteIncome)

		// Expenses
		authorized.POST("/expenses", controllers.CreateExpense)
		authorized.GET("/expenses", controllers.ListExpenses)
		authorized.GET("/expenses/:id", controllers.GetExpense)
		authorized.PUT("/expenses/:id", controllers.UpdateExpense)
		authorized.DELETE("/expenses/:id", middleware.RequireAdmin(), controllers.DeleteExpense)

		// Dashboard
		authorized.GET("/dashboard", controllers.GetDashboard)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "FMTech API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
