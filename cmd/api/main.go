package main

import (
	"context"
	"log"
	"os"
	"time"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Vehicle Rental Management API
// @version         1.0
// @description     REST API for fleet inventory, customers, rentals, maintenance, and reporting.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	rentalRepo := repository.NewRentalRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, middleware.GetJWTSecret())
	vehicleService := service.NewVehicleService(vehicleRepo, rentalRepo, maintenanceRepo, auditRepo, txManager)
	customerService := service.NewCustomerService(customerRepo, rentalRepo, auditRepo, txManager)
	rentalService := service.NewRentalService(rentalRepo, vehicleRepo, customerRepo, auditRepo, txManager, wsHub)
	maintenanceService := service.NewMaintenanceService(maintenanceRepo, vehicleRepo, auditRepo, txManager, wsHub)
	reportService := service.NewReportService(db)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, userRepo)
	vehicleHandler := handler.NewVehicleHandler(vehicleService, userRepo)
	customerHandler := handler.NewCustomerHandler(customerService, userRepo)
	rentalHandler := handler.NewRentalHandler(rentalService, userRepo)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService, userRepo)
	reportHandler := handler.NewReportHandler(reportService, userRepo)
	auditHandler := handler.NewAuditHandler(auditService, userRepo)

	// Overdue sweep: hourly, flips past-due scheduled maintenance to overdue
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := maintenanceService.MarkOverdue(ctx); err != nil {
			log.Printf("overdue maintenance sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule overdue sweep: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret(), userRepo)
	})

	// Register API Routes
	api := router.Group("/api/v1")
	userHandler.RegisterRoutes(api)
	vehicleHandler.RegisterRoutes(api)
	customerHandler.RegisterRoutes(api)
	rentalHandler.RegisterRoutes(api)
	maintenanceHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
