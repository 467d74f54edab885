package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/taskforge/task-manager-api/internal/auth"
	"github.com/taskforge/task-manager-api/internal/config"
	"github.com/taskforge/task-manager-api/internal/database"
	apierrors "github.com/taskforge/task-manager-api/internal/errors"
	"github.com/taskforge/task-manager-api/internal/handlers"
	"github.com/taskforge/task-manager-api/internal/middleware"
	"github.com/taskforge/task-manager-api/internal/repository"
	"github.com/taskforge/task-manager-api/internal/services"
	"github.com/taskforge/task-manager-api/internal/uploads"
)

func main() {
	// Load .env when present; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize avatar uploader (optional)
	uploader, err := uploads.NewCloudinaryUploader(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize uploader: %v", err)
	}

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret)

	var avatarUploader uploads.Uploader
	if uploader != nil {
		avatarUploader = uploader
	}
	userService := services.NewUserService(userRepo, taskRepo, avatarUploader, cfg.AdminInviteToken)
	taskService := services.NewTaskService(taskRepo, userRepo, cfg.EnforceAssigneeCheck)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokens)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Logger(), apierrors.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	requireAuth := middleware.RequireAuth(tokens, userRepo)
	requireAdmin := middleware.RequireAdmin()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Manager API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", userHandler.Logout)
			users.GET("/profile", requireAuth, userHandler.GetProfile)
			users.GET("", requireAuth, requireAdmin, userHandler.ListMembers)
			users.GET("/:id", requireAuth, requireAdmin, userHandler.GetUserByID)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("", requireAdmin, taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/dashboard-data", requireAdmin, taskHandler.GetDashboardData)
			tasks.GET("/user-dashboard-data", taskHandler.GetUserDashboardData)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.DELETE("/:id", requireAdmin, taskHandler.DeleteTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PUT("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.PUT("/:id/todo", taskHandler.UpdateTodoChecklist)
		}
	}

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
