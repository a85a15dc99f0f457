package main

import (
	"fmt"
	"log"
	"net/http"

	"socialite/backend/internal/auth"
	"socialite/backend/internal/chat"
	"socialite/backend/internal/config"
	"socialite/backend/internal/database"
	"socialite/backend/internal/gateway"
	"socialite/backend/internal/handler"
	"socialite/backend/internal/presence"
	"socialite/backend/internal/relationship"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "socialite/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Socialite API
// @version         1.0
// @description     This is the API for the Socialite service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Services
	relations := relationship.NewService(db)
	directory := chat.NewDirectory(db)
	messageLog := chat.NewLog(db)
	registry := presence.NewRegistry()
	chatGateway := gateway.New(registry, directory, messageLog)

	// Handlers
	authHandler := handler.NewAuthHandler(db, cfg.JWTSecret)
	userHandler := handler.NewUserHandler(db, relations, registry)
	relationHandler := handler.NewRelationHandler(relations)
	messageHandler := handler.NewMessageHandler(directory, messageLog)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Real-time chat connection
	router.GET("/ws", chatGateway.Handle)

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.Middleware(cfg.JWTSecret))
		{
			userRoutes.GET("", userHandler.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", userHandler.GetMe)
			userRoutes.GET("/me/relations", relationHandler.GetRelations)
			userRoutes.GET("/online", auth.AdminMiddleware(db), userHandler.GetOnlineUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)

			// Friendship routes
			userRoutes.POST("/:id/request", relationHandler.SendRequest)
			userRoutes.POST("/:id/accept", relationHandler.AcceptRequest)
			userRoutes.POST("/:id/remove", relationHandler.RemoveRelation)
		}

		// Conversation routes (protected)
		convRoutes := apiV1.Group("/conversations")
		convRoutes.Use(auth.Middleware(cfg.JWTSecret))
		{
			convRoutes.GET("/with/:id/messages", messageHandler.GetConversationMessages)
		}
	}

	fmt.Printf("Server is running on :%s\n", cfg.Port)
	fmt.Printf("Swagger UI is available at http://localhost:%s/swagger/index.html\n", cfg.Port)
	log.Fatal(router.Run(":" + cfg.Port))
}
