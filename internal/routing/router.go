// Package routing initializes the router and defines the routes for the API.
// It also sets up the common middleware chain and the version and health routes.
package routing

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rewear-server/internal/handlers"
	"rewear-server/internal/managers"
	"rewear-server/internal/middleware"
	"rewear-server/internal/schemas"
	"rewear-server/internal/utils"
)

// InitRouter initializes the router with the common middleware chain and all
// API routes. The starting points grant is resolved once at boot and passed
// through here.
func InitRouter(databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr, fileMgr managers.FileMgr, startingPoints int) *gin.Engine {
	router := gin.New()
	setupCommonMiddleware(router)
	setupRoutes(router, databaseMgr, mailMgr, jwtMgr, fileMgr, startingPoints)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(middleware.InjectTrace())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:19000"},
		AllowMethods:  []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept, Authorization", "Content-Type", "Origin"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr, fileMgr managers.FileMgr, startingPoints int) {
	// Version route
	router.GET("/", func(c *gin.Context) {
		apiVersion := os.Getenv("API_VERSION")
		if apiVersion == "" {
			apiVersion = "main:latest"
		}
		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    "ReWear",
		}
		c.JSON(http.StatusOK, metadata)
	})

	// Health route
	router.GET("/health", func(c *gin.Context) {
		if err := databaseMgr.GetPool().Ping(c); err != nil {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	// Uploaded images
	router.Static("/uploads", fileMgr.UploadDir())

	api := router.Group("/api")
	{
		users := api.Group("/users")
		userRoutes(users, databaseMgr, mailMgr, jwtMgr, fileMgr, startingPoints)

		items := api.Group("/items")
		itemRoutes(items, databaseMgr, jwtMgr, fileMgr)

		exchanges := api.Group("/exchanges")
		exchanges.Use(jwtMgr.JWTMiddleware())
		exchangeRoutes(exchanges, databaseMgr)

		chat := api.Group("/chat")
		chat.Use(jwtMgr.JWTMiddleware())
		chatRoutes(chat, databaseMgr)
	}
}

func userRoutes(users *gin.RouterGroup, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr, fileMgr managers.FileMgr, startingPoints int) {
	userHdl := handlers.NewUserHandler(&databaseMgr, &jwtMgr, &mailMgr, &fileMgr, startingPoints)

	users.POST("", middleware.ValidateAndSanitizeStruct(&schemas.RegistrationRequest{}), userHdl.RegisterUser)
	users.POST("/login", middleware.ValidateAndSanitizeStruct(&schemas.LoginRequest{}), userHdl.LoginUser)
	users.POST("/refresh", middleware.ValidateAndSanitizeStruct(&schemas.RefreshTokenRequest{}), userHdl.RefreshToken)
	users.POST("/:username/verify", middleware.ValidateAndSanitizeStruct(&schemas.VerificationRequest{}), userHdl.VerifyUser)
	users.DELETE("/:username/verify", userHdl.ResendVerificationToken)

	users.GET("/me", jwtMgr.JWTMiddleware(), userHdl.GetOwnProfile)
	users.PUT("", jwtMgr.JWTMiddleware(), middleware.ValidateAndSanitizeStruct(&schemas.UpdateProfileRequest{}), userHdl.UpdateProfile)
	users.PATCH("", jwtMgr.JWTMiddleware(), middleware.ValidateAndSanitizeStruct(&schemas.ChangePasswordRequest{}), userHdl.ChangePassword)
	users.POST("/avatar", jwtMgr.JWTMiddleware(), userHdl.UploadAvatar)
	users.GET("/:username", userHdl.GetUserProfile)
}

func itemRoutes(items *gin.RouterGroup, databaseMgr managers.DatabaseMgr, jwtMgr managers.JWTMgr, fileMgr managers.FileMgr) {
	itemHdl := handlers.NewItemHandler(&databaseMgr, &fileMgr)

	items.GET("", itemHdl.GetItems)
	items.GET("/featured", itemHdl.GetFeaturedItems)
	items.GET("/:"+utils.ItemIdKey, itemHdl.GetItem)

	items.POST("", jwtMgr.JWTMiddleware(), middleware.ValidateAndSanitizeStruct(&schemas.CreateItemRequest{}), itemHdl.CreateItem)
	items.PUT("/:"+utils.ItemIdKey, jwtMgr.JWTMiddleware(), middleware.ValidateAndSanitizeStruct(&schemas.UpdateItemRequest{}), itemHdl.UpdateItem)
	items.DELETE("/:"+utils.ItemIdKey, jwtMgr.JWTMiddleware(), itemHdl.DeleteItem)
	items.POST("/:"+utils.ItemIdKey+"/images", jwtMgr.JWTMiddleware(), itemHdl.UploadItemImage)
}

func exchangeRoutes(exchanges *gin.RouterGroup, databaseMgr managers.DatabaseMgr) {
	exchangeHdl := handlers.NewExchangeHandler(&databaseMgr)

	exchanges.POST("", middleware.ValidateAndSanitizeStruct(&schemas.CreateExchangeRequest{}), exchangeHdl.CreateExchange)
	exchanges.GET("", exchangeHdl.GetExchanges)
	exchanges.GET("/:"+utils.ExchangeIdKey, exchangeHdl.GetExchange)
	exchanges.PUT("/:"+utils.ExchangeIdKey+"/accept", exchangeHdl.AcceptExchange)
	exchanges.PUT("/:"+utils.ExchangeIdKey+"/reject", exchangeHdl.RejectExchange)
	exchanges.PUT("/:"+utils.ExchangeIdKey+"/cancel", exchangeHdl.CancelExchange)
	exchanges.PUT("/:"+utils.ExchangeIdKey+"/complete", exchangeHdl.CompleteExchange)
}

func chatRoutes(chat *gin.RouterGroup, databaseMgr managers.DatabaseMgr) {
	chatHdl := handlers.NewChatHandler(&databaseMgr)

	chat.POST("", middleware.ValidateAndSanitizeStruct(&schemas.ChatMessageRequest{}), chatHdl.SendMessage)
	chat.GET("", chatHdl.GetMessages)
}
