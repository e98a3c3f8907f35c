// Package routing wires middleware and handlers into the gin engine.
package routing

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"server-identity/internal/handlers"
	"server-identity/internal/managers"
	"server-identity/internal/middleware"
	"server-identity/internal/schemas"
	"server-identity/internal/utils"
)

const (
	apiName    = "Server Identity"
	apiVersion = "1.0.0"
)

// InitRouter builds the engine with the shared middleware chain and all
// route groups.
func InitRouter(db managers.DatabaseMgr, jwt managers.JWTMgr, authHandler *handlers.AuthHandler, clientURL string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(middleware.LogRequest())
	router.Use(middleware.SanitizePath())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{clientURL},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		utils.WriteAndLogResponse(c, &schemas.MetadataDTO{ApiVersion: apiVersion, ApiName: apiName}, http.StatusOK)
	})
	router.GET("/health", func(c *gin.Context) {
		if err := db.GetPool().Ping(c.Request.Context()); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusServiceUnavailable, err)
			return
		}
		utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "ok"}, http.StatusOK)
	})

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.GET("/verify-email", authHandler.VerifyEmail)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	router.GET("/api/users/:username", authHandler.PublicProfile)

	accountGroup := router.Group("/api/account", jwt.JWTMiddleware(), middleware.AttachUser())
	{
		accountGroup.GET("/", authHandler.Account)
		accountGroup.DELETE("/", authHandler.DeleteAccount)
		accountGroup.POST("/resend-verify-email", authHandler.ResendVerification)
	}

	return router
}
