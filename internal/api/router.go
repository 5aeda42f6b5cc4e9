package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/atriumcms/atrium/internal/api/handlers"
	"github.com/atriumcms/atrium/internal/api/middleware"
	"github.com/atriumcms/atrium/internal/auth"
	"github.com/atriumcms/atrium/internal/config"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/atriumcms/atrium/internal/session"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *gorm.DB) (*gin.Engine, error) {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())

	issuer := auth.NewTokenIssuer(cfg.Auth)
	sessions := session.New(db)
	authService := service.NewAuthService(db, issuer, sessions, cfg.Auth)

	var oidcAuth *auth.OIDCAuthenticator
	if cfg.OIDC.Enabled() {
		var err error
		oidcAuth, err = auth.NewOIDCAuthenticator(context.Background(), cfg.OIDC, db)
		if err != nil {
			return nil, err
		}
		slog.Info("Federated login enabled", "issuer", cfg.OIDC.IssuerURL)
	}

	authHandler := handlers.NewAuthHandler(authService, oidcAuth, cfg)
	adminHandler := handlers.NewAdminHandler(db, authService)
	postHandler := handlers.NewPostHandler(db)
	categoryHandler := handlers.NewCategoryHandler(db)
	tagHandler := handlers.NewTagHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	recruitmentHandler := handlers.NewRecruitmentHandler(db)
	mediaHandler, err := handlers.NewMediaHandler(db, cfg.Storage.MediaDir)
	if err != nil {
		return nil, err
	}

	secure := cfg.Server.Mode == "production"
	requireAuth := middleware.RequireAuth(issuer, db, secure)

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", handlers.HealthCheck)
		public.POST("/auth/register", authHandler.Register)
		public.GET("/auth/exists", authHandler.Exists)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/token", authHandler.Token)
		public.POST("/auth/refresh", authHandler.Refresh)
		public.POST("/auth/refresh-token", authHandler.RefreshToken)
		public.POST("/auth/logout", authHandler.Logout)
		public.GET("/auth/validate", authHandler.Validate)
		public.GET("/auth/oidc/login", authHandler.OIDCLogin)
		public.GET("/auth/oidc/callback", authHandler.OIDCCallback)

		// Published content is world-readable
		public.GET("/posts", postHandler.ListPublished)
		public.GET("/posts/:slug", postHandler.GetBySlug)
		public.GET("/categories", categoryHandler.List)
		public.GET("/tags", tagHandler.List)
		public.GET("/services", serviceHandler.List)
		public.GET("/recruitments", recruitmentHandler.ListOpen)
	}

	// Served media files
	router.Static("/uploads", cfg.Storage.MediaDir)

	// Protected routes (require a valid access token)
	protected := router.Group("/api/v1")
	protected.Use(requireAuth)
	{
		protected.GET("/auth/me", handlers.GetCurrentUser(authService))
		protected.PUT("/auth/me", handlers.UpdateCurrentUser(authService))

		protected.POST("/posts", middleware.RequirePermission("post:create"), postHandler.Create)
		protected.PUT("/posts/:id", middleware.RequirePermission("post:update"), postHandler.Update)
		protected.PUT("/posts/:id/publish", middleware.RequirePermission("post:publish"), postHandler.SetPublished)
		protected.DELETE("/posts/:id", middleware.RequirePermission("post:delete"), postHandler.Delete)

		protected.POST("/categories", middleware.RequirePermission("category:manage"), categoryHandler.Create)
		protected.PUT("/categories/:id", middleware.RequirePermission("category:manage"), categoryHandler.Update)
		protected.DELETE("/categories/:id", middleware.RequirePermission("category:manage"), categoryHandler.Delete)

		protected.POST("/tags", middleware.RequirePermission("tag:manage"), tagHandler.Create)
		protected.DELETE("/tags/:id", middleware.RequirePermission("tag:manage"), tagHandler.Delete)

		protected.POST("/services", middleware.RequirePermission("service:manage"), serviceHandler.Create)
		protected.PUT("/services/:id", middleware.RequirePermission("service:manage"), serviceHandler.Update)
		protected.DELETE("/services/:id", middleware.RequirePermission("service:manage"), serviceHandler.Delete)

		protected.POST("/recruitments", middleware.RequirePermission("recruitment:manage"), recruitmentHandler.Create)
		protected.PUT("/recruitments/:id", middleware.RequirePermission("recruitment:manage"), recruitmentHandler.Update)
		protected.DELETE("/recruitments/:id", middleware.RequirePermission("recruitment:manage"), recruitmentHandler.Delete)

		protected.GET("/media", middleware.RequirePermission("media:upload"), mediaHandler.List)
		protected.GET("/media/:id", middleware.RequirePermission("media:upload"), mediaHandler.Get)
		protected.POST("/media", middleware.RequirePermission("media:upload"), mediaHandler.Upload)
		protected.DELETE("/media/:id", middleware.RequirePermission("media:delete"), mediaHandler.Delete)

		admin := protected.Group("/admin")
		{
			admin.GET("/posts", middleware.RequirePermission("post:update"), postHandler.ListAll)
			admin.GET("/recruitments", middleware.RequirePermission("recruitment:manage"), recruitmentHandler.ListAll)

			users := admin.Group("", middleware.RequirePermission("user:manage"))
			{
				users.GET("/users", adminHandler.ListUsers)
				users.POST("/users", adminHandler.CreateUser)
				users.PUT("/users/:id/role", adminHandler.AssignRole)
				users.DELETE("/users/:id", adminHandler.DeleteUser)
			}

			roles := admin.Group("", middleware.RequirePermission("role:manage"))
			{
				roles.GET("/roles", adminHandler.ListRoles)
				roles.POST("/roles", adminHandler.CreateRole)
				roles.PUT("/roles/:id", adminHandler.UpdateRole)
				roles.DELETE("/roles/:id", adminHandler.DeleteRole)
				roles.GET("/permissions", adminHandler.ListPermissions)
			}
		}
	}

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	slog.Info("API router initialized", "mode", cfg.Server.Mode)
	return router, nil
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		slog.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"ip", c.ClientIP(),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
