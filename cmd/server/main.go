package main

import (
	"log"
	"terrasur_app_go/config"
	"terrasur_app_go/db"
	"terrasur_app_go/handlers"
	"terrasur_app_go/middleware"
	"terrasur_app_go/models"
	"terrasur_app_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(&models.Property{}, &models.PropertyImage{}, &models.FichaSequence{}, &models.ContactMessage{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize file storage (R2 with local fallback)
	services.InitializeStorage(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Locally stored uploads are served directly; R2 serves from its public URL
	e.Static("/uploads", cfg.UploadDir)

	// Public routes (no authentication required)
	e.GET("/api/properties", handlers.GetPropertiesHandler)
	e.GET("/api/properties/:slug", handlers.GetPropertyHandler)
	e.POST("/api/contact", handlers.ContactPostHandler, middleware.ContactFormRateLimiter.Middleware())
	e.GET("/sitemap.xml", handlers.GetSitemapHandler)

	// Back-office routes
	admin := e.Group("/api/admin")
	admin.Use(middleware.AdminAPIRateLimiter.Middleware())
	{
		admin.GET("/properties", handlers.GetAdminPropertiesHandler)
		admin.POST("/properties", handlers.CreatePropertyHandler)
		admin.PUT("/properties/:id", handlers.UpdatePropertyHandler)
		admin.DELETE("/properties/:id", handlers.DeletePropertyHandler)
		admin.POST("/properties/bulk-status", handlers.BulkStatusHandler)
		admin.GET("/properties/import/template", handlers.GetImportTemplateHandler)
		admin.POST("/properties/import", handlers.ImportPropertiesHandler)
		admin.GET("/properties/:id/ficha.pdf", handlers.GetFichaPDFHandler)

		admin.POST("/properties/:id/images", handlers.UploadImageHandler)
		admin.PUT("/images/:id", handlers.UpdateImageHandler)
		admin.DELETE("/images/:id", handlers.DeleteImageHandler)

		admin.GET("/contact-messages", handlers.GetContactMessagesHandler)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
