package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"vmail/config"
	"vmail/handlers/api"
	"vmail/middleware"
	"vmail/provider"
	"vmail/storage"
	"vmail/utils"
)

func main() {
	utils.Log.Info("Initializing vmail...")

	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		return
	}

	db, err := storage.InitDB(cfg.Storage.DataDir)
	if err != nil {
		utils.Log.Error("Failed to open database: %v", err)
		return
	}
	defer db.Close()

	emails := storage.NewEmailStore(db)
	blobs := storage.NewBlobStore(cfg.Storage.BlobDir)
	mailer := provider.NewSMTPMailer(cfg.SMTP)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"

			if appErr, ok := err.(*utils.AppError); ok {
				code = appErr.Code
				message = appErr.Message
				if code >= 500 {
					utils.Log.Error("Application error: %v", appErr)
				}
			} else if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"message": message,
			})
		},
	})

	// Add global middleware
	app.Use(recover.New())  // Recover from panics
	app.Use(logger.New())   // Request logging
	app.Use(compress.New()) // Response compression
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "no-referrer",
	}))

	// Rate limiting (100 requests per minute per IP)
	app.Use(middleware.RateLimiter(100, time.Minute))

	// Initialize handlers
	emailHandler := api.NewEmailHandler(emails, blobs)
	sendHandler := api.NewSendHandler(emails, blobs, mailer)
	draftHandler := api.NewDraftHandler(emails, blobs)
	receiveHandler := api.NewReceiveHandler(emails, blobs)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// All mail routes require a bearer credential
	protected := app.Group("", api.AuthMiddleware(cfg.Auth.Secret))

	protected.Get("/emails", emailHandler.HandleList)
	protected.Post("/emails/send", sendHandler.HandleSend)
	protected.Post("/emails/draft", draftHandler.HandleSaveDraft)
	protected.Post("/emails/receive", receiveHandler.HandleReceive)
	protected.Get("/emails/:id", emailHandler.HandleGet)
	protected.Delete("/emails/:id", emailHandler.HandleDelete)
	protected.Put("/emails/:id/read", emailHandler.HandleMarkRead)
	protected.Put("/emails/:id/star", emailHandler.HandleMarkStarred)

	utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}
