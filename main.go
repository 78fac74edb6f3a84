package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"petplus-bot/config"
	"petplus-bot/handlers"
	"petplus-bot/services"
	"petplus-bot/webhooks"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	// Initialize structured logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	// Load configuration
	cfg := config.LoadConfig()

	// Load catalog and shipping rules; malformed configuration is fatal
	catalogDef, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		slog.Error("Failed to load catalog", "error", err)
		os.Exit(1)
	}
	shippingDef, err := config.LoadShippingRules(cfg.ShippingPath)
	if err != nil {
		slog.Error("Failed to load shipping rules", "error", err)
		os.Exit(1)
	}

	catalog := services.BuildCatalogIndex(catalogDef)
	rules := services.BuildShippingRules(shippingDef)
	slog.Info("Catalog loaded",
		"products", len(catalog.Products()),
		"departments", len(rules.Departments),
		"premiumZones", len(rules.PremiumZones),
	)

	// Optional MongoDB message archive
	var archive *services.ChatArchive
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		archive, err = services.InitChatArchive(ctx, cfg.MongoURI, cfg.DatabaseName)
		cancel()
		if err != nil {
			slog.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		defer archive.Disconnect(context.Background())
	} else {
		slog.Info("MONGO_URI not set, message archive disabled")
	}

	// Assemble the dialogue engine
	sessions := services.NewSessionStore()
	memory := services.NewConversationMemory(cfg.MemoryTurns)

	var generate services.GenerateFunc
	if cfg.ClaudeAPIKey != "" {
		claude := services.NewClaudeClient(cfg.ClaudeAPIKey, cfg.ClaudeModel, cfg.ClaudeMaxTokens)
		generate = claude.GenerateReply
	}

	engine := services.NewDialogueEngine(catalog, rules, sessions, memory, generate)
	handler := handlers.NewMessageHandler(engine, archive, cfg.PageAccessToken)

	// Start background session eviction
	sweeperCtx, cancelSweeper := context.WithCancel(context.Background())
	defer cancelSweeper()
	services.StartSessionSweeper(sweeperCtx, sessions, cfg.SweepInterval, cfg.SessionTTL)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("Request error", "error", err, "status", code)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path}\n",
	}))

	// Register webhook routes
	webhooks.RegisterRoutes(app, cfg, handler)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "petplus-bot",
			"sessions": sessions.Count(),
		})
	})

	// Start server
	slog.Info("Server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
