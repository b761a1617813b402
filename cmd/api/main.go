package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/pharmaware/counterpos-api/internal/application/service"
	"github.com/pharmaware/counterpos-api/internal/config"
	"github.com/pharmaware/counterpos-api/internal/domain/entity"
	"github.com/pharmaware/counterpos-api/internal/infrastructure/excel"
	"github.com/pharmaware/counterpos-api/internal/presentation/http/handler"
	"github.com/pharmaware/counterpos-api/internal/presentation/http/routes"
	"github.com/pharmaware/counterpos-api/pkg/printer"
	"github.com/pharmaware/counterpos-api/pkg/utils"
)

func main() {
	cfg := config.Load()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Load the inventory workbook. Without it there is nothing to sell.
	inventoryStore := excel.NewInventoryStore(cfg.Inventory.Path, cfg.Inventory.Sheet)
	if err := inventoryStore.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load inventory from %s: %v", cfg.Inventory.Path, err)
	}
	log.Printf("Loaded %d medicines from %s", len(inventoryStore.ListNames()), cfg.Inventory.Path)

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	// Initialize thermal printer
	receiptPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.Device,
		cfg.Printer.Address,
	)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		receiptPrinter = printer.NewNullPrinter()
	}

	// Initialize services
	authService := service.NewAuthService(jwtManager, cfg.Auth.CashierName, cfg.Auth.CashierPIN)
	inventoryService := service.NewInventoryService(inventoryStore)
	printerService := service.NewPrinterService(
		receiptPrinter,
		entity.ReceiptHeader{
			StoreName: cfg.Store.Name,
			Address:   cfg.Store.Address,
			Phone:     cfg.Store.Phone,
		},
		cfg.Auth.CashierName,
		cfg.Printer.PaperWidth,
		cfg.Printer.Type,
	)
	sessionService := service.NewSessionService(inventoryStore, printerService)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Session:   handler.NewSessionHandler(sessionService),
		Printer:   handler.NewPrinterHandler(printerService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager: jwtManager,
		Cfg:        cfg,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
