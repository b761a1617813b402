package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Inventory InventoryConfig
	Store     StoreConfig
	Printer   PrinterConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

// InventoryConfig points at the Excel workbook backing the inventory.
type InventoryConfig struct {
	Path  string
	Sheet string
}

// StoreConfig holds the header printed on receipts.
type StoreConfig struct {
	Name    string
	Address string
	Phone   string
}

type PrinterConfig struct {
	Type       string // usb, network, file, or none
	Device     string // device path for usb, spool path for file
	Address    string // host:port for network printers
	PaperWidth int    // print width in characters: 32 for 58mm, 48 for 80mm
}

type AuthConfig struct {
	CashierName string
	CashierPIN  string
	JWTSecret   string
	TokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "counterpos-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("INVENTORY_PATH", "data/medicines.xlsx")
	viper.SetDefault("INVENTORY_SHEET", "Medicines")
	viper.SetDefault("STORE_NAME", "Pharmacy Invoice")
	viper.SetDefault("STORE_ADDRESS", "")
	viper.SetDefault("STORE_PHONE", "")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_DEVICE", "")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_PAPER_WIDTH", 48)
	viper.SetDefault("CASHIER_NAME", "Counter")
	viper.SetDefault("CASHIER_PIN", "0000")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Inventory: InventoryConfig{
			Path:  viper.GetString("INVENTORY_PATH"),
			Sheet: viper.GetString("INVENTORY_SHEET"),
		},
		Store: StoreConfig{
			Name:    viper.GetString("STORE_NAME"),
			Address: viper.GetString("STORE_ADDRESS"),
			Phone:   viper.GetString("STORE_PHONE"),
		},
		Printer: PrinterConfig{
			Type:       viper.GetString("PRINTER_TYPE"),
			Device:     viper.GetString("PRINTER_DEVICE"),
			Address:    viper.GetString("PRINTER_ADDRESS"),
			PaperWidth: viper.GetInt("PRINTER_PAPER_WIDTH"),
		},
		Auth: AuthConfig{
			CashierName: viper.GetString("CASHIER_NAME"),
			CashierPIN:  viper.GetString("CASHIER_PIN"),
			JWTSecret:   viper.GetString("JWT_SECRET"),
			TokenExpiry: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
}
