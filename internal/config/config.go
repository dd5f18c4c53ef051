package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
	Printer   PrinterConfig
	Ledger    LedgerConfig
}

type AppConfig struct {
	Name   string
	Env    string
	Port   string
	Debug  bool
	NodeID int64
}

// StoreConfig selects the record store backend: "bolt" keeps everything in a
// single on-device file, "postgres" uses the Database section.
type StoreConfig struct {
	Driver      string
	BoltPath    string
	OpenTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Timezone     string
	MaxIdleConns int
	MaxOpenConns int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

// AuthConfig holds the admin PIN. AdminPINHash takes precedence when set.
type AuthConfig struct {
	AdminPIN     string
	AdminPINHash string
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

type LoggerConfig struct {
	Mode       string
	FileEnable bool
	Filename   string
}

// PrinterConfig describes the printer link. Type is one of "none", "socket"
// or "device".
type PrinterConfig struct {
	Type           string
	Address        string
	DevicePath     string
	Name           string
	ChunkSize      int
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	Charset        string
	AutoCut        bool
	WebsiteQR      bool
	BridgeEnabled  bool
}

type LedgerConfig struct {
	Timezone string
}

// Location resolves the ledger timezone, falling back to the process local zone
func (c LedgerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: invalid LEDGER_TIMEZONE %q, using local time: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// the logger is not built yet at this point
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "salespos-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_NODE_ID", 1)
	viper.SetDefault("STORE_DRIVER", "bolt")
	viper.SetDefault("STORE_BOLT_PATH", "./data/salespos.db")
	viper.SetDefault("STORE_OPEN_TIMEOUT_SECONDS", 2)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "salespos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Africa/Nairobi")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 20)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("ADMIN_PIN", "1234")
	viper.SetDefault("ADMIN_PIN_HASH", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOGGER_MODE", "development")
	viper.SetDefault("LOGGER_FILE_ENABLE", false)
	viper.SetDefault("LOGGER_FILENAME", "./data/logs/salespos.log")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_DEVICE_PATH", "/dev/rfcomm0")
	viper.SetDefault("PRINTER_NAME", "Thermal Printer")
	viper.SetDefault("PRINTER_CHUNK_SIZE", 20)
	viper.SetDefault("PRINTER_CONNECT_TIMEOUT_SECONDS", 10)
	viper.SetDefault("PRINTER_WRITE_TIMEOUT_SECONDS", 5)
	viper.SetDefault("PRINTER_CHARSET", "utf8")
	viper.SetDefault("PRINTER_AUTO_CUT", false)
	viper.SetDefault("PRINTER_WEBSITE_QR", false)
	viper.SetDefault("PRINTER_BRIDGE_ENABLED", true)
	viper.SetDefault("LEDGER_TIMEZONE", "")

	return &Config{
		App: AppConfig{
			Name:   viper.GetString("APP_NAME"),
			Env:    viper.GetString("APP_ENV"),
			Port:   viper.GetString("APP_PORT"),
			Debug:  viper.GetBool("APP_DEBUG"),
			NodeID: viper.GetInt64("APP_NODE_ID"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(viper.GetString("STORE_DRIVER")),
			BoltPath:    viper.GetString("STORE_BOLT_PATH"),
			OpenTimeout: time.Duration(viper.GetInt("STORE_OPEN_TIMEOUT_SECONDS")) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			Name:         viper.GetString("DB_NAME"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			SSLMode:      viper.GetString("DB_SSL_MODE"),
			Timezone:     viper.GetString("DB_TIMEZONE"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		Auth: AuthConfig{
			AdminPIN:     viper.GetString("ADMIN_PIN"),
			AdminPINHash: viper.GetString("ADMIN_PIN_HASH"),
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
		Logger: LoggerConfig{
			Mode:       viper.GetString("LOGGER_MODE"),
			FileEnable: viper.GetBool("LOGGER_FILE_ENABLE"),
			Filename:   viper.GetString("LOGGER_FILENAME"),
		},
		Printer: PrinterConfig{
			Type:           strings.ToLower(viper.GetString("PRINTER_TYPE")),
			Address:        viper.GetString("PRINTER_ADDRESS"),
			DevicePath:     viper.GetString("PRINTER_DEVICE_PATH"),
			Name:           viper.GetString("PRINTER_NAME"),
			ChunkSize:      viper.GetInt("PRINTER_CHUNK_SIZE"),
			ConnectTimeout: time.Duration(viper.GetInt("PRINTER_CONNECT_TIMEOUT_SECONDS")) * time.Second,
			WriteTimeout:   time.Duration(viper.GetInt("PRINTER_WRITE_TIMEOUT_SECONDS")) * time.Second,
			Charset:        strings.ToLower(viper.GetString("PRINTER_CHARSET")),
			AutoCut:        viper.GetBool("PRINTER_AUTO_CUT"),
			WebsiteQR:      viper.GetBool("PRINTER_WEBSITE_QR"),
			BridgeEnabled:  viper.GetBool("PRINTER_BRIDGE_ENABLED"),
		},
		Ledger: LedgerConfig{
			Timezone: viper.GetString("LEDGER_TIMEZONE"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
