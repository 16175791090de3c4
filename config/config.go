package config

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mgltickets/api/internal/database"
	"github.com/mgltickets/api/internal/models"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Logging     LoggingConfig
	RateLimit   RateLimitConfig
	Uploads     UploadConfig
	Environment string
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	SSLMode      string
	Echo         bool
	MaxOpenConns int
	MaxIdleConns int
}

type AuthConfig struct {
	Secret    string
	Algorithm string
	TokenTTL  time.Duration
	Issuer    string

	// TicketSecret signs ticket QR payloads. Derived from Secret when unset.
	TicketSecret string
}

// TicketSigningKey returns the key ticket payloads are signed with. It never
// equals the JWT secret.
func (c AuthConfig) TicketSigningKey() string {
	if c.TicketSecret != "" {
		return c.TicketSecret
	}
	mac := hmac.New(sha256.New, []byte(c.Secret))
	mac.Write([]byte("ticket-signing"))
	return hex.EncodeToString(mac.Sum(nil))
}

type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

type RateLimitConfig struct {
	LoginPerMinute int
}

type UploadConfig struct {
	Dir string
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_ECHO", false)
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_TTL_MINUTES", 60)
	v.SetDefault("JWT_ISSUER", "mgltickets")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("RATE_LIMIT_LOGIN_PER_MINUTE", 10)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("ENVIRONMENT", "development")

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("PORT"),
		},
		Database: DatabaseConfig{
			DBHost:       v.GetString("DB_HOST"),
			DBPort:       v.GetString("DB_PORT"),
			DBUser:       v.GetString("DB_USER"),
			DBPassword:   v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			Echo:         v.GetBool("DB_ECHO"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Auth: AuthConfig{
			Secret:    v.GetString("JWT_SECRET"),
			Algorithm: strings.ToUpper(v.GetString("JWT_ALGORITHM")),
			TokenTTL:  time.Duration(v.GetInt("JWT_TTL_MINUTES")) * time.Minute,
			Issuer:    v.GetString("JWT_ISSUER"),

			TicketSecret: v.GetString("TICKET_SIGNING_SECRET"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			File:   v.GetString("LOG_FILE"),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: v.GetInt("RATE_LIMIT_LOGIN_PER_MINUTE"),
		},
		Uploads: UploadConfig{
			Dir: v.GetString("UPLOAD_DIR"),
		},
		Environment: v.GetString("ENVIRONMENT"),
	}

	if cfg.Database.DBUser == "" || cfg.Database.DBName == "" {
		return nil, fmt.Errorf("DB_USER and DB_NAME are required")
	}
	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Auth.TicketSecret != "" && cfg.Auth.TicketSecret == cfg.Auth.Secret {
		return nil, fmt.Errorf("TICKET_SIGNING_SECRET must differ from JWT_SECRET")
	}
	return cfg, nil
}

func (cfg DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.SSLMode,
	)
}

func InitDatabase(cfg DatabaseConfig, logger zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), database.GormConfig(logger, cfg.Echo))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
