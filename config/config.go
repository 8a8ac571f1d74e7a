package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"leadreach/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`

	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`

	// Public base URL used when building unsubscribe links
	AppURL string `json:"app_url"`

	// Sender identity stamped into generated emails
	SenderName          string `json:"sender_name"`
	SenderCompany       string `json:"sender_company"`
	SenderPostalAddress string `json:"sender_postal_address"`
	FromEmail           string `json:"from_email"`

	// Discovery / enrichment credentials; adapters fall back to mock data
	// or offline checks when these are empty
	GoogleMapsAPIKey string `json:"-"`
	HunterAPIKey     string `json:"-"`
	FirecrawlAPIKey  string `json:"-"`

	// Mail transport: mock, gmail or smtp
	MailProvider     string `json:"mail_provider"`
	GmailAccessToken string `json:"-"`
	SMTPHost         string `json:"smtp_host"`
	SMTPPort         int    `json:"smtp_port"`
	SMTPUsername     string `json:"smtp_username"`
	SMTPPassword     string `json:"-"`

	RateLimitDiscovery int         `json:"rate_limit_discovery"`
	Redis              RedisConfig `json:"redis"`

	SentryDSN string `json:"-"`
}

func init() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
}

func LoadConfig() error {
	AppConfig = Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "5000"),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "leadreach"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),

		AppURL:              getEnv("APP_URL", "http://localhost:3000"),
		SenderName:          getEnv("SENDER_NAME", "Your Name"),
		SenderCompany:       getEnv("SENDER_COMPANY", "Your Company"),
		SenderPostalAddress: getEnv("SENDER_POSTAL_ADDRESS", "Your Business Address"),
		FromEmail:           getEnv("FROM_EMAIL", "noreply@example.com"),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		HunterAPIKey:     getEnv("HUNTER_API_KEY", ""),
		FirecrawlAPIKey:  getEnv("FIRECRAWL_API_KEY", ""),

		MailProvider:     getEnv("MAIL_PROVIDER", "mock"),
		GmailAccessToken: getEnv("GMAIL_ACCESS_TOKEN", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),

		RateLimitDiscovery: getEnvAsInt("RATE_LIMIT_DISCOVERY", 10),
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ADDRESS", "") != "",
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	switch AppConfig.MailProvider {
	case "mock", "gmail", "smtp":
	default:
		return fmt.Errorf("MAIL_PROVIDER must be one of mock, gmail, smtp")
	}
	if AppConfig.MailProvider == "gmail" && AppConfig.GmailAccessToken == "" {
		return fmt.Errorf("GMAIL_ACCESS_TOKEN is required when MAIL_PROVIDER=gmail")
	}
	if AppConfig.MailProvider == "smtp" && AppConfig.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required when MAIL_PROVIDER=smtp")
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("Successfully connected to the database")
	log.Println("Starting database migration...")
	if err := MigrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("Database migration completed")
	return nil
}

// MigrateDB runs the schema migration for every model
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Workspace{},
		&models.Lead{},
		&models.ContactMethod{},
		&models.Campaign{},
		&models.SequenceStep{},
		&models.DraftEmail{},
		&models.ApprovalItem{},
		&models.SendEvent{},
	)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("Mail provider: %s", AppConfig.MailProvider)
	log.Printf("Discovery APIs: places(%t), hunter(%t), firecrawl(%t)",
		AppConfig.GoogleMapsAPIKey != "",
		AppConfig.HunterAPIKey != "",
		AppConfig.FirecrawlAPIKey != "")
}
