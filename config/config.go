package config

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port          string
	MongoString   string
	DBName        string
	AppName       string
	JWTSecret     string
	JWTTTL        time.Duration
	PasetoSecret  []byte
	CORSOrigins   []string
	Seed          bool
	AdminEmail    string
	AdminPassword string
	UploadLimitMB int

	SMTP SMTPConfig
	Work WorkConfig
	Pay  PayrollRates
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether outgoing mail should go through SMTP.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type WorkConfig struct {
	StartHour         int
	StartMinute       int
	LateGrace         time.Duration
	StandardWorkHours float64
	Location          *time.Location
}

type PayrollRates struct {
	HRA float64
	PF  float64
	Tax float64
}

// LoadConfig loads configuration from the environment (and .env when present).
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env not loaded (might not exist in production): %v", err)
	}

	cfg := &AppConfig{
		Port:          getEnv("PORT", "3000"),
		MongoString:   getEnv("MONGOSTRING", "mongodb://localhost:27017"),
		DBName:        getEnv("DB_NAME", DefaultDBName),
		AppName:       getEnv("APP_NAME", "HRMS"),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CORSOrigins:   parseCSV(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		Seed:          getEnv("SEED", "false") == "true",
		AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@hrms.local"),
		AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "Admin12345"),
		UploadLimitMB: getEnvInt("UPLOAD_LIMIT_MB", 5),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWTTTL = time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour

	secret, err := DecodePasetoSecret(getEnv("PASETO_SECRET", ""))
	if err != nil {
		return nil, err
	}
	cfg.PasetoSecret = secret

	cfg.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnvInt("SMTP_PORT", 587),
		Username: getEnv("SMTP_USER", ""),
		Password: getEnv("SMTP_PASS", ""),
		From:     getEnv("SMTP_FROM", "no-reply@hrms.local"),
	}

	work, err := parseWorkConfig()
	if err != nil {
		return nil, err
	}
	cfg.Work = work

	cfg.Pay = PayrollRates{
		HRA: getEnvFloat("HRA_RATE", 0.40),
		PF:  getEnvFloat("PF_RATE", 0.12),
		Tax: getEnvFloat("TAX_RATE", 0.10),
	}

	return cfg, nil
}

// DecodePasetoSecret accepts URL-safe or standard base64 and requires exactly 32 bytes.
func DecodePasetoSecret(secretBase64 string) ([]byte, error) {
	if secretBase64 == "" {
		return nil, fmt.Errorf("PASETO_SECRET is required")
	}

	decoded, err := base64.URLEncoding.DecodeString(secretBase64)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(secretBase64)
		if err != nil {
			return nil, fmt.Errorf("PASETO_SECRET is not valid base64: %w", err)
		}
	}

	if len(decoded) != 32 {
		return nil, fmt.Errorf("PASETO_SECRET (decoded) must be exactly 32 bytes long, got %d", len(decoded))
	}
	return decoded, nil
}

func parseWorkConfig() (WorkConfig, error) {
	start, err := time.Parse("15:04", getEnv("WORK_START", "09:00"))
	if err != nil {
		return WorkConfig{}, fmt.Errorf("WORK_START must be HH:MM: %w", err)
	}

	loc, err := time.LoadLocation(getEnv("TZ_NAME", "Local"))
	if err != nil {
		return WorkConfig{}, fmt.Errorf("invalid TZ_NAME: %w", err)
	}

	return WorkConfig{
		StartHour:         start.Hour(),
		StartMinute:       start.Minute(),
		LateGrace:         time.Duration(getEnvInt("LATE_GRACE_MINUTES", 15)) * time.Minute,
		StandardWorkHours: getEnvFloat("STANDARD_WORK_HOURS", 8),
		Location:          loc,
	}, nil
}

// Helper function to get environment variable or fallback to default
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
