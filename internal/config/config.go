package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Cron       CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AttendanceConfig holds the deployment-specific attendance policy.
type AttendanceConfig struct {
	OfficeLatitude      float64
	OfficeLongitude     float64
	Timezone            string
	ExpectedStart       string // HH:MM local
	ExpectedCheckout    string // HH:MM local
	EscalationThreshold time.Duration
	NotifyRoleGroups    []string
}

// CronConfig holds the job schedules and the shared secret for the
// external trigger endpoints.
type CronConfig struct {
	Secret              string
	CheckoutMonitorSpec string
	AutoClockoutSpec    string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "workpulse-attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "workpulse-attendance"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance policy
	officeLat, err := strconv.ParseFloat(getEnv("OFFICE_LATITUDE", "-7.9666"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_LATITUDE: %w", err)
	}
	officeLon, err := strconv.ParseFloat(getEnv("OFFICE_LONGITUDE", "112.6326"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_LONGITUDE: %w", err)
	}
	escalation, err := time.ParseDuration(getEnv("CHECKOUT_ESCALATION_THRESHOLD", "90m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_ESCALATION_THRESHOLD: %w", err)
	}

	config.Attendance = AttendanceConfig{
		OfficeLatitude:      officeLat,
		OfficeLongitude:     officeLon,
		Timezone:            getEnv("COMPANY_TIMEZONE", "Asia/Jakarta"),
		ExpectedStart:       getEnv("EXPECTED_START_TIME", "08:35"),
		ExpectedCheckout:    getEnv("EXPECTED_CHECKOUT_TIME", "18:00"),
		EscalationThreshold: escalation,
		NotifyRoleGroups:    getEnvSlice("CHECKOUT_NOTIFY_ROLE_GROUPS", []string{"manager"}),
	}

	// Cron configuration
	config.Cron = CronConfig{
		Secret:              getEnv("CRON_SECRET", ""),
		CheckoutMonitorSpec: getEnv("CHECKOUT_MONITOR_SCHEDULE", "30 18 * * *"),
		AutoClockoutSpec:    getEnv("AUTO_CLOCKOUT_SCHEDULE", "5 0 * * *"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate catches misconfiguration at startup rather than at first use.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("invalid COMPANY_TIMEZONE: %w", err)
	}
	if c.Attendance.OfficeLatitude < -90 || c.Attendance.OfficeLatitude > 90 {
		return fmt.Errorf("OFFICE_LATITUDE must be between -90 and 90")
	}
	if c.Attendance.OfficeLongitude < -180 || c.Attendance.OfficeLongitude > 180 {
		return fmt.Errorf("OFFICE_LONGITUDE must be between -180 and 180")
	}
	for _, field := range []struct{ name, value string }{
		{"EXPECTED_START_TIME", c.Attendance.ExpectedStart},
		{"EXPECTED_CHECKOUT_TIME", c.Attendance.ExpectedCheckout},
	} {
		if _, err := time.Parse("15:04", field.value); err != nil {
			return fmt.Errorf("invalid %s: must be HH:MM", field.name)
		}
	}
	return nil
}

// DatabaseURL builds the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
