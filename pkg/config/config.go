package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	Files         FilesConfig
	Parser        ParserConfig
	Observability ObservabilityConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// FilesConfig locates the operator-editable text files and the audit logs
type FilesConfig struct {
	MachineFile  string
	DatabaseFile string
	LogDir       string
}

type ParserConfig struct {
	PdftotextFallback bool
}

type ObservabilityConfig struct {
	LogLevel        string
	LogJSON         bool
	MetricsTextfile string
}

// Load reads configuration from the environment, after applying any .env
// file in the working directory. When the database file exists its values
// override the environment, matching how operators edit credentials.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "chroma"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Files: FilesConfig{
			MachineFile:  getEnv("CHROMA_MACHINE_FILE", "machine_config.txt"),
			DatabaseFile: getEnv("CHROMA_DATABASE_FILE", "database_config.txt"),
			LogDir:       getEnv("CHROMA_LOG_DIR", "."),
		},
		Parser: ParserConfig{
			PdftotextFallback: getEnvAsBool("CHROMA_PDFTOTEXT_FALLBACK", false),
		},
		Observability: ObservabilityConfig{
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			LogJSON:         getEnvAsBool("LOG_JSON", false),
			MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
		},
	}

	db, found, err := LoadDatabaseFile(cfg.Files.DatabaseFile)
	if err != nil {
		return nil, err
	}
	if found {
		db.SSLMode = cfg.Database.SSLMode
		cfg.Database = db
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
