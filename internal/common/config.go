package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Store       StoreConfig
	Recognition RecognitionConfig
	Scan        ScanConfig
}

// StoreConfig holds persistence-related configuration
type StoreConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// RecognitionConfig holds text-recognition configuration
type RecognitionConfig struct {
	Language    string
	PageSegMode int
	TessdataDir string
}

// ScanConfig holds pipeline behavior knobs
type ScanConfig struct {
	DeskewMinAngle   float64
	MorphCleanup     bool
	ConfidenceScorer string // "flags" | "text"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Store: StoreConfig{
			DSN:             getEnv("RECEIPTS_DSN", "receipts.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Recognition: RecognitionConfig{
			Language:    getEnv("TESSERACT_LANG", "eng"),
			PageSegMode: getEnvAsInt("TESSERACT_PSM", 6),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
		},
		Scan: ScanConfig{
			DeskewMinAngle:   getEnvAsFloat64("SCAN_DESKEW_MIN_ANGLE", 5.0),
			MorphCleanup:     getEnvAsBool("SCAN_MORPH_CLEANUP", true),
			ConfidenceScorer: getEnv("SCAN_CONFIDENCE_SCORER", "flags"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
