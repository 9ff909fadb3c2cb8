package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Extract ExtractConfig
	Cache   CacheConfig
	OCR     OCRConfig
	Log     LogConfig
}

// ExtractConfig bounds the work done for a single document and carries the
// heuristic thresholds used by the extractors.
type ExtractConfig struct {
	MaxFileBytes        int64
	ClassifySamplePages int
	MinTextChars        int
	TextMaxPages        int
	OCRMaxPages         int
	OCRWorkers          int
	MinRows             int
	MinTableRows        int
	HeaderScanRows      int
	Timeout             time.Duration
	NoisePatternFile    string
}

// CacheConfig selects and sizes the result cache.
type CacheConfig struct {
	Backend    string // "file" | "sqlite" | "postgres" | "none"
	Dir        string
	SQLitePath string
	DSN        string
	MaxEntries int
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine        string // "tesseract" | "gosseract"
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	PSM           int
	MinConfidence float64
	// Layout thresholds; zero keeps the built-in default.
	RightRegion float64
	MaxColumns  int
	RowBandPx   float64
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string
	Format string // "text" | "json"
}

// DefaultExtractConfig returns the documented defaults for every threshold.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		MaxFileBytes:        25 << 20,
		ClassifySamplePages: 3,
		MinTextChars:        150,
		TextMaxPages:        10,
		OCRMaxPages:         6,
		OCRWorkers:          2,
		MinRows:             5,
		MinTableRows:        2,
		HeaderScanRows:      8,
		Timeout:             3 * time.Minute,
	}
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present; real env vars win.
func LoadConfig() *Config {
	_ = godotenv.Load()

	def := DefaultExtractConfig()
	return &Config{
		Extract: ExtractConfig{
			MaxFileBytes:        getEnvAsInt64("EXTRACT_MAX_FILE_BYTES", def.MaxFileBytes),
			ClassifySamplePages: getEnvAsInt("EXTRACT_CLASSIFY_PAGES", def.ClassifySamplePages),
			MinTextChars:        getEnvAsInt("EXTRACT_MIN_TEXT_CHARS", def.MinTextChars),
			TextMaxPages:        getEnvAsInt("EXTRACT_TEXT_MAX_PAGES", def.TextMaxPages),
			OCRMaxPages:         getEnvAsInt("EXTRACT_OCR_MAX_PAGES", def.OCRMaxPages),
			OCRWorkers:          getEnvAsInt("EXTRACT_OCR_WORKERS", def.OCRWorkers),
			MinRows:             getEnvAsInt("EXTRACT_MIN_ROWS", def.MinRows),
			MinTableRows:        getEnvAsInt("EXTRACT_MIN_TABLE_ROWS", def.MinTableRows),
			HeaderScanRows:      getEnvAsInt("EXTRACT_HEADER_SCAN_ROWS", def.HeaderScanRows),
			Timeout:             getEnvAsDuration("EXTRACT_TIMEOUT", def.Timeout),
			NoisePatternFile:    getEnv("NOISE_PATTERN_FILE", ""),
		},
		Cache: CacheConfig{
			Backend:    strings.ToLower(getEnv("CACHE_BACKEND", "file")),
			Dir:        getEnv("CACHE_DIR", "./tmp/cache"),
			SQLitePath: getEnv("CACHE_SQLITE_PATH", "./tmp/cache.db"),
			DSN:        getEnv("CACHE_DB_URL", ""),
			MaxEntries: getEnvAsInt("CACHE_MAX_ENTRIES", 500),
		},
		OCR: OCRConfig{
			Engine:        strings.ToLower(getEnv("OCR_ENGINE", "tesseract")),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 220),
			PSM:           getEnvAsInt("OCR_PSM", 6),
			MinConfidence: getEnvAsFloat64("OCR_MIN_CONFIDENCE", 30),
			RightRegion:   getEnvAsFloat64("OCR_RIGHT_REGION", 0),
			MaxColumns:    getEnvAsInt("OCR_MAX_COLUMNS", 0),
			RowBandPx:     getEnvAsFloat64("OCR_ROW_BAND_PX", 0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("EXTRACT_MAX_FILE_BYTES", c.Extract.MaxFileBytes, Positive).
		Field("EXTRACT_OCR_WORKERS", c.Extract.OCRWorkers, Positive).
		Field("EXTRACT_TEXT_MAX_PAGES", c.Extract.TextMaxPages, Positive).
		Field("EXTRACT_OCR_MAX_PAGES", c.Extract.OCRMaxPages, Positive).
		Field("EXTRACT_MIN_ROWS", c.Extract.MinRows, Positive).
		Field("CACHE_BACKEND", c.Cache.Backend, OneOf("file", "sqlite", "postgres", "none")).
		Field("OCR_ENGINE", c.OCR.Engine, OneOf("tesseract", "gosseract")).
		Field("OCR_DPI", c.OCR.DPI, Between(72, 600))
	if strings.EqualFold(c.Cache.Backend, "postgres") {
		v.Field("CACHE_DB_URL", c.Cache.DSN, Required)
	}
	if !strings.EqualFold(c.Cache.Backend, "none") {
		v.Check(c.Cache.MaxEntries > 0, "CACHE_MAX_ENTRIES", c.Cache.MaxEntries, "must be positive")
	}
	if err := v.Err(); err != nil {
		return NewAppError(CodeConfig, "invalid configuration", err)
	}
	return nil
}

// NewLogger builds the process logger from LogConfig.
func NewLogger(cfg LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
