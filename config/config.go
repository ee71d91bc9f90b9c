// Package config loads the server configuration from flags, environment
// variables and an optional .env file.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application runtime configuration.
type Config struct {
	Port            int
	DBPath          string
	SchedulesFile   string // optional YAML/JSON seed for schedule configs
	Seed            string // demo scenario loaded on startup, empty for none
	Verbose         bool
	ScanInterval    time.Duration // 0 disables the background scanner
	ScanLookback    int
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads .env (if present), then environment variables, then flags.
// Flags win over the environment.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	_ = godotenv.Load()

	port, err := getInt("MARCACION_PORT", 8080)
	if err != nil {
		return Config{}, err
	}

	lookback, err := getInt("MARCACION_SCAN_LOOKBACK", 7)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AllowedOrigins:  getList("MARCACION_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		ReadTimeout:     getDuration("MARCACION_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDuration("MARCACION_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDuration("MARCACION_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getDuration("MARCACION_SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	fs.IntVar(&cfg.Port, "port", port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", getEnv("MARCACION_DB", "marcacion.db"), "SQLite database path")
	fs.StringVar(&cfg.SchedulesFile, "schedules", os.Getenv("MARCACION_SCHEDULES"), "YAML or JSON file with schedule configs to load on startup")
	fs.StringVar(&cfg.Seed, "seed", os.Getenv("MARCACION_SEED"), "demo scenario to load on startup (resets the database)")
	fs.DurationVar(&cfg.ScanInterval, "scan-interval", getDuration("MARCACION_SCAN_INTERVAL", time.Hour), "background inconsistency scan interval, 0 to disable")
	fs.IntVar(&cfg.ScanLookback, "scan-lookback", lookback, "days covered by each background scan")
	fs.BoolVar(&cfg.Verbose, "verbose", os.Getenv("MARCACION_VERBOSE") == "true", "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.ScanLookback < 1 {
		return Config{}, fmt.Errorf("invalid scan lookback %d", cfg.ScanLookback)
	}
	if cfg.DBPath == "" {
		return Config{}, fmt.Errorf("database path is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
