package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"metro-simulator/internal/logging"
)

// Render modes.
const (
	RenderTerminal = "terminal"
	RenderHeadless = "headless"
	RenderSnapshot = "snapshot"
)

type Config struct {
	TickInterval    time.Duration
	SpeedMultiplier float64
	Night           bool

	RenderMode     string
	SnapshotPath   string
	SnapshotTicks  int
	SnapshotWidth  int
	SnapshotHeight int

	NATSURL           string
	NATSSubjectPrefix string
	PublishInterval   time.Duration
	LogNATSSubjects   bool

	MetricsAddr  string
	JournalDSN   string
	AudioEnabled bool

	LogLevel  string
	LogFormat string
	LogFile   string
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	if cfg.TickInterval, err = millis("TICK_INTERVAL_MS", 16); err != nil {
		return nil, err
	}
	if cfg.PublishInterval, err = millis("PUBLISH_INTERVAL_MS", 250); err != nil {
		return nil, err
	}

	// Speed multiplier scales dt, not the tick rate
	if v := os.Getenv("SPEED_MULTIPLIER"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid SPEED_MULTIPLIER: %q", v)
		}
		cfg.SpeedMultiplier = f
	} else {
		cfg.SpeedMultiplier = 1.0
	}

	cfg.Night = envBool("NIGHT_MODE")

	cfg.RenderMode = strings.ToLower(getenvDefault("RENDER_MODE", RenderTerminal))
	switch cfg.RenderMode {
	case RenderTerminal, RenderHeadless, RenderSnapshot:
	default:
		return nil, fmt.Errorf("invalid RENDER_MODE: %q", cfg.RenderMode)
	}

	cfg.SnapshotPath = getenvDefault("SNAPSHOT_PATH", "metro.png")
	if cfg.SnapshotTicks, err = intVar("SNAPSHOT_TICKS", 700, 0); err != nil {
		return nil, err
	}
	if cfg.SnapshotWidth, err = intVar("SNAPSHOT_WIDTH", 1000, 1); err != nil {
		return nil, err
	}
	if cfg.SnapshotHeight, err = intVar("SNAPSHOT_HEIGHT", 600, 1); err != nil {
		return nil, err
	}

	// Empty NATS_URL disables publishing
	cfg.NATSURL = strings.TrimSpace(os.Getenv("NATS_URL"))
	cfg.NATSSubjectPrefix = strings.Trim(getenvDefault("NATS_SUBJECT_PREFIX", "metro"), ". ")
	if cfg.NATSSubjectPrefix == "" || strings.ContainsAny(cfg.NATSSubjectPrefix, " *>") {
		return nil, fmt.Errorf("invalid NATS_SUBJECT_PREFIX: %q", os.Getenv("NATS_SUBJECT_PREFIX"))
	}
	cfg.LogNATSSubjects = envBool("LOG_NATS_SUBJECTS")

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	cfg.JournalDSN = strings.TrimSpace(os.Getenv("JOURNAL_DSN"))
	cfg.AudioEnabled = envBool("AUDIO_ENABLED")

	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if !logging.ValidLevel(cfg.LogLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q", cfg.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "text"))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q", cfg.LogFormat)
	}
	cfg.LogFile = os.Getenv("LOG_FILE")

	return cfg, nil
}

// Dt is the simulated seconds advanced per tick.
func (c *Config) Dt() float64 {
	return c.TickInterval.Seconds() * c.SpeedMultiplier
}

func millis(key string, def int) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(def) * time.Millisecond, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func intVar(key string, def, min int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
