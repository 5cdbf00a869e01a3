// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config collects every environment-driven setting of the server and the
// historian. Values come from the process environment; a .env file in the
// working directory is loaded by the binaries through godotenv/autoload.
type Config struct {
	Port     string
	LogLevel string
	LogJSON  bool

	// DatabaseURL wins over the individual POSTGRES_*/PG_* parts.
	DatabaseURL string

	// RedisAddr selects the Redis-backed notifier and history queue. Empty
	// keeps everything in process.
	RedisAddr  string
	RedisDB    int
	QueueName  string
	ChannelPfx string

	// Storage is "memory" or "postgres".
	Storage string

	TurnSeconds int
	TurnTimer   bool
	HandSize    int
	MatchTarget int

	// TokenExpire is zero for tokens that never expire.
	TokenExpire time.Duration
	// Ed25519 key files for seat tokens. Both empty means a fresh key pair
	// per process.
	PrivateKeyPath string
	PublicKeyPath  string

	HistorianBatchSize int
	HistorianFlush     time.Duration
	// RoomIdle is how long an untouched room is kept. Zero keeps rooms forever.
	RoomIdle time.Duration

	// Rate limit for actions on a single websocket.
	ActionsPerSecond float64
	ActionBurst      int
}

// Load reads Config from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogJSON:            getEnvBool("LOG_JSON", false),
		DatabaseURL:        databaseURL(),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		QueueName:          getEnv("HISTORIAN_QUEUE_NAME", "unluckysevens_actions"),
		ChannelPfx:         getEnv("ROOM_CHANNEL_PREFIX", "room:"),
		Storage:            strings.ToLower(getEnv("ROOM_STORAGE", "memory")),
		TurnSeconds:        getEnvInt("TURN_SECONDS", 30),
		TurnTimer:          getEnvBool("TURN_TIMER", true),
		HandSize:           getEnvInt("HAND_SIZE", 7),
		MatchTarget:        getEnvInt("MATCH_TARGET", 7),
		PrivateKeyPath:     os.Getenv("JWT_PRIVATE_KEY_PATH"),
		PublicKeyPath:      os.Getenv("JWT_PUBLIC_KEY_PATH"),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		RoomIdle:           time.Duration(getEnvInt("ROOM_IDLE_TIMEOUT_SEC", 86400)) * time.Second,
		ActionsPerSecond:   getEnvFloat("WS_ACTIONS_PER_SEC", 5),
		ActionBurst:        getEnvInt("WS_ACTION_BURST", 10),
	}

	expire, err := parseExpire(os.Getenv("TOKEN_EXPIRE_TIME"))
	if err != nil {
		return Config{}, err
	}
	cfg.TokenExpire = expire

	if (cfg.PrivateKeyPath == "") != (cfg.PublicKeyPath == "") {
		return Config{}, fmt.Errorf("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together")
	}
	if cfg.Storage != "memory" && cfg.Storage != "postgres" {
		return Config{}, fmt.Errorf("ROOM_STORAGE must be memory or postgres, got %q", cfg.Storage)
	}
	if cfg.Storage == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("ROOM_STORAGE=postgres needs DATABASE_URL or PG_HOST")
	}
	if cfg.HandSize < 1 || cfg.HandSize > 7 {
		return Config{}, fmt.Errorf("HAND_SIZE must be between 1 and 7, got %d", cfg.HandSize)
	}
	if cfg.MatchTarget < 1 {
		return Config{}, fmt.Errorf("MATCH_TARGET must be positive, got %d", cfg.MatchTarget)
	}
	if cfg.TurnSeconds < 0 {
		return Config{}, fmt.Errorf("TURN_SECONDS must not be negative, got %d", cfg.TurnSeconds)
	}
	return cfg, nil
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// parseExpire accepts a Go duration, or "never"/"0"/"" for no expiry.
func parseExpire(s string) (time.Duration, error) {
	if s == "" || s == "0" || s == "never" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse TOKEN_EXPIRE_TIME: %w", err)
	}
	return d, nil
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("PG_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as an integer, else returns def.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
