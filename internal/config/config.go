package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// developmentSecret signs tokens when JWT_SECRET is unset outside production.
const developmentSecret = "arm-desk-development-secret"

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config covers both halves of arm-desk: the desk API server and the CLI
// client that talks to it.
type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// Store selects the API persistence: "postgres" (default) or "memory".
	Store string

	JWTSecret string
	TokenTTL  time.Duration
	// SeedUsers is "name:password[:admin],..." and is applied when the user
	// table is empty.
	SeedUsers string

	KafkaBrokers   []string
	KafkaTopicDesk string

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}

	Client ClientConfig
}

// ClientConfig is what the CLI needs to reach the API and keep its session.
type ClientConfig struct {
	APIURL    string
	StatePath string
	Timeout   time.Duration
	Locale    string

	// Username and Password are only read with --ephemeral, where every
	// command logs in for itself.
	Username string
	Password string
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:        getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:       firstEnv("APP_PORT", "HTTP_PORT", "8000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Store:          getEnv("DESK_STORE", StorePostgres),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SeedUsers:      getEnv("ARM_DESK_SEED_USERS", "user:user123,admin:admin123:admin"),
		KafkaBrokers:   ParseList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicDesk: getEnv("KAFKA_TOPIC_DESK", ""),
	}
	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("config: TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl
	if cfg.JWTSecret == "" && cfg.AppEnv != "production" {
		cfg.JWTSecret = developmentSecret
	}

	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "arm_service_desk")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	timeout, err := time.ParseDuration(getEnv("ARM_DESK_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("config: ARM_DESK_TIMEOUT: %w", err)
	}
	cfg.Client = ClientConfig{
		APIURL:    getEnv("ARM_DESK_API_URL", "http://localhost:8000/api"),
		StatePath: getEnv("ARM_DESK_STATE", defaultStatePath()),
		Timeout:   timeout,
		Locale:    getEnv("ARM_DESK_LOCALE", "en"),
		Username:  getEnv("ARM_DESK_USERNAME", ""),
		Password:  getEnv("ARM_DESK_PASSWORD", ""),
	}
	return cfg, nil
}

// Validate checks the settings the API server needs.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DB.Host == "" || c.DB.Database == "" {
			return errors.New("config: DB_HOST and DB_DATABASE are required")
		}
		if c.AppEnv == "production" && c.DB.Password == "" {
			return errors.New("config: in production DB_PASSWORD is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: unknown DESK_STORE %q", c.Store)
	}
	if c.AppEnv == "production" && c.JWTSecret == "" {
		return errors.New("config: in production JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	return nil
}

// ValidateClient checks the settings the CLI needs.
func (c *Config) ValidateClient() error {
	u, err := url.Parse(c.Client.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid ARM_DESK_API_URL %q", c.Client.APIURL)
	}
	if c.Client.Timeout < 0 {
		return errors.New("config: ARM_DESK_TIMEOUT must not be negative")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

// ParseList splits "a,b, c" into its non-empty trimmed parts.
func ParseList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// defaultStatePath is $XDG_CONFIG_HOME/arm-desk/state.db, falling back to
// ~/.config.
func defaultStatePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "arm-desk-state.db")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "arm-desk", "state.db")
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
