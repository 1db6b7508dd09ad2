package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Environment name constants used in the Environment field.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ErrHelpWanted is returned by Load when --help was passed. The usage text is
// returned alongside it.
var ErrHelpWanted = errors.New("help wanted")

// Config holds all configuration for the binaries. Every field can be set by
// environment variable or by the matching --kebab-case flag.
type Config struct {
	// Storage
	DBPath string `conf:"default:data/welding_business.db,env:DB_PATH"`

	// HTTP
	HTTPAddr           string `conf:"default::8501,env:HTTP_ADDR"`
	CORSAllowedOrigins string `conf:"default:*,env:CORS_ALLOWED_ORIGINS"`
	RateLimitPerMinute int    `conf:"default:0,env:RATE_LIMIT_PER_MINUTE"`

	// Application
	Environment string `conf:"default:development,enum:development|production,env:ENVIRONMENT"`
	LogLevel    string `conf:"default:info,env:LOG_LEVEL"`
	LogFile     string `conf:"env:LOG_FILE"`

	// Shop and invoices
	ShopName           string `conf:"default:Wel-Wishers Welding Supplies,env:SHOP_NAME"`
	Currency           string `conf:"default:Rs.,env:CURRENCY"`
	LogoPath           string `conf:"env:LOGO_PATH"`
	DecrementOnInvoice bool   `conf:"default:false,env:DECREMENT_ON_INVOICE"`

	// Signed PDF download links. An empty key is replaced by a random one at
	// startup, which invalidates links on restart.
	LinkSigningKey string        `conf:"env:LINK_SIGNING_KEY,noprint"`
	LinkTTL        time.Duration `conf:"default:24h,env:LINK_TTL"`

	// Kafka
	KafkaBrokers string `conf:"env:KAFKA_BROKERS"`
	KafkaTopic   string `conf:"default:invoices,env:KAFKA_TOPIC"`

	// Ingestion
	IngestBatchSize int           `conf:"default:3,env:INGEST_BATCH_SIZE"`
	IngestOutputDir string        `conf:"default:.,env:INGEST_OUTPUT_DIR"`
	IngestTimeout   time.Duration `conf:"default:0s,env:INGEST_TIMEOUT"`
	IngestGroup     string        `conf:"default:weldshop-ingest,env:INGEST_GROUP"`

	// Snapshot
	SnapshotPath string `conf:"default:static/index.html,env:SNAPSHOT_PATH"`
}

// Load reads configuration from .env, the environment and command-line flags.
func Load() (*Config, string, error) {
	var cfg Config
	_ = godotenv.Load()
	help, err := conf.Parse("", &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil, help, ErrHelpWanted
		}
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, "", err
	}
	return &cfg, "", nil
}

// Validate checks values conf cannot express with tags.
func Validate(cfg *Config) error {
	var errs []string

	if strings.TrimSpace(cfg.DBPath) == "" {
		errs = append(errs, "DB_PATH must not be empty")
	}
	if cfg.IngestBatchSize < 1 {
		errs = append(errs, fmt.Sprintf("INGEST_BATCH_SIZE must be at least 1 (got %d)", cfg.IngestBatchSize))
	}
	if cfg.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Sprintf("RATE_LIMIT_PER_MINUTE must not be negative (got %d)", cfg.RateLimitPerMinute))
	}
	if cfg.LinkTTL <= 0 {
		errs = append(errs, "LINK_TTL must be positive")
	}
	if cfg.Environment == EnvProduction && cfg.LinkSigningKey != "" && len(cfg.LinkSigningKey) < 32 {
		errs = append(errs, fmt.Sprintf("LINK_SIGNING_KEY must be at least 32 bytes (got %d)", len(cfg.LinkSigningKey)))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
}

// Brokers splits KafkaBrokers on commas. It returns nil when Kafka is not
// configured.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment != EnvProduction
}
