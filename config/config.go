package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Log         LogConfig         `mapstructure:"log"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Sheets      SheetsConfig      `mapstructure:"sheets"`
	Inventory   InventoryConfig   `mapstructure:"inventory"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Jobs        JobsConfig        `mapstructure:"jobs"`
	Security    SecurityConfig    `mapstructure:"security"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// MarketplaceConfig configures the MercadoLibre API client.
type MarketplaceConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	AuthURL        string        `mapstructure:"auth_url"`
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	SellerID       int64         `mapstructure:"seller_id"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"`
	RatePerSecond  float64       `mapstructure:"rate_per_second"`
	Burst          int           `mapstructure:"burst"`
	Concurrency    int           `mapstructure:"concurrency"` // in-flight requests per fan-out
}

// SheetsConfig locates the spreadsheets that feed product costs.
type SheetsConfig struct {
	CredentialsFile      string        `mapstructure:"credentials_file"`
	MappingSpreadsheetID string        `mapstructure:"mapping_spreadsheet_id"`
	MappingRange         string        `mapstructure:"mapping_range"`
	PriceSpreadsheetID   string        `mapstructure:"price_spreadsheet_id"`
	PriceRange           string        `mapstructure:"price_range"`
	SnapshotFolderID     string        `mapstructure:"snapshot_folder_id"`
	SnapshotPrefix       string        `mapstructure:"snapshot_prefix"`
	FilePause            time.Duration `mapstructure:"file_pause"`
}

// InventoryConfig configures forwarding of stock-location notifications.
type InventoryConfig struct {
	Mode    string        `mapstructure:"mode"` // http, kafka, off
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	InventoryTopic string   `mapstructure:"inventory_topic"`
	OrderTopic     string   `mapstructure:"order_topic"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// JobsConfig holds pacing and windows for the reconciliation jobs.
type JobsConfig struct {
	ShippingBatchSize      int           `mapstructure:"shipping_batch_size"`
	ShippingBatchPause     time.Duration `mapstructure:"shipping_batch_pause"`
	OrderPause             time.Duration `mapstructure:"order_pause"`
	CostBackfillWindow     time.Duration `mapstructure:"cost_backfill_window"`
	ShippingRecheckWindow  time.Duration `mapstructure:"shipping_recheck_window"`
	CoverageWindow         time.Duration `mapstructure:"coverage_window"`
	ImportWindow           time.Duration `mapstructure:"import_window"`
	ImportPageSize         int           `mapstructure:"import_page_size"`
	ImportPause            time.Duration `mapstructure:"import_pause"`
	RecomputeFrom          string        `mapstructure:"recompute_from"` // YYYY-MM-DD
	RecomputeBatchSize     int           `mapstructure:"recompute_batch_size"`
	WebhookRateLimit       int64         `mapstructure:"webhook_rate_limit"`
	NotificationDedupeTTL  time.Duration `mapstructure:"notification_dedupe_ttl"`
	InventoryDispatchLimit time.Duration `mapstructure:"inventory_dispatch_limit"`
}

type SecurityConfig struct {
	CredentialsKey string `mapstructure:"credentials_key"` // 32-byte hex-encoded key for AES-256
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: MRC_ (MercadoLibre Reconciler).
// Nested keys use underscore: MRC_DATABASE_HOST, MRC_MARKETPLACE_CLIENT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "meli_reconciler")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("marketplace.base_url", "https://api.mercadolibre.com")
	v.SetDefault("marketplace.auth_url", "https://api.mercadolibre.com/oauth/token")
	v.SetDefault("marketplace.client_id", "")
	v.SetDefault("marketplace.client_secret", "")
	v.SetDefault("marketplace.seller_id", 0)
	v.SetDefault("marketplace.request_timeout", "15s")
	v.SetDefault("marketplace.max_attempts", 5)
	v.SetDefault("marketplace.backoff_base", "1s")
	v.SetDefault("marketplace.rate_per_second", 10)
	v.SetDefault("marketplace.burst", 5)
	v.SetDefault("marketplace.concurrency", 5)

	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.mapping_spreadsheet_id", "")
	v.SetDefault("sheets.mapping_range", "Productos!A2:B")
	v.SetDefault("sheets.price_spreadsheet_id", "")
	v.SetDefault("sheets.price_range", "C!A2:E")
	v.SetDefault("sheets.snapshot_folder_id", "")
	v.SetDefault("sheets.snapshot_prefix", "Amazon KPIS")
	v.SetDefault("sheets.file_pause", "1s")

	v.SetDefault("inventory.mode", "http")
	v.SetDefault("inventory.url", "")
	v.SetDefault("inventory.api_key", "")
	v.SetDefault("inventory.timeout", "10s")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.inventory_topic", "inventory.stock-locations")
	v.SetDefault("kafka.order_topic", "orders.reconciled")

	v.SetDefault("jobs.shipping_batch_size", 50)
	v.SetDefault("jobs.shipping_batch_pause", "1s")
	v.SetDefault("jobs.order_pause", "500ms")
	v.SetDefault("jobs.cost_backfill_window", "720h")
	v.SetDefault("jobs.shipping_recheck_window", "4320h")
	v.SetDefault("jobs.coverage_window", "168h")
	v.SetDefault("jobs.import_window", "72h")
	v.SetDefault("jobs.import_page_size", 50)
	v.SetDefault("jobs.import_pause", "1s")
	v.SetDefault("jobs.recompute_from", "2024-09-12")
	v.SetDefault("jobs.recompute_batch_size", 200)
	v.SetDefault("jobs.webhook_rate_limit", 600)
	v.SetDefault("jobs.notification_dedupe_ttl", "10m")
	v.SetDefault("jobs.inventory_dispatch_limit", "30s")

	v.SetDefault("security.credentials_key", "")

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: MRC_DATABASE_HOST -> database.host
	v.SetEnvPrefix("MRC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// RecomputeFromDate parses Jobs.RecomputeFrom.
func (j JobsConfig) RecomputeFromDate() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, j.RecomputeFrom)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing jobs.recompute_from: %w", err)
	}
	return t, nil
}
