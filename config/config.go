package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Web       WebConfig       `yaml:"web"`
	Shopify   ShopifyConfig   `yaml:"shopify"`
	Courier   CourierConfig   `yaml:"courier"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Messaging MessagingConfig `yaml:"messaging"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

type ShopifyConfig struct {
	// APISecret is the shared secret used to sign webhook bodies.
	APISecret  string `yaml:"api_secret"`
	APIVersion string `yaml:"api_version"`
	// BaseURL overrides the per-shop Admin API root when set; used for
	// staging proxies and tests. Empty means derive from the shop domain.
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type CourierConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type PipelineConfig struct {
	// Cooldown is the minimum spacing between successful shipment
	// creations for the same order number.
	Cooldown        time.Duration `yaml:"cooldown"`
	CooldownBackend string        `yaml:"cooldown_backend"` // "memory" or "redis"
	// PickupTimezone is the IANA zone used to compute the next-day pickup
	// date. The upstream system never states whose timezone applies, so it
	// is an explicit knob rather than a guess. Empty means server local.
	PickupTimezone string `yaml:"pickup_timezone"`
	TimeZoneField  string `yaml:"time_zone_field"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MessagingConfig struct {
	Enabled             bool          `yaml:"enabled"`
	Kafka               KafkaConfig   `yaml:"kafka"`
	EventsTopic         string        `yaml:"events_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

func Defaults() *Config {
	return &Config{
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          3001,
			SessionSecret: "change-me-in-production",
		},
		Shopify: ShopifyConfig{
			APIVersion: "2024-07",
			Timeout:    15 * time.Second,
		},
		Courier: CourierConfig{
			BaseURL: "https://myjeebly.jeebly.com",
			Timeout: 20 * time.Second,
		},
		Pipeline: PipelineConfig{
			Cooldown:        time.Minute,
			CooldownBackend: "memory",
			PickupTimezone:  "",
			TimeZoneField:   "00:00",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "shipgate.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "shipgate",
				User:     "shipgate",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Address:  "localhost:6379",
			Password: "",
			DB:       0,
		},
		Messaging: MessagingConfig{
			Enabled: false,
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "shipgate",
			},
			EventsTopic:         "shipgate.shipments",
			OutboxDrainInterval: 5 * time.Second,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	// The signing secret is the one thing that must never live in a checked-in
	// yaml file; allow the usual env override.
	if s := os.Getenv("SHOPIFY_API_SECRET"); s != "" {
		cfg.Shopify.APISecret = s
	}
	return cfg, nil
}
