package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Audit     AuditConfig     `mapstructure:"audit"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// QueueKey holds pending envelopes; ProcessingKey holds envelopes
	// claimed by a worker until acked or requeued.
	QueueKey      string `mapstructure:"queue_key"`
	ProcessingKey string `mapstructure:"processing_key"`
}

type IngestConfig struct {
	MaxTextChars int `mapstructure:"max_text_chars"`
}

type WorkerConfig struct {
	BatchSize   int `mapstructure:"batch_size"`
	WaitSeconds int `mapstructure:"wait_seconds"`

	// DelayMsPerChar simulates per-character processing cost (the original
	// pipeline budgeted 50ms per character). Set to 0 to disable.
	DelayMsPerChar int `mapstructure:"delay_ms_per_char"`
}

type RateLimitConfig struct {
	QPS   float64 `mapstructure:"qps"`
	Burst int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type AuditConfig struct {
	Dir      string `mapstructure:"dir"`
	AdminKey string `mapstructure:"admin_key"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. LOGGATE_REDIS_ADDR, LOGGATE_DATABASE_DSN
	viper.SetEnvPrefix("loggate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.queue_key", "loggate:queue")
	viper.SetDefault("redis.processing_key", "loggate:processing")
	viper.SetDefault("ingest.max_text_chars", 10000)
	viper.SetDefault("worker.batch_size", 10)
	viper.SetDefault("worker.wait_seconds", 5)
	viper.SetDefault("worker.delay_ms_per_char", 50)
	viper.SetDefault("ratelimit.qps", 50)
	viper.SetDefault("ratelimit.burst", 100)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("audit.dir", "./logs")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
