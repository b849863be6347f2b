package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Progress  ProgressConfig  `mapstructure:"progress"`

	// 配置文件路径（运行时填充，用于热加载）
	File string `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"` // mysql | postgres | sqlite
	DSN       string `mapstructure:"dsn"`    // 设置后忽略下面的连接参数
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool   `mapstructure:"parse_time"`
	SSLMode   string `mapstructure:"ssl_mode"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// ProgressConfig 学习进度引擎的策略参数
type ProgressConfig struct {
	Timezone              string        `mapstructure:"timezone"`
	StoreTimeout          time.Duration `mapstructure:"store_timeout"`
	MaxAttempts           int           `mapstructure:"max_attempts"`
	MaxReviewIntervalDays int           `mapstructure:"max_review_interval_days"`
	PassingScore          int           `mapstructure:"passing_score"`
	CatalogCacheTTL       time.Duration `mapstructure:"catalog_cache_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("progress.timezone", "UTC")
	v.SetDefault("progress.store_timeout", 3*time.Second)
	v.SetDefault("progress.max_attempts", 4)
	v.SetDefault("progress.max_review_interval_days", 365)
	v.SetDefault("progress.passing_score", 0)
	v.SetDefault("progress.catalog_cache_ttl", 10*time.Minute)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LINGUA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if err := cfg.Progress.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (p ProgressConfig) Validate() error {
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("progress.timezone: %w", err)
	}
	if p.MaxAttempts < 1 {
		return fmt.Errorf("progress.max_attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.StoreTimeout <= 0 {
		return fmt.Errorf("progress.store_timeout must be positive, got %s", p.StoreTimeout)
	}
	if p.PassingScore < 0 || p.PassingScore > 100 {
		return fmt.Errorf("progress.passing_score must be within [0,100], got %d", p.PassingScore)
	}
	return nil
}
