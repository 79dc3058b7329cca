package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Feeds     FeedsConfig     `mapstructure:"feeds"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// RulesConfig points at the two rule collections the knowledge store loads:
// a flat indicator ruleset and a structured alert feed sharing the same shape.
type RulesConfig struct {
	IndicatorFile string `mapstructure:"indicator_file"`
	AlertFile     string `mapstructure:"alert_file"`
}

type FeedsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	OpenPhish    FeedConfig    `mapstructure:"openphish"`
	URLhaus      FeedConfig    `mapstructure:"urlhaus"`
}

type FeedConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	FeedURL        string        `mapstructure:"feed_url"`
	Priority       int           `mapstructure:"priority"`
}

// ScoringConfig exposes the engine weight table so calibration lives in one
// place. Zero values fall back to the engine defaults.
type ScoringConfig struct {
	SeverityWeights  SeverityWeights  `mapstructure:"severity_weights"`
	CategoryWeights  CategoryWeights  `mapstructure:"category_weights"`
	LevelThresholds  LevelThresholds  `mapstructure:"level_thresholds"`
	DomainRiskFloor  float64          `mapstructure:"domain_risk_floor"`
	ConfidenceGate   ConfidenceGate   `mapstructure:"confidence_gate"`
}

type SeverityWeights struct {
	High float64 `mapstructure:"high"`
	Med  float64 `mapstructure:"med"`
	Low  float64 `mapstructure:"low"`
}

type CategoryWeights struct {
	Pattern    float64 `mapstructure:"pattern"`
	Behavioral float64 `mapstructure:"behavioral"`
	Domain     float64 `mapstructure:"domain"`
	Context    float64 `mapstructure:"context"`
	Trust      float64 `mapstructure:"trust"`
}

type LevelThresholds struct {
	Red    float64 `mapstructure:"red"`
	Amber  float64 `mapstructure:"amber"`
	Yellow float64 `mapstructure:"yellow"`
}

type ConfidenceGate struct {
	High float64 `mapstructure:"high"`
	Med  float64 `mapstructure:"med"`
	Low  float64 `mapstructure:"low"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/pagesentry")
	}

	// Environment variables
	v.SetEnvPrefix("PAGESENTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.host", "PAGESENTRY_REDIS_HOST")
	v.BindEnv("redis.port", "PAGESENTRY_REDIS_PORT")
	v.BindEnv("redis.password", "PAGESENTRY_REDIS_PASSWORD")
	v.BindEnv("database.host", "PAGESENTRY_DATABASE_HOST")
	v.BindEnv("database.port", "PAGESENTRY_DATABASE_PORT")
	v.BindEnv("database.user", "PAGESENTRY_DATABASE_USER")
	v.BindEnv("database.password", "PAGESENTRY_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "PAGESENTRY_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "PAGESENTRY_DATABASE_SSLMODE")
	v.BindEnv("rules.indicator_file", "PAGESENTRY_RULES_INDICATOR_FILE")
	v.BindEnv("rules.alert_file", "PAGESENTRY_RULES_ALERT_FILE")
	v.BindEnv("app.environment", "PAGESENTRY_APP_ENVIRONMENT")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}
