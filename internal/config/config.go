package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	JWT          JWTConfig          `yaml:"jwt"`
	Tracing      TracingConfig      `mapstructure:"tracing" yaml:"tracing"`
	Redis        RedisConfig        `yaml:"redis"`
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
	CORS         CORSConfig         `mapstructure:"cors" yaml:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit" yaml:"rate_limit"`
	Gamification GamificationConfig `mapstructure:"gamification" yaml:"gamification"`
	Analytics    AnalyticsConfig    `mapstructure:"analytics" yaml:"analytics"`
	Repair       RepairConfig       `mapstructure:"repair" yaml:"repair"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-" yaml:"-"`
	MigrateOnly  bool `mapstructure:"-" yaml:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests" yaml:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes" yaml:"window_minutes"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	DBName    string `yaml:"dbname"`
	Charset   string `yaml:"charset"`
	ParseTime bool   `mapstructure:"parsetime" yaml:"parsetime"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret" yaml:"secret"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint" yaml:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// GamificationConfig XP 奖励与等级规则
type GamificationConfig struct {
	XPFastAnswer int `mapstructure:"xp_fast_answer" yaml:"xp_fast_answer"`
	XPSlowAnswer int `mapstructure:"xp_slow_answer" yaml:"xp_slow_answer"`
	FastAnswerMs int `mapstructure:"fast_answer_ms" yaml:"fast_answer_ms"`
	XPPerLevel   int `mapstructure:"xp_per_level" yaml:"xp_per_level"`
}

type AnalyticsConfig struct {
	Timezone                string        `mapstructure:"timezone" yaml:"timezone"`
	HardestDefaultLimit     int           `mapstructure:"hardest_default_limit" yaml:"hardest_default_limit"`
	LessonRecomputeInterval time.Duration `mapstructure:"lesson_recompute_interval" yaml:"lesson_recompute_interval"`
	DashboardCacheTTL       time.Duration `mapstructure:"dashboard_cache_ttl" yaml:"dashboard_cache_ttl"`
}

// Location 返回统计按天划分所使用的时区，配置无效时回退到 UTC
func (c AnalyticsConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type RepairConfig struct {
	QueueSize      int           `mapstructure:"queue_size" yaml:"queue_size"`
	MaxAttempts    int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" yaml:"initial_backoff"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("gamification.xp_fast_answer", 10)
	v.SetDefault("gamification.xp_slow_answer", 5)
	v.SetDefault("gamification.fast_answer_ms", 30000)
	v.SetDefault("gamification.xp_per_level", 100)

	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.hardest_default_limit", 10)
	v.SetDefault("analytics.lesson_recompute_interval", "15m")
	v.SetDefault("analytics.dashboard_cache_ttl", "30s")

	v.SetDefault("repair.queue_size", 1024)
	v.SetDefault("repair.max_attempts", 5)
	v.SetDefault("repair.initial_backoff", "200ms")
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LOGICFY")
	v.AutomaticEnv()

	setDefaults(v)

	// Database
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
	v.BindEnv("server.port", "SERVER_PORT")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Analytics
	v.BindEnv("analytics.timezone", "ANALYTICS_TIMEZONE")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if dir := logDir(cfg.Log.File); dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			os.MkdirAll(dir, 0755)
		}
	}

	return &cfg, nil
}

// Validate 校验配置中会影响积分与统计正确性的字段
func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	g := c.Gamification
	if g.XPFastAnswer <= 0 || g.XPSlowAnswer <= 0 {
		return fmt.Errorf("gamification xp awards must be positive (fast=%d, slow=%d)", g.XPFastAnswer, g.XPSlowAnswer)
	}
	if g.XPPerLevel <= 0 {
		return fmt.Errorf("gamification.xp_per_level must be positive, got %d", g.XPPerLevel)
	}
	if g.FastAnswerMs < 0 {
		return fmt.Errorf("gamification.fast_answer_ms must not be negative, got %d", g.FastAnswerMs)
	}
	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		return fmt.Errorf("invalid analytics.timezone %q: %w", c.Analytics.Timezone, err)
	}
	return nil
}

func logDir(file string) string {
	for i := len(file) - 1; i >= 0; i-- {
		if file[i] == '/' {
			return file[:i]
		}
	}
	return ""
}
