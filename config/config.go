package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Session  SessionConfig  `mapstructure:"session"`
	Public   PublicConfig   `mapstructure:"public"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BodyLimit    int64      `mapstructure:"body_limit"`   // 字节
	UploadLimit  int64      `mapstructure:"upload_limit"` // 课表文件上传上限（字节）
	CORS         CORSConfig `mapstructure:"cors"`
	FetchWorkers int        `mapstructure:"fetch_workers"` // 多教室并发拉取上限
	Metrics      bool       `mapstructure:"metrics"`       // 是否暴露 /metrics
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// UpstreamConfig 后端 REST API 配置
type UpstreamConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryTimeout time.Duration `mapstructure:"retry_timeout"` // 单次重试使用的延长超时
	RetryPaths   []string      `mapstructure:"retry_paths"`   // 允许重试的路径前缀
}

// DatabaseConfig PostgreSQL 数据库配置（仅存放网关会话）
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 网关 JWT 配置
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// SessionConfig 会话存活检测配置
type SessionConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// PublicConfig 公开课表查询配置
type PublicConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.upload_limit", 10<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.fetch_workers", 8)
	v.SetDefault("server.metrics", true)

	v.SetDefault("upstream.base_url", "http://localhost:5000")
	v.SetDefault("upstream.timeout", "10s")
	v.SetDefault("upstream.retry_timeout", "30s")
	v.SetDefault("upstream.retry_paths", []string{"/doctors/", "/rooms"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "college_schedule")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Baghdad")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// 无默认值的键也需登记，AutomaticEnv 才能在 Unmarshal 时生效
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("auth.token_ttl", "12h")

	v.SetDefault("session.sweep_interval", "30s")

	v.SetDefault("public.cache_ttl", "60s")
	v.SetDefault("public.rate_limit", 60)
	v.SetDefault("public.rate_limit_window", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("SCHED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("配置校验失败: upstream.base_url 不能为空")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("配置校验失败: upstream.timeout 必须大于 0")
	}
	if c.Upstream.RetryTimeout < c.Upstream.Timeout {
		return fmt.Errorf("配置校验失败: upstream.retry_timeout 不能小于 upstream.timeout")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("配置校验失败: session.sweep_interval 必须大于 0")
	}
	return nil
}
