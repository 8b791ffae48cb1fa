package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Event    EventConfig    `mapstructure:"event"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// 支持的数据库驱动
const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig 定义了持久化存储相关的配置
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	LogLevel string         `mapstructure:"logLevel"`
	Sqlite   SqliteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// SqliteConfig 定义了SQLite的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig 定义了PostgreSQL的配置
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 定义了Redis缓存的配置。
// Redis只是游戏状态视图的缓存，关闭后所有读取直接走数据库。
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	StateTTL time.Duration `mapstructure:"stateTTL"`
}

// 支持的事件生成器
const (
	ProviderScripted = "scripted"
	ProviderGemini   = "gemini"
)

// EventConfig 定义了事件生成器的配置
type EventConfig struct {
	Provider    string        `mapstructure:"provider"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CatalogPath string        `mapstructure:"catalogPath"`
	Gemini      GeminiConfig  `mapstructure:"gemini"`
	Bounds      BoundsConfig  `mapstructure:"bounds"`
}

// GeminiConfig 定义了Gemini模型的配置
type GeminiConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}

// BoundsConfig 定义了事件选项中每个字段允许的最大绝对影响值，0表示不限制
type BoundsConfig struct {
	Health        float64 `mapstructure:"health"`
	Happiness     float64 `mapstructure:"happiness"`
	Stress        float64 `mapstructure:"stress"`
	Reputation    float64 `mapstructure:"reputation"`
	Education     float64 `mapstructure:"education"`
	Money         float64 `mapstructure:"money"`
	WeeklyIncome  float64 `mapstructure:"weeklyIncome"`
	WeeklyExpense float64 `mapstructure:"weeklyExpense"`
	FreeTime      float64 `mapstructure:"freeTime"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{
		"http://localhost:5173", "http://127.0.0.1:5173",
		"http://localhost:3000", "http://127.0.0.1:3000",
	})

	v.SetDefault("database.driver", DriverSqlite)
	v.SetDefault("database.logLevel", "silent")
	v.SetDefault("database.sqlite.path", "lifesim.db")
	v.SetDefault("database.postgres.dsn", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stateTTL", 30*time.Minute)

	v.SetDefault("event.provider", ProviderScripted)
	v.SetDefault("event.timeout", 8*time.Second)
	v.SetDefault("event.catalogPath", "")
	v.SetDefault("event.gemini.apiKey", "")
	v.SetDefault("event.gemini.model", "gemini-2.0-flash")
	// 心理类属性默认 ±20，财务类默认不限制
	v.SetDefault("event.bounds.health", 20)
	v.SetDefault("event.bounds.happiness", 20)
	v.SetDefault("event.bounds.stress", 20)
	v.SetDefault("event.bounds.reputation", 20)
	v.SetDefault("event.bounds.education", 20)
	v.SetDefault("event.bounds.money", 0)
	v.SetDefault("event.bounds.weeklyIncome", 0)
	v.SetDefault("event.bounds.weeklyExpense", 0)
	v.SetDefault("event.bounds.freeTime", 0)
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 找不到 config.yaml 时使用默认值和环境变量
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 允许通过环境变量覆盖配置，例如 EVENT_GEMINI_APIKEY=xxx
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		fmt.Println("未找到 config.yaml，使用默认配置。")
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

// Validate 检查配置中互相依赖的字段
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("不支持的服务器模式: %q", c.Server.Mode)
	}

	switch c.Database.Driver {
	case DriverSqlite:
		if c.Database.Sqlite.Path == "" {
			return fmt.Errorf("database.sqlite.path 不能为空")
		}
	case DriverPostgres:
		if c.Database.Postgres.DSN == "" {
			return fmt.Errorf("database.driver=postgres 需要设置 database.postgres.dsn")
		}
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}

	switch c.Event.Provider {
	case ProviderScripted:
	case ProviderGemini:
		if c.Event.Gemini.APIKey == "" {
			return fmt.Errorf("event.provider=gemini 需要设置 event.gemini.apiKey")
		}
	default:
		return fmt.Errorf("不支持的事件生成器: %q", c.Event.Provider)
	}

	if c.Event.Timeout <= 0 {
		return fmt.Errorf("event.timeout 必须大于0")
	}
	return nil
}
