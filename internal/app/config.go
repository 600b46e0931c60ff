package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	QueueRedis  = "redis"
	QueueMemory = "memory"
)

type App struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	APIPrefix   string `yaml:"api_prefix"`
}

type HTTP struct {
	Listen      string   `yaml:"listen"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type Database struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `yaml:"conn_max_lifetime_seconds"`
	LogLevel               string `yaml:"log_level"`
	BatchSize              int    `yaml:"batch_size"`
}

type Redis struct {
	Addr             string `yaml:"addr"`
	Password         string `yaml:"password"`
	DB               int    `yaml:"db"`
	QueueKey         string `yaml:"queue_key"`
	ResultTTLSeconds int    `yaml:"result_ttl_seconds"`
}

type Collect struct {
	DataDir              string `yaml:"data_dir"`
	Cron                 string `yaml:"cron"`
	Workers              int    `yaml:"workers"`
	TimeLimitSeconds     int    `yaml:"time_limit_seconds"`
	SoftTimeLimitSeconds int    `yaml:"soft_time_limit_seconds"`
	Queue                string `yaml:"queue"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Retry struct {
	Attempts       int `yaml:"attempts"`
	BackoffSeconds int `yaml:"backoff_seconds"`
}

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`
	Collect  Collect  `yaml:"collect"`
	Log      Log      `yaml:"log"`
	Retry    Retry    `yaml:"retry"`
}

// TimeLimit 返回单个采集任务的硬超时。
func (c Collect) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds) * time.Second
}

// SoftTimeLimit 返回单个采集任务的告警阈值。
func (c Collect) SoftTimeLimit() time.Duration {
	return time.Duration(c.SoftTimeLimitSeconds) * time.Second
}

// Backoff 返回首次重试前的等待时间。
func (r Retry) Backoff() time.Duration {
	return time.Duration(r.BackoffSeconds) * time.Second
}

// IsProduction 判断是否运行在生产环境。
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

// LoadConfig 从文件加载配置，再用环境变量覆盖，最后补齐默认值并校验。
// 文件不存在时只使用环境变量与默认值。
func LoadConfig(path string) (Config, error) {
	var cfg Config
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("解析配置失败: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("读取配置失败: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("环境变量 %s 不是整数: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("ENVIRONMENT", &c.App.Environment)
	str("VERSION", &c.App.Version)
	str("API_PREFIX", &c.App.APIPrefix)
	str("HTTP_LISTEN", &c.HTTP.Listen)
	if v, ok := lookup("BACKEND_CORS_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}
	str("DATABASE_DRIVER", &c.Database.Driver)
	str("DATABASE_URL", &c.Database.DSN)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("DATA_DIR", &c.Collect.DataDir)
	str("COLLECT_CRON", &c.Collect.Cron)
	str("COLLECT_QUEUE", &c.Collect.Queue)
	str("LOG_LEVEL", &c.Log.Level)
	if err := num("REDIS_DB", &c.Redis.DB); err != nil {
		return err
	}
	return num("COLLECT_WORKERS", &c.Collect.Workers)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

// Defaults 为缺省字段填充默认值。
func (c *Config) Defaults() {
	if c.App.Name == "" {
		c.App.Name = "DAO Portal API"
	}
	if c.App.Version == "" {
		c.App.Version = "0.1.0"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.APIPrefix == "" {
		c.App.APIPrefix = "/api/v1"
	}
	c.App.APIPrefix = "/" + strings.Trim(c.App.APIPrefix, "/")
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = ":8080"
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"http://localhost:3000"}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeSeconds == 0 {
		c.Database.ConnMaxLifetimeSeconds = 1800
	}
	if c.Database.BatchSize == 0 {
		c.Database.BatchSize = 100
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.QueueKey == "" {
		c.Redis.QueueKey = "daoportal:tasks"
	}
	if c.Redis.ResultTTLSeconds == 0 {
		c.Redis.ResultTTLSeconds = 86400
	}
	if c.Collect.DataDir == "" {
		c.Collect.DataDir = "/data"
	}
	if c.Collect.Cron == "" {
		c.Collect.Cron = "0 2 * * *"
	}
	if c.Collect.Workers == 0 {
		c.Collect.Workers = 4
	}
	if c.Collect.TimeLimitSeconds == 0 {
		c.Collect.TimeLimitSeconds = 3600
	}
	if c.Collect.SoftTimeLimitSeconds == 0 {
		c.Collect.SoftTimeLimitSeconds = 1800
	}
	if c.Collect.Queue == "" {
		c.Collect.Queue = QueueRedis
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = 3
	}
	if c.Retry.BackoffSeconds == 0 {
		c.Retry.BackoffSeconds = 1
	}
}

// Validate 校验配置取值。
func (c Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	switch c.Collect.Queue {
	case QueueRedis, QueueMemory:
	default:
		return fmt.Errorf("不支持的队列类型: %s", c.Collect.Queue)
	}
	if c.Collect.Workers <= 0 {
		return fmt.Errorf("collect.workers 必须大于 0")
	}
	if c.Collect.TimeLimitSeconds <= 0 || c.Collect.SoftTimeLimitSeconds <= 0 {
		return fmt.Errorf("collect 时间限制必须大于 0")
	}
	if c.Collect.SoftTimeLimitSeconds > c.Collect.TimeLimitSeconds {
		return fmt.Errorf("collect.soft_time_limit_seconds 不能大于 time_limit_seconds")
	}
	if c.Database.BatchSize <= 0 {
		return fmt.Errorf("database.batch_size 必须大于 0")
	}
	if c.Retry.Attempts <= 0 {
		return fmt.Errorf("retry.attempts 必须大于 0")
	}
	return nil
}
