package config

import (
	"errors"
	"os"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const envPrefix = "CIVIC"

var (
	cfg *Config
	mu  sync.RWMutex
)

// Init 读取配置文件并用环境变量覆盖，必须在其他模块之前调用
func Init() {
	c, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	Set(c)
}

// Set 替换全局配置
func Set(c *Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}

// Get 返回全局配置；未调用 Init 时返回默认配置（测试场景）
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c != nil {
		return c
	}
	d := Default()
	mu.Lock()
	defer mu.Unlock()
	if cfg == nil {
		cfg = &d
	}
	return cfg
}

// Load 按 默认值 -> 配置文件 -> 环境变量 的顺序构造配置
func Load(path string) (*Config, error) {
	c := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	} else if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	if err := envconfig.Process(envPrefix, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Default() Config {
	return Config{
		Host:   "0.0.0.0",
		Port:   "8080",
		Prefix: "api/v1",
		Mode:   ModeDebug,
		Storage: Storage{
			Driver:   "local",
			Database: "mysql",
		},
		Mysql: Mysql{
			Host:   "127.0.0.1",
			Port:   "3306",
			DBName: "civic_project",
		},
		Redis: Redis{
			Host: "127.0.0.1",
			Port: "6379",
		},
		Cache: Cache{Driver: "redis"},
		JWT: JWT{
			AccessExpire: 86400,
		},
		Log: Log{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
		},
		S3: S3{
			Region: "us-east-1",
			Prefix: "media",
		},
		Local: Local{
			Dir:     "./uploads",
			BaseURL: "http://localhost:8080/uploads",
			Prefix:  "media",
		},
		Media: Media{
			MaxFileSize:   10 << 20,
			MaxFiles:      10,
			Concurrency:   4,
			TimeoutSec:    30,
			SweepInterval: 60,
			SweepGrace:    60,
		},
	}
}
