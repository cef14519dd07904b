package config

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

type Config struct {
	Host    string `envconfig:"HOST"`
	Port    string `envconfig:"PORT"`
	Domain  string `envconfig:"DOMAIN"`
	Prefix  string `envconfig:"PREFIX"`
	Mode    Mode   `envconfig:"MODE"`
	Storage Storage
	Mysql   Mysql
	Redis   Redis
	Cache   Cache
	JWT     JWT
	Log     Log `mapstructure:"Log"`
	S3      S3
	Local   Local
	Media   Media
	Sentry  Sentry
}

// Storage 选择对象存储与关系存储的实现
type Storage struct {
	Home     string `envconfig:"HOME"`
	Driver   string `envconfig:"DRIVER" mapstructure:"driver"`     // 对象存储：s3 | local
	Database string `envconfig:"DATABASE" mapstructure:"database"` // 关系存储：mysql | memory
}

type S3 struct {
	Endpoint        string `mapstructure:"endpoint"`
	BaseURL         string `mapstructure:"base_url"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_key"`
	Prefix          string `mapstructure:"prefix"`
	UsePathStyle    bool   `mapstructure:"path_style"`
}

// Local 本地磁盘存储，开发环境使用
type Local struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
	Prefix  string `mapstructure:"prefix"`
}

type Media struct {
	MaxFileSize   int64 `envconfig:"MAX_FILE_SIZE" mapstructure:"max_file_size"`   // 单文件最大字节数
	MaxFiles      int   `envconfig:"MAX_FILES" mapstructure:"max_files"`           // 单次请求最多文件数
	Concurrency   int   `envconfig:"CONCURRENCY" mapstructure:"concurrency"`       // 对象存储并发上限
	TimeoutSec    int   `envconfig:"TIMEOUT_SEC" mapstructure:"timeout_sec"`       // 单次对象存储调用超时（秒）
	SweepInterval int   `envconfig:"SWEEP_INTERVAL" mapstructure:"sweep_interval"` // 孤儿清理周期（分钟），0 关闭
	SweepGrace    int   `envconfig:"SWEEP_GRACE" mapstructure:"sweep_grace"`       // 孤儿最小存活时间（分钟）
}

type Mysql struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	DBName   string `envconfig:"DB_NAME"`
}

type Redis struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Cache driver 为 redis 或 memory
type Cache struct {
	Driver string `envconfig:"DRIVER" mapstructure:"driver"`
}

type JWT struct {
	AccessSecret string `envconfig:"ACCESS_SECRET"`
	AccessExpire int64  `envconfig:"ACCESS_EXPIRE"`
}

type Log struct {
	FilePath   string `envconfig:"LOG_FILE_PATH" mapstructure:"file_path"`     // 日志文件路径
	Level      string `envconfig:"LOG_LEVEL" mapstructure:"level"`             // 日志级别：debug, info, warn, error
	MaxSize    int    `envconfig:"LOG_MAX_SIZE" mapstructure:"max_size"`       // 日志文件最大大小（MB）
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge     int    `envconfig:"LOG_MAX_AGE" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `envconfig:"LOG_COMPRESS" mapstructure:"compress"`       // 是否压缩旧日志文件
}

type Sentry struct {
	Dsn         string  `envconfig:"DSN" mapstructure:"dsn"`
	Environment string  `envconfig:"ENVIRONMENT" mapstructure:"environment"`
	SampleRate  float64 `envconfig:"SAMPLE_RATE" mapstructure:"sample_rate"`
	Tracing     Tracing `mapstructure:"tracing"`
}

type Tracing struct {
	DBSlowThresholdMs    int `envconfig:"DB_SLOW_THRESHOLD_MS" mapstructure:"db_slow_threshold_ms"`
	RedisSlowThresholdMs int `envconfig:"REDIS_SLOW_THRESHOLD_MS" mapstructure:"redis_slow_threshold_ms"`
}
