package env

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultConfigFile = "config.yaml"

type Config struct {
	Env     string
	Server  ServerConfig
	Store   StoreConfig
	Search  SearchConfig
	Storage StorageConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Log     LogConfig

	// DotEnvLoaded reports whether a .env file was found.
	DotEnvLoaded bool
	// ConfigFile is the YAML file that was read, if any.
	ConfigFile string
}

type ServerConfig struct {
	Port int
}

type StoreConfig struct {
	CSVPath     string
	DatabaseURL string
}

type SearchConfig struct {
	APIKey   string
	BaseURL  string
	CacheTTL time.Duration
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	Region        string
	PublicBaseURL string
	PresignExpiry time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Broker  string
	Topic   string
	GroupID string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// envNames binds config keys to the environment variable names used in
// deployments. Keys not listed here follow the automatic A_B mapping.
var envNames = map[string]string{
	"search.api_key":          "GAODE_API_KEY",
	"search.base_url":         "GAODE_BASE_URL",
	"store.database_url":      "DATABASE_URL",
	"store.csv_path":          "SHOPS_CSV_PATH",
	"storage.endpoint":        "MINIO_ENDPOINT",
	"storage.access_key":      "MINIO_ACCESS_KEY",
	"storage.secret_key":      "MINIO_SECRET_KEY",
	"storage.use_ssl":         "MINIO_USE_SSL",
	"storage.bucket":          "MINIO_BUCKET",
	"storage.region":          "MINIO_REGION",
	"storage.public_base_url": "MINIO_PUBLIC_URL",
	"storage.presign_expiry":  "MINIO_PRESIGN_EXPIRY",
	"kafka.broker":            "KAFKA_BROKER",
	"kafka.topic":             "KAFKA_TOPIC",
	"kafka.group_id":          "KAFKA_GROUP_ID",
	"app.env":                 "APP_ENV",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.csv_path", "shops_data.csv")
	v.SetDefault("search.base_url", "https://restapi.amap.com")
	v.SetDefault("search.cache_ttl", 10*time.Minute)
	v.SetDefault("storage.bucket", "shopphoto")
	v.SetDefault("storage.presign_expiry", time.Hour)
	v.SetDefault("kafka.topic", "minio-events")
	v.SetDefault("kafka.group_id", "photowatch")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

// Load reads .env (if present), then an optional YAML file, then the
// environment, which wins over the file. An empty configFile means
// config.yaml in the working directory when it exists.
func Load(configFile string) (*Config, error) {
	dotenv := godotenv.Load() == nil

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range envNames {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	} else {
		configFile = ""
	}

	cfg := &Config{
		Env:    v.GetString("app.env"),
		Server: ServerConfig{Port: v.GetInt("server.port")},
		Store: StoreConfig{
			CSVPath:     v.GetString("store.csv_path"),
			DatabaseURL: v.GetString("store.database_url"),
		},
		Search: SearchConfig{
			APIKey:   v.GetString("search.api_key"),
			BaseURL:  v.GetString("search.base_url"),
			CacheTTL: v.GetDuration("search.cache_ttl"),
		},
		Storage: StorageConfig{
			Endpoint:      v.GetString("storage.endpoint"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			UseSSL:        v.GetBool("storage.use_ssl"),
			Bucket:        v.GetString("storage.bucket"),
			Region:        v.GetString("storage.region"),
			PublicBaseURL: v.GetString("storage.public_base_url"),
			PresignExpiry: v.GetDuration("storage.presign_expiry"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Kafka: KafkaConfig{
			Broker:  v.GetString("kafka.broker"),
			Topic:   v.GetString("kafka.topic"),
			GroupID: v.GetString("kafka.group_id"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		DotEnvLoaded: dotenv,
		ConfigFile:   configFile,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that must hold regardless of which optional
// backends are enabled.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Store.CSVPath == "" {
		errs = append(errs, errors.New("csv path must not be empty"))
	}
	if c.Storage.Endpoint != "" && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT"))
	}
	return errors.Join(errs...)
}

func (c *Config) CloudEnabled() bool   { return c.Store.DatabaseURL != "" }
func (c *Config) StorageEnabled() bool { return c.Storage.Endpoint != "" }
func (c *Config) RedisEnabled() bool   { return c.Redis.Addr != "" }
func (c *Config) KafkaEnabled() bool   { return c.Kafka.Broker != "" }
