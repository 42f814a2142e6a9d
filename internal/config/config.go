package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Session SessionConfig
	Redis   RedisConfig
	Upload  UploadConfig
	Logger  LoggerConfig
	Tracing TracingConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig points at the external PDF / practice service.
// HistoryURL may differ from BaseURL; it falls back to BaseURL when empty.
type BackendConfig struct {
	BaseURL    string
	HistoryURL string
	Timeout    time.Duration
}

type SessionConfig struct {
	Store      string // "memory" or "redis"
	CookieName string
	Secret     string
	TTL        time.Duration
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type UploadConfig struct {
	MaxSizeMB int
}

type LoggerConfig struct {
	Level string
	Env   string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	SampleRatio float64
	ServiceName string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 20)
	v.SetDefault("server.write_timeout", 150)
	v.SetDefault("server.idle_timeout", 20)

	v.SetDefault("backend.url", "http://localhost:8080")
	v.SetDefault("backend.history_url", "")
	v.SetDefault("backend.timeout", 120)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.cookie_name", "pdfquiz_session")
	v.SetDefault("session.secret", "change-me")
	v.SetDefault("session.ttl", 24*60)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("upload.max_size_mb", 10)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sample_ratio", 0.1)
	v.SetDefault("tracing.service_name", "pdf-quiz")
}

// LoadConfig reads config.yaml (optional), .env (optional) and the environment.
func LoadConfig() (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	config := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
			IdleTimeout:  time.Duration(v.GetInt("server.idle_timeout")) * time.Second,
		},
		Backend: BackendConfig{
			BaseURL:    v.GetString("backend.url"),
			HistoryURL: v.GetString("backend.history_url"),
			Timeout:    time.Duration(v.GetInt("backend.timeout")) * time.Second,
		},
		Session: SessionConfig{
			Store:      strings.ToLower(v.GetString("session.store")),
			CookieName: v.GetString("session.cookie_name"),
			Secret:     v.GetString("session.secret"),
			TTL:        time.Duration(v.GetInt("session.ttl")) * time.Minute,
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Upload: UploadConfig{
			MaxSizeMB: v.GetInt("upload.max_size_mb"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("tracing.enabled"),
			Endpoint:    v.GetString("tracing.endpoint"),
			Insecure:    v.GetBool("tracing.insecure"),
			SampleRatio: v.GetFloat64("tracing.sample_ratio"),
			ServiceName: v.GetString("tracing.service_name"),
		},
	}

	// Short env names used by the deployment scripts
	if backendURL := os.Getenv("BACKEND_URL"); backendURL != "" {
		config.Backend.BaseURL = backendURL
	}
	if historyURL := os.Getenv("HISTORY_URL"); historyURL != "" {
		config.Backend.HistoryURL = historyURL
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		v.Set("server.port", port)
		config.Server.Port = v.GetInt("server.port")
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		config.Session.Secret = secret
	}
	if store := os.Getenv("SESSION_STORE"); store != "" {
		config.Session.Store = strings.ToLower(store)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logger.Level = level
	}
	if env := os.Getenv("ENV"); env != "" {
		config.Logger.Env = env
	}
	if enabled := os.Getenv("OTEL_ENABLED"); enabled != "" {
		switch strings.ToLower(enabled) {
		case "1", "true", "yes", "on":
			config.Tracing.Enabled = true
		default:
			config.Tracing.Enabled = false
		}
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		config.Tracing.Endpoint = endpoint
	}

	if config.Backend.HistoryURL == "" {
		config.Backend.HistoryURL = config.Backend.BaseURL
	}
	return config
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int {
	return c.Upload.MaxSizeMB * 1024 * 1024
}
