package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    LoggerConfig    `yaml:"logger"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Services  ServicesConfig  `yaml:"services"`
	S3        S3Config        `yaml:"s3"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Jobs      JobsConfig      `yaml:"jobs"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	BasePath        string        `yaml:"base_path"`
	Env             string        `yaml:"env"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig accepts either a URL or host/port parts. URL wins when both are set.
type RedisConfig struct {
	URL         string        `yaml:"url"`
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	LastSeenTTL time.Duration `yaml:"last_seen_ttl"`
}

type AuthConfig struct {
	ServiceURL string `yaml:"service_url"`
	SecretKey  string `yaml:"secret_key"`
}

type ServicesConfig struct {
	UserServiceURL string        `yaml:"user_service_url"`
	Timeout        time.Duration `yaml:"timeout"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // MinIO
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"`
}

// Enabled reports whether uploads can be served.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

type WebSocketConfig struct {
	WriteWait      time.Duration `yaml:"write_wait"`
	PongWait       time.Duration `yaml:"pong_wait"`
	PingPeriod     time.Duration `yaml:"ping_period"`
	MaxMessageSize int64         `yaml:"max_message_size"`
	SendBuffer     int           `yaml:"send_buffer"`
	AuthTimeout    time.Duration `yaml:"auth_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type JobsConfig struct {
	PresenceSnapshotSpec string `yaml:"presence_snapshot_spec"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8001,
			BasePath:        "/api",
			Env:             "dev",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Redis: RedisConfig{
			Host:        "localhost",
			Port:        6379,
			DB:          0,
			LastSeenTTL: 7 * 24 * time.Hour,
		},
		Services: ServicesConfig{
			Timeout: 5 * time.Second,
		},
		WebSocket: WebSocketConfig{
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			PingPeriod:     54 * time.Second,
			MaxMessageSize: 8192,
			SendBuffer:     256,
			AuthTimeout:    5 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Jobs: JobsConfig{
			PresenceSnapshotSpec: "@every 30s",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := defaults()

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if env := os.Getenv("ENV"); env != "" {
		cfg.Server.Env = env
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		cfg.Redis.Host = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		if p, err := strconv.Atoi(redisPort); err == nil {
			cfg.Redis.Port = p
		}
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if authURL := os.Getenv("AUTH_SERVICE_URL"); authURL != "" {
		cfg.Auth.ServiceURL = authURL
	}
	if secretKey := os.Getenv("JWT_SECRET"); secretKey != "" {
		cfg.Auth.SecretKey = secretKey
	}
	if secretKey := os.Getenv("SECRET_KEY"); secretKey != "" {
		cfg.Auth.SecretKey = secretKey
	}
	if userURL := os.Getenv("USER_SERVICE_URL"); userURL != "" {
		cfg.Services.UserServiceURL = userURL
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.S3.Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		cfg.S3.Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.S3.Endpoint = endpoint
	}
	if accessKey := os.Getenv("S3_ACCESS_KEY"); accessKey != "" {
		cfg.S3.AccessKey = accessKey
	}
	if secretKey := os.Getenv("S3_SECRET_KEY"); secretKey != "" {
		cfg.S3.SecretKey = secretKey
	}
	if publicURL := os.Getenv("S3_PUBLIC_URL"); publicURL != "" {
		cfg.S3.PublicURL = publicURL
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.WebSocket.AllowedOrigins = splitList(origins)
	}
	if buf := os.Getenv("WS_SEND_BUFFER"); buf != "" {
		if n, err := strconv.Atoi(buf); err == nil && n > 0 {
			cfg.WebSocket.SendBuffer = n
		}
	}
	if spec := os.Getenv("PRESENCE_SNAPSHOT_SPEC"); spec != "" {
		cfg.Jobs.PresenceSnapshotSpec = spec
	}

	return cfg, nil
}

// Path returns the config file location, CONFIG_PATH first.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
