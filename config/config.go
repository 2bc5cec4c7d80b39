// Package config reads the config file and environment and turns them
// into an immutable Config that gets passed to the rest of the app
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath     = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers = []string{"sqlite", "postgres"}
)

type Config struct {
	App      App
	Host     Host
	Security Security
	DB       DB
	Storage  Storage
	Upload   Upload
	AWS      AWS
}

type App struct {
	LogLevel string
}

type Host struct {
	Port         int
	Domain       string
	SSL          bool
	AllowedHosts []string
	CORSOrigins  []string
}

type Security struct {
	SessionSecret string
	SessionTTL    time.Duration
	RateLimit     int
}

type DB struct {
	Driver string
	DSN    string
}

type Storage struct {
	Type      string
	MediaRoot string
}

type Upload struct {
	// MaxSize is in bytes after Load converts the configured MiB value
	MaxSize int64
}

type AWS struct {
	AccessKey       string
	SecretAccessKey string
	Region          string
	Bucket          string
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Load reads config.toml and the environment, validates everything and
// returns the resulting Config. The returned value is never mutated
// afterwards, handlers only ever read from it.
func Load() (*Config, error) {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.domain", "HOST_DOMAIN")
	v.BindEnv("host.ssl", "HOST_SSL")
	v.BindEnv("host.allowed_hosts", "HOST_ALLOWED_HOSTS")
	v.BindEnv("host.cors_origins", "HOST_CORS_ORIGINS")

	v.BindEnv("security.session_secret", "SECURITY_SESSION_SECRET")
	v.BindEnv("security.session_ttl", "SECURITY_SESSION_TTL")
	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")

	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN")

	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.media_root", "STORAGE_MEDIA_ROOT")

	v.BindEnv("upload.max_size", "UPLOAD_MAX_SIZE")

	v.BindEnv("aws.access_key", "AWS_ACCESS_KEY")
	v.BindEnv("aws.secret_access_key", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("aws.region", "AWS_REGION")
	v.BindEnv("aws.bucket", "AWS_BUCKET")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl", false)
	v.SetDefault("host.allowed_hosts", []string{})
	v.SetDefault("host.cors_origins", []string{"*"})

	v.SetDefault("security.session_ttl", "336h")
	v.SetDefault("security.rate_limit", 0)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("storage.type", "disk")
	v.SetDefault("storage.media_root", "media")

	v.SetDefault("upload.max_size", 100)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return nil, errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return nil, errors.New("invalid port provided")
	}

	if v.GetString("security.session_secret") == "" {
		return nil, errors.New("security.session_secret is not set. Here's a freshly generated one you can paste into config.toml:\n\n" + genSecret())
	}

	ttl := v.GetDuration("security.session_ttl")
	if ttl <= 0 {
		return nil, errors.New("security.session_ttl must be a positive duration")
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return nil, errors.New("invalid db driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return nil, errors.New("db.dsn can't be empty")
	}

	if v.GetInt64("upload.max_size") <= 0 {
		return nil, errors.New("upload.max_size must be bigger than 0")
	}

	switch v.GetString("storage.type") {
	case "disk":
		if v.GetString("storage.media_root") == "" {
			return nil, errors.New("storage.media_root can't be empty")
		}
	case "s3":
		if v.GetString("aws.access_key") == "" {
			return nil, errors.New("aws access key can't be empty")
		}
		if v.GetString("aws.secret_access_key") == "" {
			return nil, errors.New("aws secret access key can't be empty")
		}
		if v.GetString("aws.region") == "" {
			return nil, errors.New("aws region can't be empty")
		}
		if v.GetString("aws.bucket") == "" {
			return nil, errors.New("aws bucket can't be empty")
		}
	default:
		return nil, errors.New("invalid storage type provided")
	}

	return &Config{
		App: App{
			LogLevel: v.GetString("app.log_level"),
		},
		Host: Host{
			Port:         v.GetInt("host.port"),
			Domain:       v.GetString("host.domain"),
			SSL:          v.GetBool("host.ssl"),
			AllowedHosts: v.GetStringSlice("host.allowed_hosts"),
			CORSOrigins:  v.GetStringSlice("host.cors_origins"),
		},
		Security: Security{
			SessionSecret: v.GetString("security.session_secret"),
			SessionTTL:    ttl,
			RateLimit:     v.GetInt("security.rate_limit"),
		},
		DB: DB{
			Driver: v.GetString("db.driver"),
			DSN:    v.GetString("db.dsn"),
		},
		Storage: Storage{
			Type:      v.GetString("storage.type"),
			MediaRoot: v.GetString("storage.media_root"),
		},
		Upload: Upload{
			MaxSize: v.GetInt64("upload.max_size") << 20,
		},
		AWS: AWS{
			AccessKey:       v.GetString("aws.access_key"),
			SecretAccessKey: v.GetString("aws.secret_access_key"),
			Region:          v.GetString("aws.region"),
			Bucket:          v.GetString("aws.bucket"),
		},
	}, nil
}
