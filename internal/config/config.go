package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	PublicURL    string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	BucketVideos     string
	BucketThumbnails string
	UseSSL           bool
	Region           string
}

type SecurityConfig struct {
	JWTSecret       string
	JWTTTL          time.Duration
	ResetTokenTTL   time.Duration
	MinPasswordLen  int
	DefaultPassword string
}

type DebugConfig struct {
	ExposeResetTokens bool
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Debug            DebugConfig
	AllowCORSOrigins []string
}

// DemoMode reports whether the process runs against the in-memory store
// instead of Postgres. Leaving postgres.dsn empty is the switch; there is
// no separate flag to keep the two from disagreeing.
func (c *AppConfig) DemoMode() bool {
	return c.Postgres.DSN == ""
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("VLOGAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Environment == "production" {
		if cfg.Debug.ExposeResetTokens {
			return nil, fmt.Errorf("debug.exposeresettokens must not be enabled in production")
		}
		if cfg.Security.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("security.jwtsecret must be changed in production")
		}
	}

	return &cfg, nil
}

const defaultJWTSecret = "dev-secret-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 3001)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.publicurl", "http://localhost:3001")

	// Empty defaults register the keys with viper so env-only values
	// survive Unmarshal.
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucketvideos", "vlogapp-videos")
	v.SetDefault("storage.bucketthumbnails", "vlogapp-thumbnails")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.jwtsecret", defaultJWTSecret)
	v.SetDefault("security.jwtttl", "168h") // 7 days
	v.SetDefault("security.resettokenttl", "15m")
	v.SetDefault("security.minpasswordlen", 6)
	v.SetDefault("security.defaultpassword", "changeme123")

	v.SetDefault("debug.exposeresettokens", false)

	v.SetDefault("allowcorsorigins", "*")
}
