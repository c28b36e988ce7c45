package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type DB struct {
	Driver string // mysql or sqlite
	Host   string
	Port   int
	User   string
	Pass   string
	Name   string
	Path   string // sqlite file
}

type HTTP struct {
	Host           string
	Port           int
	AllowedOrigins []string
	ShutdownGrace  time.Duration
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Storage struct {
	URI            string
	MaxUploadBytes int64
}

type Lockout struct {
	MaxAttempts int
	Cooldown    time.Duration
}

type Config struct {
	HTTP    HTTP
	DB      DB
	Redis   Redis
	Storage Storage
	Lockout Lockout
	JWT     struct {
		Secret string
		Issuer string
		ExpMin int
	}
	Log struct {
		Level string
	}
	Admin struct {
		Email    string
		Password string
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("FILEPOWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("backend.http.host", "127.0.0.1")
	v.SetDefault("backend.http.port", 9400)
	v.SetDefault("backend.http.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("backend.http.shutdown_grace", "10s")
	v.SetDefault("backend.db.driver", "mysql")
	v.SetDefault("backend.db.host", "127.0.0.1")
	v.SetDefault("backend.db.port", 3306)
	v.SetDefault("backend.db.user", "root")
	v.SetDefault("backend.db.pass", "")
	v.SetDefault("backend.db.name", "filepower")
	v.SetDefault("backend.db.path", "filepower.db")
	v.SetDefault("backend.redis.addr", "")
	v.SetDefault("backend.redis.db", 0)
	v.SetDefault("backend.storage.uri", "file:///var/lib/filepower/objects/")
	v.SetDefault("backend.storage.max_upload_bytes", 50<<20) // 50MB
	v.SetDefault("backend.lockout.max_attempts", 5)
	v.SetDefault("backend.lockout.cooldown", "5m")
	v.SetDefault("backend.jwt.secret", "dev-secret")
	v.SetDefault("backend.jwt.issuer", "filepower")
	v.SetDefault("backend.jwt.exp_min", 60)
	v.SetDefault("backend.log.level", "info")
	v.SetDefault("backend.admin.email", "admin@filepower.local")
	v.SetDefault("backend.admin.password", "admin123")
	return v
}

// Load reads the YAML file at path. An empty path uses defaults and
// FILEPOWER_* environment variables only.
func Load(path string) (*Config, error) {
	v := newViper(path)
	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v), nil
}

// Watch calls onChange with the reloaded config every time the file at path
// is written.
func Watch(path string, onChange func(*Config)) error {
	if path == "" {
		return nil
	}
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	v.OnConfigChange(func(fsnotify.Event) {
		onChange(decode(v))
	})
	v.WatchConfig()
	return nil
}

func decode(v *viper.Viper) *Config {
	cfg := &Config{
		HTTP: HTTP{
			Host:           v.GetString("backend.http.host"),
			Port:           v.GetInt("backend.http.port"),
			AllowedOrigins: v.GetStringSlice("backend.http.allowed_origins"),
			ShutdownGrace:  v.GetDuration("backend.http.shutdown_grace"),
		},
		DB: DB{
			Driver: strings.ToLower(v.GetString("backend.db.driver")),
			Host:   v.GetString("backend.db.host"),
			Port:   v.GetInt("backend.db.port"),
			User:   v.GetString("backend.db.user"),
			Pass:   v.GetString("backend.db.pass"),
			Name:   v.GetString("backend.db.name"),
			Path:   v.GetString("backend.db.path"),
		},
		Redis: Redis{
			Addr:     v.GetString("backend.redis.addr"),
			Password: v.GetString("backend.redis.password"),
			DB:       v.GetInt("backend.redis.db"),
		},
		Storage: Storage{
			URI:            v.GetString("backend.storage.uri"),
			MaxUploadBytes: v.GetInt64("backend.storage.max_upload_bytes"),
		},
		Lockout: Lockout{
			MaxAttempts: v.GetInt("backend.lockout.max_attempts"),
			Cooldown:    v.GetDuration("backend.lockout.cooldown"),
		},
	}
	cfg.JWT.Secret = v.GetString("backend.jwt.secret")
	cfg.JWT.Issuer = v.GetString("backend.jwt.issuer")
	cfg.JWT.ExpMin = v.GetInt("backend.jwt.exp_min")
	if cfg.JWT.ExpMin <= 0 {
		cfg.JWT.ExpMin = 60
	}
	cfg.Log.Level = v.GetString("backend.log.level")
	cfg.Admin.Email = v.GetString("backend.admin.email")
	cfg.Admin.Password = v.GetString("backend.admin.password")
	return cfg
}
