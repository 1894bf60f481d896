package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Scheduling SchedulingConfig
	Directory  DirectoryConfig
}

type AppConfig struct {
	Port       string
	Env        string
	CORSOrigin string
}

// IsDevelopment reports whether verbose logging should be enabled.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

type DBConfig struct {
	Driver      string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

type SchedulingConfig struct {
	// ReleaseOnReject makes a rejected appointment's slot bookable again.
	ReleaseOnReject bool
	SlotLockTTL     time.Duration
}

type DirectoryConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Environment-only deployments have no .env file.
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("DIRECTORY_CACHE_SIZE", 1024)

	driver := v.GetString("DB_DRIVER")
	if driver != DriverMemory {
		driver = DriverPostgres
	}

	cacheSize := v.GetInt("DIRECTORY_CACHE_SIZE")
	if cacheSize <= 0 {
		cacheSize = 1024
	}

	return &Config{
		App: AppConfig{
			Port:       v.GetString("APP_PORT"),
			Env:        v.GetString("APP_ENV"),
			CORSOrigin: v.GetString("APP_CORS_ORIGIN"),
		},
		DB: DBConfig{
			Driver:      driver,
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: parseDuration(v.GetString("JWT_ACCESS_EXPIRY"), 24*time.Hour),
		},
		Scheduling: SchedulingConfig{
			ReleaseOnReject: v.GetBool("SCHEDULING_RELEASE_ON_REJECT"),
			SlotLockTTL:     parseDuration(v.GetString("SCHEDULING_SLOT_LOCK_TTL"), 5*time.Second),
		},
		Directory: DirectoryConfig{
			CacheSize: cacheSize,
			CacheTTL:  parseDuration(v.GetString("DIRECTORY_CACHE_TTL"), 5*time.Minute),
		},
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
