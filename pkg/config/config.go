package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Solver   SolverConfig
	Rosters  RosterConfig
	Imports  ImportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig sets defaults for the assignment engine. Request payloads may
// override the time budget and gap within the allowed bounds.
type SolverConfig struct {
	DefaultPolicy     string
	MinPerRoom        int
	AllowSingle       bool
	DefaultTimeBudget time.Duration
	MaxTimeBudget     time.Duration
	DefaultGapLimit   float64
	Workers           int
	PreferenceWeight  float64
}

// RosterConfig tunes roster query caching.
type RosterConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ImportConfig bounds spreadsheet ingestion.
type ImportConfig struct {
	MaxRows int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		DefaultPolicy:     v.GetString("SOLVER_DEFAULT_POLICY"),
		MinPerRoom:        v.GetInt("SOLVER_MIN_PER_ROOM"),
		AllowSingle:       v.GetBool("SOLVER_ALLOW_SINGLE"),
		DefaultTimeBudget: parseDuration(v.GetString("SOLVER_DEFAULT_TIME_BUDGET"), 5*time.Minute),
		MaxTimeBudget:     parseDuration(v.GetString("SOLVER_MAX_TIME_BUDGET"), 4*time.Hour),
		DefaultGapLimit:   v.GetFloat64("SOLVER_DEFAULT_GAP_LIMIT"),
		Workers:           v.GetInt("SOLVER_WORKERS"),
		PreferenceWeight:  v.GetFloat64("SOLVER_PREFERENCE_WEIGHT"),
	}

	cfg.Rosters = RosterConfig{
		CacheEnabled: v.GetBool("ROSTER_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("ROSTER_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Imports = ImportConfig{
		MaxRows: v.GetInt("IMPORT_MAX_ROWS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "surveillance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_DEFAULT_POLICY", "weighted")
	v.SetDefault("SOLVER_MIN_PER_ROOM", 2)
	v.SetDefault("SOLVER_ALLOW_SINGLE", false)
	v.SetDefault("SOLVER_DEFAULT_TIME_BUDGET", "5m")
	v.SetDefault("SOLVER_MAX_TIME_BUDGET", "4h")
	v.SetDefault("SOLVER_DEFAULT_GAP_LIMIT", 0.05)
	v.SetDefault("SOLVER_WORKERS", 4)
	v.SetDefault("SOLVER_PREFERENCE_WEIGHT", 1.0)

	v.SetDefault("ROSTER_CACHE_ENABLED", false)
	v.SetDefault("ROSTER_CACHE_TTL", "5m")

	v.SetDefault("IMPORT_MAX_ROWS", 20000)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
