package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Env      string `mapstructure:"JM_ENV"`
	HTTPAddr string `mapstructure:"JM_HTTP_ADDR"`

	Database DBConfig       `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
	Seed     SeedConfig     `mapstructure:",squash"`
	Analysis AnalysisConfig `mapstructure:",squash"`
}

type DBConfig struct {
	Host     string `mapstructure:"DB_HOST"`
	Name     string `mapstructure:"DB_NAME"`
	User     string `mapstructure:"DB_USER"`
	Password string `mapstructure:"DB_PASSWORD"`
	Port     string `mapstructure:"DB_PORT"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"JM_RATE_LIMIT_RPM"`
	CORSAllowedOrigins []string `mapstructure:"JM_CORS_ALLOWED_ORIGINS"`
}

type SeedConfig struct {
	Authors     int   `mapstructure:"JM_SEED_AUTHORS"`
	Users       int   `mapstructure:"JM_SEED_USERS"`
	Posts       int   `mapstructure:"JM_SEED_POSTS"`
	Engagements int   `mapstructure:"JM_SEED_ENGAGEMENTS"`
	BatchSize   int   `mapstructure:"JM_SEED_BATCH_SIZE"`
	RandSeed    int64 `mapstructure:"JM_SEED_RAND_SEED"`
}

type AnalysisConfig struct {
	OutputDir  string `mapstructure:"JM_ANALYSIS_OUTPUT_DIR"`
	WindowDays int    `mapstructure:"JM_ANALYSIS_WINDOW_DAYS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // env vars already set take precedence
		}
	}
}

func Load() (*Config, error) {
	loadDotEnvFiles()

	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("JM_ENV", "dev")
	viper.SetDefault("JM_HTTP_ADDR", ":8000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_NAME", "jumper_media")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("JM_RATE_LIMIT_RPM", 120)
	viper.SetDefault("JM_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	viper.SetDefault("JM_SEED_AUTHORS", 50)
	viper.SetDefault("JM_SEED_USERS", 5000)
	viper.SetDefault("JM_SEED_POSTS", 10000)
	viper.SetDefault("JM_SEED_ENGAGEMENTS", 100000)
	viper.SetDefault("JM_SEED_BATCH_SIZE", 1000)
	viper.SetDefault("JM_SEED_RAND_SEED", 0)
	viper.SetDefault("JM_ANALYSIS_OUTPUT_DIR", "visualizations")
	viper.SetDefault("JM_ANALYSIS_WINDOW_DAYS", 365)

	// Handle array parsing for comma-separated values
	if origins := viper.GetString("JM_CORS_ALLOWED_ORIGINS"); origins != "" {
		viper.Set("JM_CORS_ALLOWED_ORIGINS", strings.Split(origins, ","))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if _, err := strconv.Atoi(c.Database.Port); err != nil {
		return fmt.Errorf("invalid DB_PORT %q: %w", c.Database.Port, err)
	}
	if c.Security.RateLimitRPM <= 0 {
		return fmt.Errorf("JM_RATE_LIMIT_RPM must be positive")
	}
	if c.Seed.BatchSize <= 0 {
		return fmt.Errorf("JM_SEED_BATCH_SIZE must be positive")
	}
	if c.Analysis.WindowDays <= 0 {
		return fmt.Errorf("JM_ANALYSIS_WINDOW_DAYS must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// DSN assembles a postgres connection string from the individual
// DB_* variables.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}
