package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	PolicyPreferEmployer  = "prefer_employer"
	PolicyRequireExplicit = "require_explicit"
)

type Config struct {
	GeneralVersion string `mapstructure:"GENERAL_VERSION"`
	Environment    string `mapstructure:"ENVIRONMENT"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	ServerPort     int    `mapstructure:"SERVER_PORT"`

	DatabaseDriver       string `mapstructure:"DB_DRIVER"`
	DatabaseDbPath       string `mapstructure:"DB_PATH"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	CacheTTLMinutes      int    `mapstructure:"CACHE_TTL_MINUTES"`

	// TimeZone is the exchange's local zone; dates of record are computed in it.
	TimeZone string `mapstructure:"TIME_ZONE"`
	// DateOfRecord pins "today" (YYYY-MM-DD). Empty means the wall clock.
	DateOfRecord               string `mapstructure:"DATE_OF_RECORD"`
	IndividualEnrollmentDueDay int    `mapstructure:"INDIVIDUAL_ENROLLMENT_DUE_DAY"`
	AmbiguousMarketPolicy      string `mapstructure:"AMBIGUOUS_MARKET_POLICY"`
}

var defaults = map[string]any{
	"GENERAL_VERSION":               "dev",
	"ENVIRONMENT":                   "development",
	"LOG_LEVEL":                     "info",
	"SERVER_PORT":                   8280,
	"DB_DRIVER":                     DriverSQLite,
	"DB_PATH":                       "data/portal.db",
	"DB_HOST":                       "localhost",
	"DB_PORT":                       5432,
	"DB_USER":                       "postgres",
	"DB_PASSWORD":                   "",
	"DB_NAME":                       "portal",
	"DB_CACHE_ADDRESS":              "localhost",
	"DB_CACHE_PORT":                 6379,
	"CACHE_TTL_MINUTES":             60,
	"TIME_ZONE":                     "America/New_York",
	"DATE_OF_RECORD":                "",
	"INDIVIDUAL_ENROLLMENT_DUE_DAY": 15,
	"AMBIGUOUS_MARKET_POLICY":       PolicyPreferEmployer,
}

func InitConfig() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}

	switch c.AmbiguousMarketPolicy {
	case PolicyPreferEmployer, PolicyRequireExplicit:
	default:
		return fmt.Errorf("unsupported ambiguous market policy %q", c.AmbiguousMarketPolicy)
	}

	if c.IndividualEnrollmentDueDay < 1 || c.IndividualEnrollmentDueDay > 28 {
		return fmt.Errorf("individual enrollment due day must be between 1 and 28, got %d", c.IndividualEnrollmentDueDay)
	}

	return nil
}

// CacheTTL is how long cached employers and the sponsorship live. Zero keeps each
// repository's own default.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
