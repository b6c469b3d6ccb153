package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Engine   EngineConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// EngineConfig holds the business-tunable knobs of the pricing, generation
// and experiment engines. Zero values never reach the engines: Load starts
// from DefaultEngineConfig and only overrides what the YAML file sets.
// The defaults of max_candidates, min_views_per_range,
// min_impressions_per_arm and confidence_level are also the loosest values
// accepted; a file may only make them stricter.
type EngineConfig struct {
	Weights              ScoreWeights `yaml:"weights"`
	PopularityCap        float64      `yaml:"popularity_cap"`
	StalenessCapDays     float64      `yaml:"staleness_cap_days"`
	MarginCapPct         float64      `yaml:"margin_cap_pct"`
	MaxDiscountPct       int          `yaml:"max_discount_pct"`
	MaxCandidates        int          `yaml:"max_candidates"`
	BestsellerShare      float64      `yaml:"bestseller_share"`
	MinHistoryPoints     int          `yaml:"min_history_points"`
	MinViewsPerRange     int          `yaml:"min_views_per_range"`
	MinImpressionsPerArm int          `yaml:"min_impressions_per_arm"`
	ConfidenceLevel      float64      `yaml:"confidence_level"`
}

type ScoreWeights struct {
	Popularity float64 `yaml:"popularity"`
	Staleness  float64 `yaml:"staleness"`
	Margin     float64 `yaml:"margin"`
}

const (
	defaultWeightPopularity     = 0.4
	defaultWeightStaleness      = 0.3
	defaultWeightMargin         = 0.3
	defaultPopularityCap        = 10.0
	defaultStalenessCapDays     = 180.0
	defaultMarginCapPct         = 50.0
	defaultMaxDiscountPct       = 50
	defaultMaxCandidates        = 10
	defaultBestsellerShare      = 0.2
	defaultMinHistoryPoints     = 3
	defaultMinViewsPerRange     = 10
	defaultMinImpressionsPerArm = 30
	defaultConfidenceLevel      = 0.95
)

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights: ScoreWeights{
			Popularity: defaultWeightPopularity,
			Staleness:  defaultWeightStaleness,
			Margin:     defaultWeightMargin,
		},
		PopularityCap:        defaultPopularityCap,
		StalenessCapDays:     defaultStalenessCapDays,
		MarginCapPct:         defaultMarginCapPct,
		MaxDiscountPct:       defaultMaxDiscountPct,
		MaxCandidates:        defaultMaxCandidates,
		BestsellerShare:      defaultBestsellerShare,
		MinHistoryPoints:     defaultMinHistoryPoints,
		MinViewsPerRange:     defaultMinViewsPerRange,
		MinImpressionsPerArm: defaultMinImpressionsPerArm,
		ConfidenceLevel:      defaultConfidenceLevel,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	engine, err := LoadEngineConfig(os.Getenv("ENGINE_CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Bundle Boost API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bundle_boost"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Engine: engine,
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

// LoadEngineConfig reads the optional YAML tuning file. An empty path yields
// the defaults.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("read engine config: %w", err)
	}

	return ParseEngineConfig(raw)
}

// ParseEngineConfig overlays YAML onto the defaults and validates the result.
func ParseEngineConfig(raw []byte) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("parse engine config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}

	return cfg, nil
}

func (c EngineConfig) Validate() error {
	if c.Weights.Popularity < 0 || c.Weights.Staleness < 0 || c.Weights.Margin < 0 {
		return errors.New("engine config: weights must be non-negative")
	}
	if c.PopularityCap <= 0 || c.StalenessCapDays <= 0 || c.MarginCapPct <= 0 {
		return errors.New("engine config: caps must be positive")
	}
	if c.MaxDiscountPct <= 0 || c.MaxDiscountPct > 100 {
		return errors.New("engine config: max_discount_pct must be in (0, 100]")
	}
	if c.MaxCandidates <= 0 || c.MaxCandidates > defaultMaxCandidates {
		return fmt.Errorf("engine config: max_candidates must be in [1, %d]", defaultMaxCandidates)
	}
	if c.BestsellerShare <= 0 || c.BestsellerShare > 1 {
		return errors.New("engine config: bestseller_share must be in (0, 1]")
	}
	if c.MinHistoryPoints < defaultMinHistoryPoints {
		return fmt.Errorf("engine config: min_history_points must be at least %d", defaultMinHistoryPoints)
	}
	if c.MinViewsPerRange < defaultMinViewsPerRange {
		return fmt.Errorf("engine config: min_views_per_range must be at least %d", defaultMinViewsPerRange)
	}
	if c.MinImpressionsPerArm < defaultMinImpressionsPerArm {
		return fmt.Errorf("engine config: min_impressions_per_arm must be at least %d", defaultMinImpressionsPerArm)
	}
	if c.ConfidenceLevel < defaultConfidenceLevel || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("engine config: confidence_level must be in [%.2f, 1)", defaultConfidenceLevel)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
