package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Providers ProvidersConfig `mapstructure:"providers"`
	MLScorer  MLScorerConfig  `mapstructure:"mlscorer"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// ProvidersConfig holds the external signal provider settings
type ProvidersConfig struct {
	SafeBrowsing SafeBrowsingConfig `mapstructure:"safebrowsing"`
	Numverify    NumverifyConfig    `mapstructure:"numverify"`
	OpenAI       OpenAIConfig       `mapstructure:"openai"`
	Timeout      time.Duration      `mapstructure:"timeout"`
}

type SafeBrowsingConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type NumverifyConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// MLScorerConfig holds settings for the external probability-scoring service
type MLScorerConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	HighConfidence   float64       `mapstructure:"high_confidence"`
	MediumConfidence float64       `mapstructure:"medium_confidence"`
}

// ScoringConfig holds the aggregation weight tables. The defaults are a
// hand-tuned heuristic, not derived from model calibration; operators may
// adjust them, tests pin the defaults.
type ScoringConfig struct {
	MLWeight float64     `mapstructure:"ml_weight"`
	Hybrid   WeightTable `mapstructure:"hybrid"`
	Fallback WeightTable `mapstructure:"fallback"`
}

// WeightTable holds the flat and factor contributions for one weighting mode.
// Hybrid applies when the ML probability is available, Fallback when it is not.
type WeightTable struct {
	URLUnsafe    float64 `mapstructure:"url_unsafe"`
	PhoneVoIP    float64 `mapstructure:"phone_voip"`
	PhoneInvalid float64 `mapstructure:"phone_invalid"`
	AIConfidence float64 `mapstructure:"ai_confidence"`
}

type CacheConfig struct {
	AssessmentTTL time.Duration `mapstructure:"assessment_ttl"`
}

// DefaultScoring returns the standard weight tables
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		MLWeight: 0.70,
		Hybrid: WeightTable{
			URLUnsafe:    15,
			PhoneVoIP:    10,
			PhoneInvalid: 7,
			AIConfidence: 0.30,
		},
		Fallback: WeightTable{
			URLUnsafe:    40,
			PhoneVoIP:    30,
			PhoneInvalid: 20,
			AIConfidence: 0.99,
		},
	}
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/lumosguard")
	}

	// Environment variables
	v.SetEnvPrefix("LUMOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.enabled", "LUMOS_REDIS_ENABLED")
	v.BindEnv("redis.host", "LUMOS_REDIS_HOST")
	v.BindEnv("redis.port", "LUMOS_REDIS_PORT")
	v.BindEnv("redis.password", "LUMOS_REDIS_PASSWORD")
	v.BindEnv("database.enabled", "LUMOS_DATABASE_ENABLED")
	v.BindEnv("database.host", "LUMOS_DATABASE_HOST")
	v.BindEnv("database.port", "LUMOS_DATABASE_PORT")
	v.BindEnv("database.user", "LUMOS_DATABASE_USER")
	v.BindEnv("database.password", "LUMOS_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "LUMOS_DATABASE_DBNAME")
	v.BindEnv("providers.safebrowsing.api_key", "LUMOS_PROVIDERS_SAFEBROWSING_API_KEY")
	v.BindEnv("providers.numverify.api_key", "LUMOS_PROVIDERS_NUMVERIFY_API_KEY")
	v.BindEnv("providers.openai.api_key", "LUMOS_PROVIDERS_OPENAI_API_KEY")
	v.BindEnv("mlscorer.base_url", "LUMOS_MLSCORER_BASE_URL")
	v.BindEnv("app.environment", "LUMOS_APP_ENVIRONMENT")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

// applyDefaults fills zero values that have a required sensible default
func (c *Config) applyDefaults() {
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 10 * time.Second
	}
	if c.MLScorer.Timeout == 0 {
		c.MLScorer.Timeout = 5 * time.Second
	}
	if c.MLScorer.HighConfidence == 0 {
		c.MLScorer.HighConfidence = 0.80
	}
	if c.MLScorer.MediumConfidence == 0 {
		c.MLScorer.MediumConfidence = 0.60
	}
	if c.Cache.AssessmentTTL == 0 {
		c.Cache.AssessmentTTL = 10 * time.Minute
	}
	def := DefaultScoring()
	if c.Scoring.MLWeight == 0 {
		c.Scoring.MLWeight = def.MLWeight
	}
	if c.Scoring.Hybrid == (WeightTable{}) {
		c.Scoring.Hybrid = def.Hybrid
	}
	if c.Scoring.Fallback == (WeightTable{}) {
		c.Scoring.Fallback = def.Fallback
	}
}
