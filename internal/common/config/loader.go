// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml over it
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are conventionally provided through
// well-known environment variables rather than the yaml files.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Renderer.APIKey == "" {
		if val := os.Getenv("GEMINI_API_KEY"); val != "" {
			cfg.Renderer.APIKey = val
		} else if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.Renderer.APIKey = val
		}
	}
	if cfg.Speech.APIKey == "" {
		if val := os.Getenv("SPEECH_API_KEY"); val != "" {
			cfg.Speech.APIKey = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "scheme-assistant"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = CatalogSourceFile
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "data/schemes.json"
	}
	if cfg.Catalog.Table == "" {
		cfg.Catalog.Table = "schemes"
	}
	if cfg.Catalog.Index == "" {
		cfg.Catalog.Index = "schemes"
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 600
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "scheme:match:"
	}

	if cfg.Renderer.Provider == "" {
		cfg.Renderer.Provider = RendererGemini
	}
	if cfg.Renderer.Model == "" {
		cfg.Renderer.Model = "gemini-2.0-flash"
	}
	if cfg.Renderer.MaxRetries < 0 {
		cfg.Renderer.MaxRetries = 0
	}
	if cfg.Renderer.Timeout == 0 {
		cfg.Renderer.Timeout = 15000
	}
	if cfg.Renderer.Temperature == 0 {
		cfg.Renderer.Temperature = 0.6
	}
	if cfg.Renderer.TopP == 0 {
		cfg.Renderer.TopP = 0.9
	}
	if cfg.Renderer.MaxOutputTokens == 0 {
		cfg.Renderer.MaxOutputTokens = 150
	}

	if cfg.Speech.LanguageCode == "" {
		cfg.Speech.LanguageCode = "te-IN"
	}
	if cfg.Speech.SampleRate == 0 {
		cfg.Speech.SampleRate = 16000
	}
	if cfg.Speech.Timeout == 0 {
		cfg.Speech.Timeout = 20000
	}

	if cfg.Dialogue.Language == "" {
		cfg.Dialogue.Language = "te"
	}
	if cfg.Dialogue.NoRecordOccupations == nil {
		cfg.Dialogue.NoRecordOccupations = []string{"student"}
	}
	if cfg.Dialogue.RenderTimeout == 0 {
		cfg.Dialogue.RenderTimeout = 15000
	}
	if cfg.Dialogue.MaxUtteranceLength == 0 {
		cfg.Dialogue.MaxUtteranceLength = 2000
	}

	if cfg.Session.IdleTimeout == 0 {
		cfg.Session.IdleTimeout = 3600
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = 300
	}
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = 10000
	}

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 30000
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60000
	}
	if cfg.HTTP.MaxAudioSize == 0 {
		cfg.HTTP.MaxAudioSize = 10 << 20
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Catalog.Source {
	case CatalogSourceFile:
		if cfg.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for file source")
		}
	case CatalogSourcePostgres:
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.host and database are required for postgres catalog source")
		}
	case CatalogSourceElasticsearch:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for elasticsearch catalog source")
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", cfg.Catalog.Source)
	}

	switch cfg.Renderer.Provider {
	case RendererGemini:
	case RendererGenAIHTTP:
		if cfg.Renderer.BaseURL == "" {
			return fmt.Errorf("renderer.base_url is required for genai_http provider")
		}
	default:
		return fmt.Errorf("unknown renderer.provider %q", cfg.Renderer.Provider)
	}

	if cfg.Dialogue.Language != "te" && cfg.Dialogue.Language != "en" {
		return fmt.Errorf("dialogue.language must be te or en, got %q", cfg.Dialogue.Language)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when cache is enabled")
	}

	if cfg.Speech.Enabled && cfg.Speech.BaseURL == "" {
		return fmt.Errorf("speech.base_url is required when speech is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetSeconds converts seconds from config to time.Duration
func GetSeconds(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}
