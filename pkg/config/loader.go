package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading and management
type Loader struct {
	configPath string
	viper      *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader(configPath string) *Loader {
	v := viper.New()

	// Nested keys map to underscored env names, so provider.api_key
	// is reachable as GOLLMLECTURE_PROVIDER_API_KEY.
	v.SetEnvPrefix("GOLLMLECTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(".gollmlecture")
		v.SetConfigType("yaml")
	}

	return &Loader{
		configPath: configPath,
		viper:      v,
	}
}

// Load reads and returns the configuration
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	// Config file not found is not an error - defaults and env vars apply
	if err := l.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := l.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	resolveAPIKey(&cfg)

	if err := l.validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithOverrides loads configuration with command-line overrides
func (l *Loader) LoadWithOverrides(overrides map[string]interface{}) (*Config, error) {
	cfg, err := l.Load()
	if err != nil {
		return nil, err
	}

	for key, value := range overrides {
		l.viper.Set(key, value)
	}

	if err := l.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config with overrides: %w", err)
	}

	resolveAPIKey(cfg)

	return cfg, nil
}

// resolveAPIKey fills an absent credential from the environment.
// GOLLMLECTURE_API_KEY wins over the provider-native names a .env file
// typically carries (OPENAI_API_KEY, GEMINI_API_KEY).
func resolveAPIKey(cfg *Config) {
	if cfg.Provider.APIKey != "" {
		return
	}
	if key := os.Getenv("GOLLMLECTURE_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
		return
	}
	switch cfg.Provider.Name {
	case "openai":
		cfg.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
	case "gemini":
		cfg.Provider.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// GetConfigFile returns the path to the config file being used
func (l *Loader) GetConfigFile() string {
	return l.viper.ConfigFileUsed()
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	// Provider defaults. The credential and endpoint keys default to
	// empty so environment values reach Unmarshal.
	l.viper.SetDefault("provider.name", "openai")
	l.viper.SetDefault("provider.api_key", "")
	l.viper.SetDefault("provider.base_url", "")
	l.viper.SetDefault("provider.model", "")
	l.viper.SetDefault("provider.timeout", "300s")
	l.viper.SetDefault("provider.retries", 3)
	l.viper.SetDefault("provider.temperature", 0.7)
	l.viper.SetDefault("provider.max_tokens", 8000)

	// Lecture defaults
	l.viper.SetDefault("lecture.duration_minutes", 30)
	l.viper.SetDefault("lecture.words_per_minute", 130)
	l.viper.SetDefault("lecture.include_examples", true)

	// Watch defaults
	l.viper.SetDefault("watch.patterns", []string{"*.txt", "*.md"})
	l.viper.SetDefault("watch.interval", "5s")
	l.viper.SetDefault("watch.stability_wait", "2s")
	l.viper.SetDefault("watch.processing_timeout", "30m")
	l.viper.SetDefault("watch.history_db", ".gollmlecture-watch.db")
	l.viper.SetDefault("watch.process_existing", true)
	l.viper.SetDefault("watch.max_workers", 2)

	// Logging defaults
	l.viper.SetDefault("logging.level", "info")
	l.viper.SetDefault("logging.format", "console")
	l.viper.SetDefault("logging.output", "stderr")
	l.viper.SetDefault("logging.timestamp", true)
}

// validateConfig validates the loaded configuration
func (l *Loader) validateConfig(cfg *Config) error {
	if cfg.Provider.Name == "" {
		return fmt.Errorf("provider name is required")
	}

	if cfg.Provider.Temperature < 0 || cfg.Provider.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	if cfg.Lecture.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}

	if cfg.Lecture.WordsPerMinute <= 0 {
		return fmt.Errorf("words_per_minute must be positive")
	}

	if cfg.Watch.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive")
	}

	return nil
}
