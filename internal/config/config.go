package config

import (
	"os"
	"strconv"
	"strings"

	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Recommendation RecommendationConfig
	Visual         VisualConfig
	Server         ServerConfig
	UI             UIConfig
	Data           DataConfig
	LogLevel       string
}

// RecommendationConfig holds the pipeline parameters
type RecommendationConfig struct {
	MaxGroupNumber   int
	MaxDimensions    int
	MaxMeasures      int
	BinCount         int
	GroupCardinality int
	MergeThreshold   float64
	HighCardinality  int
	Workers          int
}

// VisualConfig holds rendering defaults that the user may override
type VisualConfig struct {
	Aggregator string
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// UIConfig holds explanation UI settings
type UIConfig struct {
	Port string
}

// DataConfig locates the dataset handed to the session at startup
type DataConfig struct {
	File  string
	Sheet string
	Types map[string]dataset.FieldType // declared column types, skipping inference
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Recommendation: loadRecommendationConfig(),
		Visual:         loadVisualConfig(),
		Server:         loadServerConfig(),
		UI:             loadUIConfig(),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	data, err := loadDataConfig()
	if err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	config.Data = data

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Recommendation: RecommendationConfig{
			MaxGroupNumber:   5,
			MaxDimensions:    2,
			MaxMeasures:      3,
			BinCount:         8,
			GroupCardinality: 12,
			MergeThreshold:   0.85,
			HighCardinality:  7,
			Workers:          4,
		},
		Visual:   VisualConfig{Aggregator: "sum"},
		Server:   ServerConfig{Port: "8080", GinMode: "release"},
		UI:       UIConfig{Port: "8090"},
		LogLevel: "INFO",
	}
}

func loadRecommendationConfig() RecommendationConfig {
	d := Default().Recommendation
	return RecommendationConfig{
		MaxGroupNumber:   getEnvIntOrDefault("MAX_GROUP_NUMBER", d.MaxGroupNumber),
		MaxDimensions:    getEnvIntOrDefault("MAX_DIMENSIONS", d.MaxDimensions),
		MaxMeasures:      getEnvIntOrDefault("MAX_MEASURES", d.MaxMeasures),
		BinCount:         getEnvIntOrDefault("BIN_COUNT", d.BinCount),
		GroupCardinality: getEnvIntOrDefault("GROUP_CARDINALITY", d.GroupCardinality),
		MergeThreshold:   getEnvFloatOrDefault("MERGE_THRESHOLD", d.MergeThreshold),
		HighCardinality:  getEnvIntOrDefault("HIGH_CARDINALITY", d.HighCardinality),
		Workers:          getEnvIntOrDefault("WORKERS", d.Workers),
	}
}

func loadVisualConfig() VisualConfig {
	return VisualConfig{
		Aggregator: strings.ToLower(getEnvOrDefault("AGGREGATOR", "sum")),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadUIConfig() UIConfig {
	return UIConfig{
		Port: getEnvOrDefault("UI_PORT", "8090"),
	}
}

func loadDataConfig() (DataConfig, error) {
	types, err := ParseTypes(getEnvOrDefault("DATA_TYPES", ""))
	if err != nil {
		return DataConfig{}, err
	}
	return DataConfig{
		File:  getEnvOrDefault("DATA_FILE", ""),
		Sheet: getEnvOrDefault("DATA_SHEET", ""),
		Types: types,
	}, nil
}

// ParseTypes reads a list of column=type pairs such as "year=ordinal,store=nominal"
func ParseTypes(s string) (map[string]dataset.FieldType, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	types := make(map[string]dataset.FieldType)
	for _, pair := range strings.Split(s, ",") {
		name, kind, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.ConfigInvalid("DATA_TYPES entry " + strconv.Quote(pair) + " is not column=type")
		}
		typ, err := dataset.ParseFieldType(kind)
		if err != nil {
			return nil, errors.ConfigInvalid("DATA_TYPES: " + err.Error())
		}
		types[name] = typ
	}
	return types, nil
}

func validateConfig(config *Config) error {
	r := config.Recommendation
	if r.MaxGroupNumber < 1 {
		return errors.ConfigInvalid("MAX_GROUP_NUMBER must be at least 1")
	}
	if r.MaxDimensions < 1 {
		return errors.ConfigInvalid("MAX_DIMENSIONS must be at least 1")
	}
	if r.MaxMeasures < 1 {
		return errors.ConfigInvalid("MAX_MEASURES must be at least 1")
	}
	if r.BinCount < 2 {
		return errors.ConfigInvalid("BIN_COUNT must be at least 2")
	}
	if r.GroupCardinality < 2 {
		return errors.ConfigInvalid("GROUP_CARDINALITY must be at least 2")
	}
	if r.MergeThreshold <= 0 || r.MergeThreshold > 1 {
		return errors.ConfigInvalid("MERGE_THRESHOLD must be in (0, 1]")
	}
	if r.Workers < 1 {
		return errors.ConfigInvalid("WORKERS must be at least 1")
	}
	if !insight.ValidAggregator(config.Visual.Aggregator) {
		return errors.ConfigInvalid("AGGREGATOR must be one of " + strings.Join(insight.Aggregators, ", "))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
