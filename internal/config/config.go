package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	S3         S3Config
	Log        LogConfig
	Extractor  ExtractorConfig
	Classifier ClassifierConfig
	Pipeline   PipelineConfig
	CORS       CORSConfig
}

// PipelineConfig holds classify/extract/project pipeline settings.
type PipelineConfig struct {
	ExtractTimeoutSecs int   `mapstructure:"extract_timeout_secs"`
	BatchConcurrency   int   `mapstructure:"batch_concurrency"`
	MaxFileSizeMB      int64 `mapstructure:"max_file_size_mb"`
}

// ExtractTimeout returns the per-call extractor timeout.
func (p PipelineConfig) ExtractTimeout() time.Duration {
	return time.Duration(p.ExtractTimeoutSecs) * time.Second
}

// ClassifierConfig selects where classification signals come from.
type ClassifierConfig struct {
	// SignalSource is "keyword" (offline text scan), "extractor" (LLM signal bundle) or
	// "auto" (keyword scan for text, extractor for PDFs).
	SignalSource string `mapstructure:"signal_source"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExtractorProviderConfig holds settings for a single structured extraction provider.
type ExtractorProviderConfig struct {
	Provider          string `mapstructure:"provider"`
	APIKey            string `mapstructure:"api_key"`
	DefaultModel      string `mapstructure:"default_model"`
	MaxRetries        int    `mapstructure:"max_retries"`
	TimeoutSecs       int    `mapstructure:"timeout_secs"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	Project           string `mapstructure:"project"` // vertex only
	Region            string `mapstructure:"region"`  // vertex only
}

// ExtractorConfig holds structured extractor settings with multi-provider support.
type ExtractorConfig struct {
	// Mode is "single", "fallback" (primary, then secondary, then tertiary) or "merge" (primary and secondary in parallel).
	Mode string `mapstructure:"mode"`

	// Flat fields used when no primary provider is configured.
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   ExtractorProviderConfig `mapstructure:"primary"`
	Secondary ExtractorProviderConfig `mapstructure:"secondary"`
	Tertiary  ExtractorProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to the flat fields.
func (p *ExtractorConfig) PrimaryConfig() *ExtractorProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ExtractorProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		MaxRetries:   p.MaxRetries,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ExtractorConfig) SecondaryConfig() *ExtractorProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *ExtractorConfig) TertiaryConfig() *ExtractorProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// S3Config holds AWS S3 settings for batch sources and export uploads.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var providerKeys = []string{"provider", "api_key", "default_model", "max_retries", "timeout_secs", "requests_per_minute", "project", "region"}

// Load reads configuration from environment variables with the GASDOC_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GASDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// S3 defaults
	v.SetDefault("s3.region", "ap-southeast-1")
	v.SetDefault("s3.bucket", "gasdoc-documents")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Pipeline defaults
	v.SetDefault("pipeline.extract_timeout_secs", 120)
	v.SetDefault("pipeline.batch_concurrency", 4)
	v.SetDefault("pipeline.max_file_size_mb", 25)

	v.SetDefault("classifier.signal_source", "auto")
	v.SetDefault("classifier.timeout_secs", 60)

	// Extractor defaults (flat)
	v.SetDefault("extractor.mode", "single")
	v.SetDefault("extractor.provider", "gemini")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "")
	v.SetDefault("extractor.max_retries", 2)
	v.SetDefault("extractor.timeout_secs", 120)

	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("extractor."+slot+".provider", "")
		v.SetDefault("extractor."+slot+".api_key", "")
		v.SetDefault("extractor."+slot+".default_model", "")
		v.SetDefault("extractor."+slot+".max_retries", 2)
		v.SetDefault("extractor."+slot+".timeout_secs", 120)
		v.SetDefault("extractor."+slot+".requests_per_minute", 0)
		v.SetDefault("extractor."+slot+".project", "")
		v.SetDefault("extractor."+slot+".region", "asia-southeast1")
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "GASDOC_SERVER_PORT",
		"server.read_timeout":           "GASDOC_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "GASDOC_SERVER_WRITE_TIMEOUT",
		"server.environment":            "GASDOC_SERVER_ENVIRONMENT",
		"s3.region":                     "GASDOC_S3_REGION",
		"s3.bucket":                     "GASDOC_S3_BUCKET",
		"s3.endpoint":                   "GASDOC_S3_ENDPOINT",
		"s3.access_key":                 "GASDOC_S3_ACCESS_KEY",
		"s3.secret_key":                 "GASDOC_S3_SECRET_KEY",
		"log.level":                     "GASDOC_LOG_LEVEL",
		"log.format":                    "GASDOC_LOG_FORMAT",
		"cors.allowed_origins":          "GASDOC_CORS_ALLOWED_ORIGINS",
		"pipeline.extract_timeout_secs": "GASDOC_PIPELINE_EXTRACT_TIMEOUT_SECS",
		"pipeline.batch_concurrency":    "GASDOC_PIPELINE_BATCH_CONCURRENCY",
		"pipeline.max_file_size_mb":     "GASDOC_PIPELINE_MAX_FILE_SIZE_MB",
		"classifier.signal_source":      "GASDOC_CLASSIFIER_SIGNAL_SOURCE",
		"classifier.timeout_secs":       "GASDOC_CLASSIFIER_TIMEOUT_SECS",
		"extractor.mode":                "GASDOC_EXTRACTOR_MODE",
		"extractor.provider":            "GASDOC_EXTRACTOR_PROVIDER",
		"extractor.api_key":             "GASDOC_EXTRACTOR_API_KEY",
		"extractor.default_model":       "GASDOC_EXTRACTOR_DEFAULT_MODEL",
		"extractor.max_retries":         "GASDOC_EXTRACTOR_MAX_RETRIES",
		"extractor.timeout_secs":        "GASDOC_EXTRACTOR_TIMEOUT_SECS",
	}
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		for _, k := range providerKeys {
			key := "extractor." + slot + "." + k
			envBindings[key] = "GASDOC_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Cloud Run and similar platforms set PORT. Use it if GASDOC_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("GASDOC_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Pipeline = PipelineConfig{
		ExtractTimeoutSecs: v.GetInt("pipeline.extract_timeout_secs"),
		BatchConcurrency:   v.GetInt("pipeline.batch_concurrency"),
		MaxFileSizeMB:      v.GetInt64("pipeline.max_file_size_mb"),
	}
	cfg.Classifier = ClassifierConfig{
		SignalSource: v.GetString("classifier.signal_source"),
		TimeoutSecs:  v.GetInt("classifier.timeout_secs"),
	}

	cfg.Extractor = ExtractorConfig{
		Mode:         v.GetString("extractor.mode"),
		Provider:     v.GetString("extractor.provider"),
		APIKey:       v.GetString("extractor.api_key"),
		DefaultModel: v.GetString("extractor.default_model"),
		MaxRetries:   v.GetInt("extractor.max_retries"),
		TimeoutSecs:  v.GetInt("extractor.timeout_secs"),
		Primary:      providerConfig(v, "extractor.primary"),
		Secondary:    providerConfig(v, "extractor.secondary"),
		Tertiary:     providerConfig(v, "extractor.tertiary"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ExtractorProviderConfig {
	return ExtractorProviderConfig{
		Provider:          v.GetString(prefix + ".provider"),
		APIKey:            v.GetString(prefix + ".api_key"),
		DefaultModel:      v.GetString(prefix + ".default_model"),
		MaxRetries:        v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:       v.GetInt(prefix + ".timeout_secs"),
		RequestsPerMinute: v.GetInt(prefix + ".requests_per_minute"),
		Project:           v.GetString(prefix + ".project"),
		Region:            v.GetString(prefix + ".region"),
	}
}
