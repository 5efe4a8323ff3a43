package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "TAGPRESS_CONFIG"
	ollamaEndpointEnv = "OLLAMA_ENDPOINT"
	ollamaModelEnv    = "OLLAMA_MODEL"

	defaultEndpoint       = "http://localhost:11434"
	defaultModel          = "smollm:1.7b"
	defaultTimeoutSeconds = 60
	defaultBackoffMillis  = 500
)

// Config holds settings required across the application.
type Config struct {
	Ollama  OllamaConfig  `yaml:"ollama"`
	Logging LoggingConfig `yaml:"logging"`
}

// OllamaConfig defines how to contact the local model server.
type OllamaConfig struct {
	Endpoint           string `yaml:"endpoint"`
	Model              string `yaml:"model"`
	TimeoutSeconds     int    `yaml:"timeoutSeconds"`
	MaxRetries         int    `yaml:"maxRetries"`
	RetryBackoffMillis int    `yaml:"retryBackoffMillis"`
}

// RequestTimeout resolves the per-call HTTP timeout.
func (o OllamaConfig) RequestTimeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// RetryBackoff resolves the base delay between retry attempts.
func (o OllamaConfig) RetryBackoff() time.Duration {
	if o.RetryBackoffMillis <= 0 {
		return defaultBackoffMillis * time.Millisecond
	}
	return time.Duration(o.RetryBackoffMillis) * time.Millisecond
}

// LoggingConfig controls diagnostic output verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. An explicit path wins over the TAGPRESS_CONFIG variable.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(ollamaEndpointEnv); v != "" {
		c.Ollama.Endpoint = v
	}
	if v := os.Getenv(ollamaModelEnv); v != "" {
		c.Ollama.Model = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Ollama.Endpoint != "" {
		base.Ollama.Endpoint = override.Ollama.Endpoint
	}
	if override.Ollama.Model != "" {
		base.Ollama.Model = override.Ollama.Model
	}
	if override.Ollama.TimeoutSeconds > 0 {
		base.Ollama.TimeoutSeconds = override.Ollama.TimeoutSeconds
	}
	if override.Ollama.MaxRetries > 0 {
		base.Ollama.MaxRetries = override.Ollama.MaxRetries
	}
	if override.Ollama.RetryBackoffMillis > 0 {
		base.Ollama.RetryBackoffMillis = override.Ollama.RetryBackoffMillis
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Ollama: OllamaConfig{
			Endpoint:           defaultEndpoint,
			Model:              defaultModel,
			TimeoutSeconds:     defaultTimeoutSeconds,
			MaxRetries:         0,
			RetryBackoffMillis: defaultBackoffMillis,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
