// Package config loads gateway configuration from a .env file and the
// process environment, following the same required/optional field
// pattern the teacher proxy used for its own multi-endpoint config.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every environment-driven setting the gateway reads at
// startup. There is deliberately no mutable state here beyond what is
// set once at load time; the request-handling path treats Config as
// read-only.
type Config struct {
	Port int

	StraicoAPIKey  string
	StraicoBaseURL string

	UpstreamTimeout   time.Duration
	HeartbeatChar     string
	HeartbeatInterval time.Duration

	LogLevel    string
	MaskAPIKeys bool

	ToolDescriptions map[string]string
}

// GetDefaultConfig returns development-friendly defaults. LoadConfigWithEnv
// starts from this and overrides with whatever is found in .env/the
// environment.
func GetDefaultConfig() *Config {
	return &Config{
		Port:              8080,
		StraicoBaseURL:    "https://api.straico.com/v1/prompt/completion",
		UpstreamTimeout:   120 * time.Second,
		HeartbeatChar:     "zwsp",
		HeartbeatInterval: 3 * time.Second,
		LogLevel:          "info",
		MaskAPIKeys:       true,
		ToolDescriptions:  map[string]string{},
	}
}

// loadEnvFile parses a simple KEY=VALUE .env file, tolerating blank
// lines and "#"-prefixed comments, and applies entries to the process
// environment without overriding variables already set there.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// LoadConfigWithEnv loads .env (if present), then reads the process
// environment into a Config, returning an error for any missing
// required field.
func LoadConfigWithEnv() (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := GetDefaultConfig()

	apiKey := os.Getenv("STRAICO_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("STRAICO_API_KEY is required")
	}
	cfg.StraicoAPIKey = apiKey

	if v := os.Getenv("STRAICO_BASE_URL"); v != "" {
		cfg.StraicoBaseURL = v
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("UPSTREAM_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT_SECONDS: %w", err)
		}
		cfg.UpstreamTimeout = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("HEARTBEAT_CHAR"); v != "" {
		switch v {
		case "empty", "zwsp", "zwnj", "wj":
			cfg.HeartbeatChar = v
		default:
			return nil, fmt.Errorf("invalid HEARTBEAT_CHAR: %s", v)
		}
	}

	if v := os.Getenv("HEARTBEAT_INTERVAL_SECONDS"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid HEARTBEAT_INTERVAL_SECONDS: %w", err)
		}
		cfg.HeartbeatInterval = time.Duration(secs * float64(time.Second))
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("MASK_API_KEYS"); v != "" {
		cfg.MaskAPIKeys = v == "true" || v == "1"
	}

	descriptions, err := LoadToolDescriptions("tools_override.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load tools_override.yaml: %w", err)
	}
	cfg.ToolDescriptions = descriptions

	return cfg, nil
}

type toolDescriptionsYAML struct {
	Tools map[string]string `yaml:"tools"`
}

// LoadToolDescriptions reads an optional YAML file mapping tool name to
// a replacement description, used by the tool encoder (component C) to
// override a tool's documentation without a code change. A missing
// file is not an error; it yields an empty map.
func LoadToolDescriptions(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	var doc toolDescriptionsYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Tools == nil {
		doc.Tools = map[string]string{}
	}
	return doc.Tools, nil
}

// MaskAPIKey renders an API key as its first and last four characters
// with the middle replaced by ellipsis, for safe log output.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
