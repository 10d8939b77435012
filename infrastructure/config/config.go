// Package config loads infrastructure configuration from the environment,
// with optional YAML overrides for the domain tuning values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	domaincfg "loom-backend/domain/config"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string

	// ConfigFile is an optional YAML file with domain tuning overrides;
	// empty disables overrides and the watcher.
	ConfigFile string

	// AICompletionEndpoint is where completion requests are handed off
	AICompletionEndpoint string
}

// Overrides mirrors the YAML override file. Absent keys keep the value the
// environment profile chose.
type Overrides struct {
	Layout struct {
		NodeWidth   *float64 `yaml:"node_width"`
		SiblingGap  *float64 `yaml:"sibling_gap"`
		LevelHeight *float64 `yaml:"level_height"`
		TreeGap     *float64 `yaml:"tree_gap"`
	} `yaml:"layout"`
	Fork struct {
		HorizontalOffset          *float64 `yaml:"horizontal_offset"`
		MaxHorizontalOffset       *float64 `yaml:"max_horizontal_offset"`
		RowVerticalOffset         *float64 `yaml:"row_vertical_offset"`
		ParentChildVerticalOffset *float64 `yaml:"parent_child_vertical_offset"`
	} `yaml:"fork"`
	Context struct {
		MaxTokens *int `yaml:"max_tokens"`
	} `yaml:"context"`
	Limits struct {
		MaxNodesPerProject *int `yaml:"max_nodes_per_project"`
		MaxDepth           *int `yaml:"max_depth"`
		MaxContentLength   *int `yaml:"max_content_length"`
	} `yaml:"limits"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ConfigFile:           getEnv("LOOM_CONFIG_FILE", ""),
		AICompletionEndpoint: getEnv("AI_COMPLETION_ENDPOINT", ""),
	}
	return cfg, nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DomainConfig builds the domain configuration for the active environment,
// applying YAML overrides when a config file is set.
func (c *Config) DomainConfig() (*domaincfg.DomainConfig, error) {
	domain := domaincfg.LoadDomainConfig(c.Environment)

	if c.ConfigFile != "" {
		overrides, err := loadOverrides(c.ConfigFile)
		if err != nil {
			return nil, err
		}
		applyOverrides(domain, overrides)
	}

	if err := domain.Validate(); err != nil {
		return nil, fmt.Errorf("domain config invalid: %w", err)
	}
	return domain, nil
}

func loadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var overrides Overrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &overrides, nil
}

func applyOverrides(domain *domaincfg.DomainConfig, o *Overrides) {
	setFloat(&domain.NodeWidth, o.Layout.NodeWidth)
	setFloat(&domain.SiblingGap, o.Layout.SiblingGap)
	setFloat(&domain.LevelHeight, o.Layout.LevelHeight)
	setFloat(&domain.TreeGap, o.Layout.TreeGap)

	setFloat(&domain.ForkHorizontalOffset, o.Fork.HorizontalOffset)
	setFloat(&domain.MaxHorizontalOffset, o.Fork.MaxHorizontalOffset)
	setFloat(&domain.ForkRowVerticalOffset, o.Fork.RowVerticalOffset)
	setFloat(&domain.ParentChildVerticalOffset, o.Fork.ParentChildVerticalOffset)

	setInt(&domain.DefaultMaxContextTokens, o.Context.MaxTokens)
	setInt(&domain.MaxNodesPerProject, o.Limits.MaxNodesPerProject)
	setInt(&domain.MaxDepth, o.Limits.MaxDepth)
	setInt(&domain.MaxContentLength, o.Limits.MaxContentLength)
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
