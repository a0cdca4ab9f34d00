package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/compozy/testproject/engine/binding"
	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/core"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFileName = "testproject.yaml"
	defaultConfigType     = "yaml"
	EnvPrefix             = "TESTPROJECT"
	defaultNeo4jURI       = "bolt://localhost:7687"
	defaultNeo4jUser      = "neo4j"
	defaultLLMModel       = "gpt-4o-mini"
)

// Config represents the application configuration
type Config struct {
	Bindings BindingsConfig `mapstructure:"bindings" yaml:"bindings"`
	Docs     DocsConfig     `mapstructure:"docs" yaml:"docs"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j" yaml:"neo4j"`
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	MCP      MCPConfig      `mapstructure:"mcp" yaml:"mcp"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// BindingsConfig configures the foreign-callable module
type BindingsConfig struct {
	ModuleName string `mapstructure:"module_name" yaml:"module_name"`
	Style      string `mapstructure:"style" yaml:"style"`
}

// DocsConfig holds genmd defaults
type DocsConfig struct {
	Input       string `mapstructure:"input" yaml:"input"`
	Output      string `mapstructure:"output" yaml:"output"`
	Title       string `mapstructure:"title" yaml:"title"`
	IndexFormat string `mapstructure:"index_format" yaml:"index_format"`
}

// Neo4jConfig represents Neo4j connection configuration
type Neo4jConfig struct {
	URI      string `mapstructure:"uri" yaml:"uri"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
}

// LLMConfig configures the placeholder describer
type LLMConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	Model   string `mapstructure:"model" yaml:"model"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// MCPConfig holds the path restrictions applied to MCP tools
type MCPConfig struct {
	AllowedPaths   []string `mapstructure:"allowed_paths" yaml:"allowed_paths"`
	ForbiddenPaths []string `mapstructure:"forbidden_paths" yaml:"forbidden_paths"`
}

// LogConfig configures pkg/logger
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Bindings: BindingsConfig{
			ModuleName: binding.DefaultModuleName,
			Style:      string(binding.StyleStatic),
		},
		Docs: DocsConfig{
			Input:       cmakedoc.DefaultInput,
			Output:      cmakedoc.DefaultOutput,
			Title:       cmakedoc.DefaultTitle,
			IndexFormat: "json",
		},
		Neo4j: Neo4jConfig{
			URI:      defaultNeo4jURI,
			Username: defaultNeo4jUser,
		},
		LLM: LLMConfig{
			Model: defaultLLMModel,
		},
		MCP: MCPConfig{
			AllowedPaths:   []string{},
			ForbiddenPaths: []string{".git", ".env"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// setDefaults registers every default with v so env overrides bind to known keys
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("bindings.module_name", cfg.Bindings.ModuleName)
	v.SetDefault("bindings.style", cfg.Bindings.Style)
	v.SetDefault("docs.input", cfg.Docs.Input)
	v.SetDefault("docs.output", cfg.Docs.Output)
	v.SetDefault("docs.title", cfg.Docs.Title)
	v.SetDefault("docs.index_format", cfg.Docs.IndexFormat)
	v.SetDefault("neo4j.uri", cfg.Neo4j.URI)
	v.SetDefault("neo4j.username", cfg.Neo4j.Username)
	v.SetDefault("neo4j.password", cfg.Neo4j.Password)
	v.SetDefault("neo4j.database", cfg.Neo4j.Database)
	v.SetDefault("llm.api_key", cfg.LLM.APIKey)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.base_url", cfg.LLM.BaseURL)
	v.SetDefault("mcp.allowed_paths", cfg.MCP.AllowedPaths)
	v.SetDefault("mcp.forbidden_paths", cfg.MCP.ForbiddenPaths)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}

// New returns a viper instance with defaults and TESTPROJECT_ env bindings
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType(defaultConfigType)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

// Load loads configuration from a file. An empty path searches the working
// directory and its parents; a missing file yields the defaults.
func Load(configPath string) (*Config, error) {
	v := New()

	if configPath == "" {
		found, err := Find(".")
		if err == nil {
			configPath = found
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a file
func Save(cfg *Config, configPath string) error {
	if configPath == "" {
		configPath = filepath.Join(".", DefaultConfigFileName)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(defaultConfigType)

	v.Set("bindings", cfg.Bindings)
	v.Set("docs", cfg.Docs)
	v.Set("neo4j", cfg.Neo4j)
	v.Set("llm", cfg.LLM)
	v.Set("mcp", cfg.MCP)
	v.Set("log", cfg.Log)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	if _, err := binding.ParseStyle(c.Bindings.Style); err != nil {
		return core.NewError(err, core.ErrorCodeConfigInvalid, map[string]any{"field": "bindings.style"})
	}
	if c.Bindings.ModuleName == "" {
		c.Bindings.ModuleName = binding.DefaultModuleName
	}

	switch strings.ToLower(c.Docs.IndexFormat) {
	case "", "json", "yaml", "yml":
	default:
		return core.Errorf(core.ErrorCodeConfigInvalid, map[string]any{"field": "docs.index_format"},
			"docs.index_format must be json or yaml, got %q", c.Docs.IndexFormat)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json", "logfmt":
	default:
		return core.Errorf(core.ErrorCodeConfigInvalid, map[string]any{"field": "log.format"},
			"log.format must be text, json or logfmt, got %q", c.Log.Format)
	}

	if c.Docs.Input == "" {
		c.Docs.Input = cmakedoc.DefaultInput
	}
	if c.Docs.Title == "" {
		c.Docs.Title = cmakedoc.DefaultTitle
	}
	return nil
}
