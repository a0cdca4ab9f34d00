package mcp

import (
	"path/filepath"
	"strings"
	"time"
)

// Config represents the MCP server configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Performance PerformanceConfig `yaml:"performance"`
	Security    SecurityConfig    `yaml:"security"`
	Features    FeaturesConfig    `yaml:"features"`
}

// ServerConfig defines how the server announces itself
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// PerformanceConfig defines performance settings
type PerformanceConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxFileSize    int64         `yaml:"max_file_size"`
}

// SecurityConfig defines which paths tools may touch
type SecurityConfig struct {
	AllowedPaths   []string `yaml:"allowed_paths"`
	ForbiddenPaths []string `yaml:"forbidden_paths"`
}

// FeaturesConfig defines feature toggles
type FeaturesConfig struct {
	EnableDocs        bool `yaml:"enable_docs"`
	EnableModuleCheck bool `yaml:"enable_module_check"`
}

// DefaultConfig returns default MCP configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "testproject",
			Version: "1.0.0",
		},
		Performance: PerformanceConfig{
			RequestTimeout: 30 * time.Second,
			MaxFileSize:    64 << 20,
		},
		Security: SecurityConfig{
			AllowedPaths:   []string{},
			ForbiddenPaths: []string{".git", ".env"},
		},
		Features: FeaturesConfig{
			EnableDocs:        true,
			EnableModuleCheck: true,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return &ConfigError{Field: "server.name", Message: "name cannot be empty"}
	}
	if c.Server.Version == "" {
		return &ConfigError{Field: "server.version", Message: "version cannot be empty"}
	}
	if c.Performance.RequestTimeout <= 0 {
		return &ConfigError{Field: "performance.request_timeout", Message: "request_timeout must be positive"}
	}
	if c.Performance.MaxFileSize <= 0 {
		return &ConfigError{Field: "performance.max_file_size", Message: "max_file_size must be positive"}
	}
	for _, p := range c.Security.AllowedPaths {
		if strings.TrimSpace(p) == "" {
			return &ConfigError{Field: "security.allowed_paths", Message: "paths cannot be empty"}
		}
	}
	return nil
}

// CheckPath reports whether a tool may access path. Forbidden entries match
// any path component or a path prefix; when AllowedPaths is non-empty the
// path must sit under one of them.
func (s *SecurityConfig) CheckPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &PathError{Path: path, Reason: err.Error()}
	}

	for _, forbidden := range s.ForbiddenPaths {
		if forbidden == "" {
			continue
		}
		if !strings.ContainsRune(forbidden, filepath.Separator) && !filepath.IsAbs(forbidden) {
			for _, part := range strings.Split(abs, string(filepath.Separator)) {
				if part == forbidden {
					return &PathError{Path: path, Reason: "path is forbidden"}
				}
			}
			continue
		}
		if within(abs, forbidden) {
			return &PathError{Path: path, Reason: "path is forbidden"}
		}
	}

	if len(s.AllowedPaths) == 0 {
		return nil
	}
	for _, allowed := range s.AllowedPaths {
		if within(abs, allowed) {
			return nil
		}
	}
	return &PathError{Path: path, Reason: "path is outside the allowed paths"}
}

func within(abs, root string) bool {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config validation error: " + e.Field + " - " + e.Message
}

// PathError is returned when a tool is denied access to a path
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return "access denied: " + e.Path + " - " + e.Reason
}
