// Package config loads gloop's runtime configuration: environment
// variables for process-level settings (grounded on internal/config.Config),
// plus a CUE-validated policy document for the Invoke step's danger gate
// and context-prune threshold.
package config

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultModelMode      = "scripted"
	defaultBashTimeout    = 30 * time.Second
	defaultWorkspaceRoot  = "."
	defaultMemoryFileName = "memory.txt"
)

// Config controls process-level behavior: logging, provider selection, and
// filesystem bounds.
type Config struct {
	LogLevel      string
	LogFormat     string
	ModelMode     string // "provider" (providergenai) or "scripted" (conversationtest)
	GeminiAPIKey  string
	GeminiModel   string
	WorkspaceRoot string
	BashTimeout   time.Duration
	MemoryPath    string
	SessionDBPath string
	MCPServeAddr  string // empty disables the MCP server
}

// Load reads runtime configuration from environment variables, following
// internal/config.Load's shape: defaults first, then overrides validated
// as they're applied.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:      defaultLogLevel,
		LogFormat:     defaultLogFormat,
		ModelMode:     defaultModelMode,
		WorkspaceRoot: defaultWorkspaceRoot,
		BashTimeout:   defaultBashTimeout,
		MemoryPath:    defaultMemoryFileName,
		SessionDBPath: "sessions.db",
	}

	if v := os.Getenv("GLOOP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GLOOP_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("GLOOP_MODEL_MODE"); v != "" {
		cfg.ModelMode = v
	}
	if v := os.Getenv("GLOOP_GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("GLOOP_GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("GLOOP_WORKSPACE_ROOT"); v != "" {
		cfg.WorkspaceRoot = v
	}
	if v := os.Getenv("GLOOP_MEMORY_PATH"); v != "" {
		cfg.MemoryPath = v
	}
	if v := os.Getenv("GLOOP_SESSION_DB_PATH"); v != "" {
		cfg.SessionDBPath = v
	}
	if v := os.Getenv("GLOOP_MCP_SERVE_ADDR"); v != "" {
		cfg.MCPServeAddr = v
	}

	if v := os.Getenv("GLOOP_BASH_TIMEOUT"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse GLOOP_BASH_TIMEOUT: %w", err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("parse GLOOP_BASH_TIMEOUT: value must be > 0")
		}
		cfg.BashTimeout = parsed
	}

	if cfg.ModelMode == "provider" && cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GLOOP_MODEL_MODE=provider requires GLOOP_GEMINI_API_KEY")
	}

	return cfg, nil
}
