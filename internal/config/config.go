package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"
)

var (
	ErrInvalidBaseURL = errors.New("OPENLIBRARY_BASE_URL must be an absolute http(s) URL")
	ErrInvalidAddr    = errors.New("listen address must not be empty")
)

type Config struct {
	Server      ServerConfig
	OpenLibrary OpenLibraryConfig
	MCP         MCPConfig
	Log         LogConfig
}

type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type OpenLibraryConfig struct {
	BaseURL string
	Timeout time.Duration
}

type MCPConfig struct {
	// HTTPAddr switches the MCP server from stdio to streamable HTTP.
	HTTPAddr string
}

type LogConfig struct {
	Level string
	// ToStderr keeps stdout clean; required when MCP runs over stdio.
	ToStderr bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnvOrDefault("BOOKS_HTTP_ADDR", ":8080"),
			ShutdownTimeout: time.Duration(getEnvIntOrDefault("BOOKS_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		},
		OpenLibrary: OpenLibraryConfig{
			BaseURL: getEnvOrDefault("OPENLIBRARY_BASE_URL", "https://openlibrary.org"),
			Timeout: time.Duration(getEnvIntOrDefault("OPENLIBRARY_TIMEOUT_SEC", 30)) * time.Second,
		},
		MCP: MCPConfig{
			HTTPAddr: os.Getenv("BOOKS_MCP_HTTP_ADDR"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.OpenLibrary.BaseURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if c.Server.Addr == "" {
		return ErrInvalidAddr
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
