// Package config reads runtime settings from the environment.
//
// Values come from process environment variables. An optional .env file in
// the working directory is loaded first; variables already set in the
// environment take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Environment variable names.
const (
	EnvLogLevel    = "DLPARKIMG_LOG_LEVEL"
	EnvMaxTensors  = "DLPARKIMG_MAX_TENSORS"
	EnvJPEGQuality = "DLPARKIMG_JPEG_QUALITY"
)

// Config holds the server settings.
type Config struct {
	// LogLevel is the minimum level written to stderr.
	LogLevel zapcore.Level

	// MaxTensors caps the number of live tensor handles. Zero means no limit.
	MaxTensors int

	// JPEGQuality is used by write_image for JPEG destinations unless the
	// call overrides it.
	JPEGQuality int
}

// Default returns the settings used when no variables are set.
func Default() Config {
	return Config{
		LogLevel:    zapcore.InfoLevel,
		MaxTensors:  64,
		JPEGQuality: 95,
	}
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv to look up variables.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		lvl, err := zapcore.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = lvl
	}

	if v := strings.TrimSpace(getenv(EnvMaxTensors)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("%s: invalid value %q", EnvMaxTensors, v)
		}
		cfg.MaxTensors = n
	}

	if v := strings.TrimSpace(getenv(EnvJPEGQuality)); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil || q < 1 || q > 100 {
			return Config{}, fmt.Errorf("%s: must be 1-100, got %q", EnvJPEGQuality, v)
		}
		cfg.JPEGQuality = q
	}

	return cfg, nil
}
