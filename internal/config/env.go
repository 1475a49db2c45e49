// Package config provides shared configuration utilities: environment lookup
// and the YAML settings file.
package config

import (
	"os"

	"github.com/charmbracelet/log"
)

// Environment variable names shared by the binaries.
const (
	EnvSettings = "TETRIS_CONFIG"
	EnvLogFile  = "TETRIS_LOG"
	EnvLogLevel = "TETRIS_LOG_LEVEL"
)

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// LogLevel returns the level named by TETRIS_LOG_LEVEL, or fallback when it
// is unset or unknown.
func LogLevel(fallback log.Level) log.Level {
	name, ok := os.LookupEnv(EnvLogLevel)
	if !ok {
		return fallback
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return fallback
	}
	return level
}
