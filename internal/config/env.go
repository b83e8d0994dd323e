// Package config provides environment helpers for go-dropceiling commands.
package config

import (
	"os"
	"strconv"
)

// Environment variables read by the commands.
const (
	EnvUpstreamURL = "DROPCEILING_URL"
	EnvListenPort  = "DROPCEILING_PORT"
	EnvLayoutFile  = "DROPCEILING_LAYOUT"
	EnvLogLevel    = "DROPCEILING_LOG_LEVEL"
)

// UpstreamURL returns the installation endpoint from DROPCEILING_URL.
// Falls back to the provided default if not set.
func UpstreamURL(defaultURL string) string {
	if u := os.Getenv(EnvUpstreamURL); u != "" {
		return u
	}
	return defaultURL
}

// ListenPort returns the dashboard port from DROPCEILING_PORT.
// Falls back to the provided default if unset or not a valid port.
func ListenPort(defaultPort string) string {
	p := os.Getenv(EnvListenPort)
	if p == "" {
		return defaultPort
	}
	if n, err := strconv.Atoi(p); err != nil || n <= 0 || n > 65535 {
		return defaultPort
	}
	return p
}

// LayoutFile returns the layout bundle path from DROPCEILING_LAYOUT, or "".
func LayoutFile() string {
	return os.Getenv(EnvLayoutFile)
}

// LogLevel returns the log level from DROPCEILING_LOG_LEVEL.
func LogLevel(defaultLevel string) string {
	if l := os.Getenv(EnvLogLevel); l != "" {
		return l
	}
	return defaultLevel
}
