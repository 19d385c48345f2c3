package config

import (
	"crypto/tls"
	"time"
)

const (
	// DefaultIgnoreFileName is the per-root gitignore-style file consulted by
	// the admission gate.
	DefaultIgnoreFileName = ".leakguardignore"

	// DefaultMaxFileSizeBytes bounds worst-case scan latency and memory.
	DefaultMaxFileSizeBytes = 1 << 20 // 1 MiB

	// DefaultMaxBatchSize is the ingestion batch ceiling; oversized batches
	// are rejected outright so lock hold time stays bounded.
	DefaultMaxBatchSize = 200

	DefaultServerAddr = ":3000"
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	TLSClientConfig  *tls.Config
	Proxy            string
}

// RestyHttpClientConfig holds additional configuration settings for the resty http client.
type RestyHttpClientConfig struct {
	BaseHTTPConfig
	Debug bool
}

// DefaultHttpConfig returns the base configuration applicable to all HTTP clients.
func DefaultHttpConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       5,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 2 * time.Second,
		Timeout:          10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		Proxy: "",
	}
}

// DefaultRestyConfig returns a specific http config for resty.
func DefaultRestyConfig() RestyHttpClientConfig {
	return RestyHttpClientConfig{
		BaseHTTPConfig: DefaultHttpConfig(),
		Debug:          false,
	}
}
