package config

import (
	"fmt"
	"net/url"
	"time"
)

// ValidateConfig checks if the global configuration has valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateHTTPConfig(&cfg.HttpClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidateScannerConfig(&cfg.Scanner); err != nil {
		return fmt.Errorf("YAML global config: scanner directive is invalid: %w", err)
	}
	if err := ValidateServerConfig(&cfg.Server); err != nil {
		return fmt.Errorf("YAML global config: server directive is invalid: %w", err)
	}
	return nil
}

// ValidateScannerConfig checks if the scanner configuration has valid values.
func ValidateScannerConfig(scannerConfig *Scanner) error {
	if scannerConfig == nil {
		return fmt.Errorf("scanner configuration is nil")
	}
	if scannerConfig.MaxFileSizeBytes < 0 {
		return fmt.Errorf("max_file_size_bytes must not be negative: %d", scannerConfig.MaxFileSizeBytes)
	}
	return nil
}

// ValidateServerConfig checks if the server configuration has valid values.
func ValidateServerConfig(serverConfig *Server) error {
	if serverConfig == nil {
		return fmt.Errorf("server configuration is nil")
	}
	if serverConfig.MaxBatchSize < 0 {
		return fmt.Errorf("max_batch_size must not be negative: %d", serverConfig.MaxBatchSize)
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configuration has valid values.
func ValidateHTTPConfig(httpConfig *HttpClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime,
		"RetryWaitTime":    httpConfig.RetryWaitTime,
		"Timeout":          httpConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}

	return nil
}

func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%s must not be negative: %v", name, d)
	}
	if d > max {
		return fmt.Errorf("%s must not exceed %v: %v", name, max, d)
	}
	return nil
}

func validateProxy(proxy *Proxy) error {
	if proxy.Host == "" && proxy.Port == "" {
		return nil
	}
	if proxy.Host == "" || proxy.Port == "" {
		return fmt.Errorf("proxy host and port must both be set")
	}
	if _, err := url.Parse(fmt.Sprintf("%s:%s", proxy.Host, proxy.Port)); err != nil {
		return fmt.Errorf("proxy address is invalid: %w", err)
	}
	return nil
}
