package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the top-level configuration shared by all leakguard commands.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HttpClient HttpClient `yaml:"http_client"`
	Scanner    Scanner    `yaml:"scanner"`
	Server     Server     `yaml:"server"`
}

type Logger struct {
	Level string `yaml:"level"`
}

type HttpClient struct {
	Debug            bool            `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TlsClientConfig  TlsClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TlsClientConfig struct {
	Verify bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Scanner holds detection-side settings. An absent scanner section means
// "scan everything with the core rules".
type Scanner struct {
	HighEntropy       bool     `yaml:"high_entropy"`
	IgnoreFile        string   `yaml:"ignore_file"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	MaxFileSizeBytes  int64    `yaml:"max_file_size_bytes"`
}

// Server holds ingestion-side settings. The admin token and the Slack webhook
// URL may also come from the environment so they stay out of config files
// checked into repositories.
type Server struct {
	Addr            string `yaml:"addr"`
	StoragePath     string `yaml:"storage_path"`
	AdminToken      string `yaml:"admin_token"`
	SlackWebhookURL string `yaml:"slack_webhook_url"`
	MaxBatchSize    int    `yaml:"max_batch_size"`
}

// ValidateConfigPath checks that the config path points at a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes a YAML file into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the config file at configPath. A missing file is not an
// error: every command can run on defaults plus environment variables.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		applyDefaults(config)
		return config, nil
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, err
	}

	applyDefaults(config)
	return config, nil
}

func applyDefaults(cfg *Config) {
	cfg.Scanner.IgnoreFile = SetThen(cfg.Scanner.IgnoreFile, DefaultIgnoreFileName)
	cfg.Scanner.MaxFileSizeBytes = SetThen(cfg.Scanner.MaxFileSizeBytes, DefaultMaxFileSizeBytes)
	cfg.Server.Addr = SetThen(cfg.Server.Addr, DefaultServerAddr)
	cfg.Server.MaxBatchSize = SetThen(cfg.Server.MaxBatchSize, DefaultMaxBatchSize)

	if cfg.Server.AdminToken == "" {
		cfg.Server.AdminToken = os.Getenv("LEAKGUARD_ADMIN_TOKEN")
	}
	if cfg.Server.SlackWebhookURL == "" {
		cfg.Server.SlackWebhookURL = os.Getenv("LEAKGUARD_SLACK_WEBHOOK_URL")
	}
}
