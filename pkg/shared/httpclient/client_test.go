package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leakguard-io/leakguard/pkg/shared/config"
)

func TestApplyHttpClientConfigDefaults(t *testing.T) {
	cfg := applyHttpClientConfig(&config.HttpClient{})

	defaults := config.DefaultRestyConfig()
	assert.Equal(t, defaults.Debug, cfg.Debug)
	assert.Equal(t, defaults.RetryCount, cfg.RetryCount)
	assert.Equal(t, defaults.Timeout, cfg.Timeout)
}

func TestApplyHttpClientConfigHonorsDebugFlag(t *testing.T) {
	cfg := applyHttpClientConfig(&config.HttpClient{Debug: true})

	assert.True(t, cfg.Debug)
}

func TestApplyHttpClientConfigOverrides(t *testing.T) {
	cfg := applyHttpClientConfig(&config.HttpClient{
		RetryCount: 2,
		Timeout:    3 * time.Second,
		TlsClientConfig: config.TlsClientConfig{
			Verify: true,
		},
		Proxy: config.Proxy{Host: "proxy.internal", Port: "3128"},
	})

	assert.Equal(t, 2, cfg.RetryCount)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.False(t, cfg.TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, "proxy.internal:3128", cfg.Proxy)
}

func TestInitializeRestyClient(t *testing.T) {
	client := InitializeRestyClient(nil, &config.Config{
		HttpClient: config.HttpClient{Debug: true, RetryCount: 1},
	})

	require.NotNil(t, client)
	assert.True(t, client.Debug)
	assert.Equal(t, 1, client.RetryCount)
}
