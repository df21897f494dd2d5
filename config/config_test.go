package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeYaml(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_Flags(t *testing.T) {
	c, err := Parse([]string{
		"--market", "ltccny",
		"--pollinterval", "5s",
		"--logcapacity", "50",
		"--tlsdomains", "a.example.com, b.example.com",
	}, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "ltccny", c.Market)
	assert.Equal(t, 5*time.Second, c.PollInterval)
	assert.Equal(t, 50, c.LogCapacity)
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, c.TLSDomains)
	assert.Equal(t, Default().RPCURL, c.RPCURL)
	assert.False(t, c.HasCredentials())
}

func TestParse_Credentials(t *testing.T) {
	c, err := Parse([]string{"--orders", "11,12"}, env(map[string]string{
		EnvAccessKey: "access-key-1234",
		EnvSecretKey: "secret-key-5678",
	}))
	require.NoError(t, err)

	assert.True(t, c.HasCredentials())
	assert.Equal(t, []int64{11, 12}, c.WatchOrders)
}

func TestParse_Yaml(t *testing.T) {
	path := writeYaml(t, `
market: ltccny
depth_limit: 5
poll_interval: 1m
log_capacity: 10
tls_domains:
  - mon.example.com
`)
	c, err := Parse([]string{"--config", path, "--market", "ignored"}, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "ltccny", c.Market)
	assert.Equal(t, 5, c.DepthLimit)
	assert.Equal(t, Default().TradesLimit, c.TradesLimit)
	assert.Equal(t, time.Minute, c.PollInterval)
	assert.Equal(t, 10, c.LogCapacity)
	assert.Equal(t, []string{"mon.example.com"}, c.TLSDomains)
	assert.Equal(t, defaultCertCacheDir, c.CertCacheDir)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr string
	}{
		{name: "zero log capacity", args: []string{"--logcapacity", "0"}, wantErr: "'log_capacity'"},
		{name: "negative poll interval", args: []string{"--pollinterval", "-1s"}, wantErr: "'poll_interval'"},
		{name: "relative rpc url", args: []string{"--rpcurl", "/api"}, wantErr: "'rpc_url'"},
		{name: "empty market", args: []string{"--market", ""}, wantErr: "'market'"},
		{name: "zero depth", args: []string{"--depthlimit", "0"}, wantErr: "'depth_limit'"},
		{name: "bad order id", args: []string{"--orders", "1,x"}, wantErr: "--orders=1,x"},
		{name: "orders without credentials", args: []string{"--orders", "1"}, wantErr: "'watch_orders'"},
		{
			name:    "non-positive order id",
			args:    []string{"--orders", "0"},
			env:     map[string]string{EnvAccessKey: "a", EnvSecretKey: "b"},
			wantErr: "'watch_orders'",
		},
		{name: "missing file", args: []string{"--config", "/nonexistent/config.yaml"}, wantErr: "failed to read config"},
		{name: "unknown flag", args: []string{"--pair", "BTC_USDT"}, wantErr: "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, env(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ZeroTradesLimit(t *testing.T) {
	c, err := Load(writeYaml(t, "trades_limit: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.TradesLimit)
	assert.NoError(t, c.Validate())
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeYaml(t, "poll_interval: [1, 2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestSections_MasksSecrets(t *testing.T) {
	c := Default()
	c.AccessKey = "abcdefgh12345678"
	c.SecretKey = "short"
	c.WatchOrders = []int64{3, 4}

	sections := c.Sections()
	require.Len(t, sections, 4)
	assert.Equal(t, []string{"exchange", "monitor", "log", "web"},
		[]string{sections[0].Name, sections[1].Name, sections[2].Name, sections[3].Name})

	values := map[string]string{}
	for _, s := range sections {
		for _, e := range s.Entries {
			values[e.Key] = e.Value
		}
	}
	assert.Equal(t, "****5678", values["access_key"])
	assert.Equal(t, "****", values["secret_key"])
	assert.Equal(t, "3,4", values["watch_orders"])
	assert.Equal(t, "200", values["log_capacity"])
}
