package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name       string
		configYAML string
		check      func(t *testing.T, config *Config)
	}{
		{
			name: "valid config with all fields",
			configYAML: `
templateName: "alma9-test"
directory:
  templateCommand: "/opt/one/bin/onetemplate"
  vmCommand: "/opt/one/bin/onevm"
scan:
  subnet: "192.168.0.0/24"
  sudoPasswordEnv: "LAB_SUDO_PASSWORD"
  leaseTablePath: "/var/lib/misc/dnsmasq.leases"
  attempts: 10
  intervalSeconds: 3
  lineOffset: 2
ssh:
  user: "deploy"
  password: "s3cret"
bootstrap:
  command: "/usr/bin/knife"
  configPath: "/etc/chef/knife.rb"
  runList: "role[test]"
storeDir: "/var/lib/testenv-vm/nodes"
metricsServer:
  port: 9090
  path: "/metrics"
developmentMode: true
logLevel: "debug"
`,
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "alma9-test", config.TemplateName)
				assert.Equal(t, "/opt/one/bin/onetemplate", config.Directory.TemplateCommand)
				assert.Equal(t, "/opt/one/bin/onevm", config.Directory.VMCommand)
				assert.Equal(t, "192.168.0.0/24", config.Scan.Subnet)
				assert.Equal(t, "LAB_SUDO_PASSWORD", config.Scan.SudoPasswordEnv)
				assert.Equal(t, "/var/lib/misc/dnsmasq.leases", config.Scan.LeaseTablePath)
				assert.Equal(t, 10, config.Scan.Attempts)
				assert.Equal(t, "deploy", config.SSH.User)
				assert.Equal(t, "s3cret", config.SSH.Password)
				assert.Equal(t, "/usr/bin/knife", config.Bootstrap.Command)
				assert.Equal(t, "role[test]", config.Bootstrap.RunList)
				assert.Equal(t, "/var/lib/testenv-vm/nodes", config.StoreDir)
				assert.Equal(t, 9090, config.MetricsServer.Port)
				assert.True(t, config.DevelopmentMode)
			},
		},
		{
			name: "minimal config gets defaults",
			configYAML: `
templateName: "alma9-test"
scan:
  subnet: "10.1.0.0/16"
`,
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "alma9-test", config.TemplateName)
				assert.Equal(t, "root", config.SSH.User)
				assert.Equal(t, defaultSSHPassword, config.SSH.Password)
				assert.Equal(t, "knife", config.Bootstrap.Command)
				assert.Equal(t, defaultSudoPasswordEnv, config.Scan.SudoPasswordEnv)
				assert.Equal(t, "/metrics", config.MetricsServer.Path)
				assert.Zero(t, config.MetricsServer.Port, "metrics server should default to disabled")
				assert.NotEmpty(t, config.StoreDir)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.configYAML), 0o644))

			t.Setenv(ConfigPathEnvKey, configPath)

			config, err := loadConfig()
			require.NoError(t, err)
			require.NotNil(t, config)

			tt.check(t, config)
		})
	}
}

func TestLoadConfig_MissingEnvVar(t *testing.T) {
	// Without the env var the CLI falls back to the default path, and a
	// missing default file yields the built-in defaults.
	os.Unsetenv(ConfigPathEnvKey)

	config, err := loadConfig()

	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, "root", config.SSH.User)
	assert.Equal(t, "knife", config.Bootstrap.Command)
}

func TestLoadConfig_NonExistentFile(t *testing.T) {
	// An explicitly configured path must exist.
	t.Setenv(ConfigPathEnvKey, "/non/existent/path/config.yaml")

	config, err := loadConfig()

	assert.Error(t, err)
	assert.Nil(t, config)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0o644))

	t.Setenv(ConfigPathEnvKey, configPath)

	config, err := loadConfig()

	assert.Error(t, err)
	assert.Nil(t, config)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(config *Config)
		expectError string
	}{
		{
			name:   "defaults are valid",
			mutate: func(config *Config) {},
		},
		{
			name: "invalid subnet",
			mutate: func(config *Config) {
				config.Scan.Subnet = "not-a-cidr"
			},
			expectError: "not a CIDR",
		},
		{
			name: "negative scan attempts",
			mutate: func(config *Config) {
				config.Scan.Attempts = -1
			},
			expectError: "cannot be negative",
		},
		{
			name: "metrics port out of range",
			mutate: func(config *Config) {
				config.MetricsServer.Port = 70000
			},
			expectError: "out of range",
		},
		{
			name: "unknown log level",
			mutate: func(config *Config) {
				config.LogLevel = "verbose"
			},
			expectError: "logLevel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			config.setDefaults()
			tt.mutate(config)

			err := config.validate()

			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfigStoreDir(t *testing.T) {
	config := &Config{}
	config.setDefaults()

	t.Run("environment override wins", func(t *testing.T) {
		t.Setenv(StoreDirEnvKey, "/tmp/override")
		assert.Equal(t, "/tmp/override", config.storeDir())
	})

	t.Run("config value otherwise", func(t *testing.T) {
		os.Unsetenv(StoreDirEnvKey)
		assert.Equal(t, config.StoreDir, config.storeDir())
		assert.NotEmpty(t, config.storeDir())
	})
}
