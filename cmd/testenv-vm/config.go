package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/alexandremahdhaoui/testenv-vm/internal/util/logging"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/node"
)

const (
	// ConfigPathEnvKey is the environment variable key for the config file path.
	ConfigPathEnvKey = "TESTENV_VM_CONFIG_PATH"
	// StoreDirEnvKey is the environment variable overriding the record store
	// directory.
	StoreDirEnvKey = "TESTENV_VM_STORE_DIR"

	// DefaultConfigPath is read when TESTENV_VM_CONFIG_PATH is unset.
	DefaultConfigPath = "/etc/testenv-vm/config.yaml"
)

const (
	// defaultSSHPassword is the well-known password the lab's VM templates
	// ship with. Override it in the config for hardened templates.
	defaultSSHPassword = "password"

	// defaultSudoPasswordEnv names the environment variable holding the sudo
	// password for privileged subnet scans, so it never lives in the config
	// file.
	defaultSudoPasswordEnv = "TESTENV_VM_SUDO_PASSWORD"
)

// Config is used to configure the testenv-vm CLI.
//
// Some part of the configuration may be passed through environment variables.
type Config struct {
	// TemplateName is the directory template cloned by `create` when no
	// --template flag is given.
	TemplateName string `json:"templateName,omitempty"`

	// Directory selects the OpenNebula CLI binaries wrapped by the client.
	Directory struct {
		// TemplateCommand overrides the template CLI, "onetemplate" by default.
		TemplateCommand string `json:"templateCommand,omitempty"`
		// VMCommand overrides the VM CLI, "onevm" by default.
		VMCommand string `json:"vmCommand,omitempty"`
	} `json:"directory"`

	// Scan configures MAC-based IP discovery on the lab subnet.
	Scan struct {
		// Subnet is swept when discovering node addresses, CIDR notation.
		Subnet string `json:"subnet,omitempty"`
		// SudoPasswordEnv names the environment variable holding the sudo
		// password for privileged sweeps.
		SudoPasswordEnv string `json:"sudoPasswordEnv,omitempty"`
		// LeaseTablePath optionally points at a dnsmasq-format lease table
		// consulted before sweeping.
		LeaseTablePath string `json:"leaseTablePath,omitempty"`
		// Attempts bounds the sweeps per lookup.
		Attempts int `json:"attempts,omitempty"`
		// IntervalSeconds separates consecutive sweeps.
		IntervalSeconds int `json:"intervalSeconds,omitempty"`
		// LineOffset is how many lines above the MAC match the scan report
		// prints the address. Zero keeps the scanner's default.
		LineOffset int `json:"lineOffset,omitempty"`
	} `json:"scan"`

	// SSH is used by `exec` and as the bootstrap credential defaults.
	SSH struct {
		User     string `json:"user,omitempty"`
		Password string `json:"password,omitempty"`
	} `json:"ssh"`

	// Bootstrap configures the configuration-management bootstrap invocation.
	Bootstrap struct {
		// Command is the bootstrap tool, "knife" by default.
		Command string `json:"command,omitempty"`
		// ConfigPath adds "--config <path>" to the bootstrap vector.
		ConfigPath string `json:"configPath,omitempty"`
		// RunList adds "-r <run list>".
		RunList string `json:"runList,omitempty"`
		// AttributesJSON adds "-j <json>".
		AttributesJSON string `json:"attributesJSON,omitempty"`
	} `json:"bootstrap"`

	// StoreDir is where node records are persisted.
	StoreDir string `json:"storeDir,omitempty"`

	// MetricsServer is served while a command runs. Port 0 disables it.
	MetricsServer struct {
		// Path is the path for the metrics handler.
		Path string `json:"path,omitempty"`
		// Port is the port for the metrics server.
		Port int `json:"port,omitempty"`
	} `json:"metricsServer"`

	// DevelopmentMode enables human-readable logging.
	DevelopmentMode bool `json:"developmentMode,omitempty"`

	// LogLevel sets the minimum log level: debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty"`
}

// loadConfig loads the configuration from the file specified in the
// TESTENV_VM_CONFIG_PATH environment variable, falling back to
// DefaultConfigPath. A missing default file yields the built-in defaults so
// the CLI runs on a plain lab host.
func loadConfig() (*Config, error) {
	configPath := os.Getenv(ConfigPathEnvKey)
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}

	config := &Config{}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		// Parse YAML (uses json tags).
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config anywhere: run on defaults.
	default:
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	config.setDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func (c *Config) setDefaults() {
	if c.Scan.SudoPasswordEnv == "" {
		c.Scan.SudoPasswordEnv = defaultSudoPasswordEnv
	}

	if c.SSH.User == "" {
		c.SSH.User = node.DefaultSSHUser
	}

	if c.SSH.Password == "" {
		c.SSH.Password = defaultSSHPassword
	}

	if c.Bootstrap.Command == "" {
		c.Bootstrap.Command = node.DefaultBootstrapCommand
	}

	if c.StoreDir == "" {
		c.StoreDir = filepath.Join(os.ExpandEnv("$HOME"), ".testenv-vm", "nodes")
	}

	if c.MetricsServer.Path == "" {
		c.MetricsServer.Path = "/metrics"
	}
}

func (c *Config) validate() error {
	var errs []error

	if c.Scan.Subnet != "" {
		if _, _, err := net.ParseCIDR(c.Scan.Subnet); err != nil {
			errs = append(errs, fmt.Errorf("scan.subnet %q is not a CIDR: %w", c.Scan.Subnet, err))
		}
	}

	if c.Scan.Attempts < 0 {
		errs = append(errs, errors.New("scan.attempts cannot be negative"))
	}

	if c.MetricsServer.Port < 0 || c.MetricsServer.Port > 65535 {
		errs = append(errs, fmt.Errorf("metricsServer.port %d out of range", c.MetricsServer.Port))
	}

	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			errs = append(errs, fmt.Errorf("logLevel %q: %w", c.LogLevel, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// logOptions maps the config onto logging options.
func (c *Config) logOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Development = c.DevelopmentMode

	if c.LogLevel != "" {
		// Parsability is checked in validate().
		_ = opts.Level.UnmarshalText([]byte(c.LogLevel))
	}

	return opts
}

// storeDir resolves the node record directory, preferring the environment
// override.
func (c *Config) storeDir() string {
	if dir := os.Getenv(StoreDirEnvKey); dir != "" {
		return dir
	}

	return c.StoreDir
}
