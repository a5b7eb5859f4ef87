package config

import (
	"time"

	"github.com/easytv/smclient-go/pkg/smclient"
)

// PassphraseEnv names the environment variable holding the passphrase for
// a sealed API key.
const PassphraseEnv = "SMCTL_PASSPHRASE"

// CLIConfig is the configuration for smctl.
type CLIConfig struct {
	// Server is the Service Manager base URI.
	Server string `koanf:"server" yaml:"server"`

	// APIKey authenticates backend commands. May be sealed.
	APIKey string `koanf:"api_key" yaml:"api_key,omitempty"`

	// Username and Password authenticate owner commands. The password is
	// never written to disk.
	Username string `koanf:"username" yaml:"username,omitempty"`
	Password string `koanf:"password" yaml:"-"`

	// Output is the default output format (table, json, yaml).
	Output string `koanf:"output" yaml:"output"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`

	// CAFile adds a PEM CA bundle to the system roots.
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty"`

	Log LogConfig `koanf:"log" yaml:"log"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  smclient.DefaultBaseURI,
		Output:  "table",
		Timeout: 30 * time.Second,
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// flatten returns cfg keyed by dotted koanf paths.
func (c *CLIConfig) flatten() map[string]any {
	return map[string]any{
		"server":     c.Server,
		"api_key":    c.APIKey,
		"username":   c.Username,
		"password":   c.Password,
		"output":     c.Output,
		"timeout":    c.Timeout.String(),
		"ca_file":    c.CAFile,
		"log.level":  c.Log.Level,
		"log.format": c.Log.Format,
	}
}
