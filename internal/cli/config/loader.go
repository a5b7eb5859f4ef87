package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/easytv/smclient-go/internal/cli/output"
	"github.com/easytv/smclient-go/internal/infra/confloader"
	"github.com/easytv/smclient-go/internal/infra/secretbox"
)

// ErrPassphraseRequired is returned when the API key is sealed and no
// passphrase was supplied.
var ErrPassphraseRequired = errors.New("config: api_key is sealed, set " + PassphraseEnv)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".smctl", "config.yaml")
}

// Load merges defaults, the file at path and SMCTL_* variables. A missing
// file is not an error. A sealed API key is opened with passphrase.
func Load(path string, passphrase []byte) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	loader := confloader.NewLoader(
		confloader.WithDefaults(Default().flatten()),
		confloader.WithConfigFile(path),
	)

	cfg := &CLIConfig{}
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := cfg.reveal(passphrase); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge returns a copy of cfg with overrides applied, keyed by dotted
// path. Empty override values are ignored.
func Merge(cfg *CLIConfig, overrides map[string]any) (*CLIConfig, error) {
	loader := confloader.NewLoader(
		confloader.WithoutEnv(),
		confloader.WithDefaults(cfg.flatten()),
		confloader.WithOverrides(overrides),
	)

	merged := &CLIConfig{}
	if err := loader.Load(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Save writes cfg as YAML with mode 0600. When passphrase is set the API
// key is sealed before writing.
func Save(cfg *CLIConfig, path string, passphrase []byte) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	out := *cfg
	if len(passphrase) > 0 && out.APIKey != "" && !secretbox.IsSealed(out.APIKey) {
		sealed, err := secretbox.Seal(out.APIKey, passphrase)
		if err != nil {
			return err
		}
		out.APIKey = sealed
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

// Validate checks that cfg is usable.
func (c *CLIConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server) == "" {
		errs = append(errs, errors.New("server must not be empty"))
	} else {
		server := c.Server
		if !strings.Contains(server, "://") {
			server = "https://" + server
		}
		if u, err := url.Parse(server); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("server %q is not a valid URI", c.Server))
		}
	}

	if _, err := output.ParseFormat(c.Output); err != nil {
		errs = append(errs, err)
	}

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if c.CAFile != "" {
		if _, err := os.Stat(c.CAFile); err != nil {
			errs = append(errs, fmt.Errorf("ca_file: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (c *CLIConfig) reveal(passphrase []byte) error {
	if !secretbox.IsSealed(c.APIKey) {
		return nil
	}
	if len(passphrase) == 0 {
		return ErrPassphraseRequired
	}

	key, err := secretbox.Open(c.APIKey, passphrase)
	if err != nil {
		return fmt.Errorf("config: api_key: %w", err)
	}
	c.APIKey = key
	return nil
}
