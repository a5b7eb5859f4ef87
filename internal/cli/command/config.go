package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/easytv/smclient-go/internal/cli/config"
	"github.com/easytv/smclient-go/internal/infra/secretbox"
	"github.com/easytv/smclient-go/internal/telemetry/logger"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Local configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate the effective configuration",
				Action: configValidate,
			},
			{
				Name:  "init",
				Usage: "Write the effective configuration to the config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:      "seal-key",
				Usage:     "Encrypt an API key with " + config.PassphraseEnv,
				ArgsUsage: "[API_KEY]",
				Action:    configSealKey,
			},
		},
	}
}

// configView is the printable form of CLIConfig.
type configView struct {
	File     string `json:"file"`
	Server   string `json:"server"`
	APIKey   string `json:"api_key"`
	Username string `json:"username"`
	Output   string `json:"output"`
	Timeout  string `json:"timeout"`
	CAFile   string `json:"ca_file"`
	LogLevel string `json:"log_level"`
	LogFmt   string `json:"log_format"`
}

func configShow(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	cfg := rt.Config

	apiKey := cfg.APIKey
	if apiKey != "" {
		apiKey = logger.RedactString(apiKey)
	}

	return rt.print(c, configView{
		File:     rt.ConfigPath,
		Server:   cfg.Server,
		APIKey:   apiKey,
		Username: cfg.Username,
		Output:   cfg.Output,
		Timeout:  cfg.Timeout.String(),
		CAFile:   cfg.CAFile,
		LogLevel: cfg.Log.Level,
		LogFmt:   cfg.Log.Format,
	})
}

func configValidate(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	if rt.configErr != nil {
		fmt.Fprintf(c.App.Writer, "Configuration is invalid:\n")
		for _, line := range strings.Split(rt.configErr.Error(), "\n") {
			fmt.Fprintf(c.App.Writer, "  - %s\n", line)
		}
		return errors.New("validation failed")
	}
	fmt.Fprintf(c.App.Writer, "Configuration is valid (%s)\n", rt.ConfigPath)
	return nil
}

func configInit(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	if rt.configErr != nil {
		return rt.configErr
	}

	if _, err := os.Stat(rt.ConfigPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", rt.ConfigPath)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	passphrase := []byte(os.Getenv(config.PassphraseEnv))
	if err := config.Save(rt.Config, rt.ConfigPath, passphrase); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Configuration written to %s\n", rt.ConfigPath)
	if rt.Config.APIKey != "" && len(passphrase) == 0 {
		fmt.Fprintf(c.App.ErrWriter, "Warning: api_key stored in plain text, set %s to seal it\n", config.PassphraseEnv)
	}
	return nil
}

func configSealKey(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	key := c.Args().First()
	if key == "" {
		key = rt.Config.APIKey
	}
	if key == "" {
		return errors.New("API key required")
	}

	passphrase := []byte(os.Getenv(config.PassphraseEnv))
	if len(passphrase) == 0 {
		return fmt.Errorf("%s must be set", config.PassphraseEnv)
	}

	sealed, err := secretbox.Seal(key, passphrase)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, sealed)
	return nil
}
