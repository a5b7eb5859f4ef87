package command

import (
	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/easytv/smclient-go/internal/infra/buildinfo"
)

// Metadata keys.
const (
	runtimeKey   = "runtime"
	requestIDKey = "requestID"
)

// App creates the CLI application.
func App() *cli.App {
	return newApp(nil)
}

// newApp builds the command tree. A non-nil shared runtime is reused
// instead of being created and torn down by this App.
func newApp(shared *Runtime) *cli.App {
	app := &cli.App{
		Name:                 buildinfo.Name,
		Usage:                "EasyTV Service Manager command-line client",
		Version:              buildinfo.Version,
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands:             commands(),
		Metadata:             map[string]any{},
	}

	app.Before = func(c *cli.Context) error {
		c.App.Metadata[requestIDKey] = ulid.Make().String()

		if shared != nil {
			c.App.Metadata[runtimeKey] = shared
			return nil
		}

		rt, err := newRuntime(c)
		if err != nil {
			return err
		}
		c.App.Metadata[runtimeKey] = rt
		return nil
	}

	app.After = func(c *cli.Context) error {
		if shared != nil {
			return nil
		}
		rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
		if !ok {
			return nil
		}
		return rt.Close()
	}

	return app
}

func commands() []*cli.Command {
	return []*cli.Command{
		LoginCommand(),
		LogoutCommand(),
		OwnerCommand(),
		BackendCommand(),
		ConfigCommand(),
		VersionCommand(),
		REPLCommand(),
	}
}

// commandPaths lists every leaf command as a space-separated path.
func commandPaths(cmds []*cli.Command, prefix string) []string {
	var paths []string
	for _, cmd := range cmds {
		path := cmd.Name
		if prefix != "" {
			path = prefix + " " + cmd.Name
		}
		if len(cmd.Subcommands) == 0 {
			paths = append(paths, path)
			continue
		}
		paths = append(paths, commandPaths(cmd.Subcommands, path)...)
	}
	return paths
}

// globalFlags returns the global CLI flags. Environment variables are
// read by the configuration loader, not by the flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Configuration file (default ~/.smctl/config.yaml)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Service Manager base URI",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Aliases: []string{"K"},
			Usage:   "API key for backend commands",
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Content owner username",
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "Content owner password (prompted when omitted on a terminal)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show nested values in tables",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "PEM file with extra CA certificates",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "HTTP request timeout (e.g. 30s)",
		},
		&cli.StringFlag{
			Name:  "metrics-textfile",
			Usage: "Write Prometheus metrics to this file on exit",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// flagOverrides maps the global flags set on the command line to config
// keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	for flag, key := range map[string]string{
		"server":   "server",
		"api-key":  "api_key",
		"username": "username",
		"password": "password",
		"output":   "output",
		"ca-file":  "ca_file",
	} {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	if c.IsSet("timeout") {
		overrides["timeout"] = c.Duration("timeout").String()
	}
	if c.Bool("verbose") {
		overrides["log.level"] = "debug"
	}
	return overrides
}
