package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/easytv/smclient-go/internal/cli/repl"
	"github.com/easytv/smclient-go/internal/infra/confloader"
	"github.com/easytv/smclient-go/internal/telemetry/logger"
)

// REPLCommand returns the interactive mode command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Start an interactive session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "History file (empty to disable)",
				Value: repl.DefaultHistoryPath(),
			},
		},
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	stopWatch := rt.watchLogLevel()
	defer stopWatch()

	exec := func(ctx context.Context, args []string) error {
		app := newApp(rt)
		app.Reader = c.App.Reader
		app.Writer = c.App.Writer
		app.ErrWriter = c.App.ErrWriter
		app.ExitErrHandler = func(*cli.Context, error) {}
		return app.RunContext(ctx, append([]string{app.Name}, args...))
	}

	fmt.Fprintf(c.App.Writer, "Connected to %s. Type \"help\" for commands, \"exit\" to quit.\n", rt.Config.Server)

	r := repl.New(exec,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithPrompt(rt.promptLine),
		repl.WithHistory(repl.NewHistory(c.String("history"))),
		repl.WithCompleter(repl.NewCompleter(commandPaths(commands(), ""))),
	)
	return r.Run(c.Context)
}

// watchLogLevel applies log.level changes made to the config file while
// the REPL runs. The returned func stops watching.
func (rt *Runtime) watchLogLevel() func() {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(rt.Logger))
	if err != nil {
		rt.Logger.Debug("config watcher unavailable", "error", err)
		return func() {}
	}
	if err := w.Watch(rt.ConfigPath); err != nil {
		_ = w.Stop()
		return func() {}
	}

	w.OnChange(func(path string) {
		loader := confloader.NewLoader(confloader.WithoutEnv(), confloader.WithConfigFile(path))
		var cfg struct {
			Log struct {
				Level string `koanf:"level"`
			} `koanf:"log"`
		}
		if err := loader.Load(&cfg); err != nil {
			rt.Logger.Warn("config reload failed", "error", err)
			return
		}
		if cfg.Log.Level != "" && cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			rt.Logger.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()

	return func() { _ = w.Stop() }
}
