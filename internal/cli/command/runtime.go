package command

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/easytv/smclient-go/internal/cli/config"
	"github.com/easytv/smclient-go/internal/cli/output"
	"github.com/easytv/smclient-go/internal/infra/buildinfo"
	"github.com/easytv/smclient-go/internal/infra/shutdown"
	"github.com/easytv/smclient-go/internal/infra/tlsroots"
	"github.com/easytv/smclient-go/internal/telemetry/logger"
	"github.com/easytv/smclient-go/internal/telemetry/metric"
	"github.com/easytv/smclient-go/pkg/smclient"
)

// shutdownTimeout bounds the logout and flush work done on exit.
const shutdownTimeout = 10 * time.Second

// Runtime is the state shared by the commands of one smctl process.
type Runtime struct {
	Config     *config.CLIConfig
	ConfigPath string
	Logger     logger.Logger
	Metrics    *metric.Registry
	Session    *smclient.SessionClient
	Key        *smclient.KeyClient

	// configErr is set when the merged configuration is invalid. Local
	// commands still run so the problem can be inspected.
	configErr error
	user      string
	stdin     io.Reader
	errOut    io.Writer
	shutdown  *shutdown.Handler
}

func newRuntime(c *cli.Context) (*Runtime, error) {
	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	passphrase := []byte(os.Getenv(config.PassphraseEnv))

	cfg, err := config.Load(path, passphrase)
	if err != nil {
		return nil, err
	}
	cfg, err = config.Merge(cfg, flagOverrides(c))
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	rt := &Runtime{
		Config:     cfg,
		ConfigPath: path,
		Logger:     log,
		Metrics:    metric.NewRegistry(),
		stdin:      c.App.Reader,
		errOut:     c.App.ErrWriter,
		shutdown:   shutdown.NewHandler(shutdownTimeout),
	}
	rt.shutdown.OnShutdown(func(ctx context.Context) error {
		_ = logger.Sync(log)
		return nil
	})
	if path := c.String("metrics-textfile"); path != "" {
		rt.shutdown.OnShutdown(func(ctx context.Context) error {
			return rt.Metrics.WriteTextfile(path)
		})
	}

	if rt.configErr = cfg.Validate(); rt.configErr != nil {
		log.Warn("configuration is invalid", "error", rt.configErr)
		return rt, nil
	}

	httpClient, err := tlsroots.ClientWithCA(cfg.CAFile, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	opts := []smclient.Option{
		smclient.WithHTTPClient(httpClient),
		smclient.WithLogger(log),
		smclient.WithObserver(rt.Metrics),
		smclient.WithUserAgent(buildinfo.UserAgent()),
		smclient.WithRequestID(logger.RequestIDFromContext),
	}
	rt.Session = smclient.NewSessionClient(cfg.Server, opts...)
	rt.Key = smclient.NewKeyClient(cfg.APIKey, cfg.Server, opts...)

	rt.shutdown.OnShutdown(func(ctx context.Context) error {
		if !rt.Session.LoggedIn() {
			return nil
		}
		if _, err := rt.Session.Logout(ctx); err != nil {
			log.Warn("logout on exit failed", "error", err)
		}
		return nil
	})

	log.Debug("runtime ready", "server", rt.Session.BaseURI(), "config", rt.ConfigPath)
	return rt, nil
}

// Close logs out and flushes metrics and logs. It is safe to call more
// than once.
func (rt *Runtime) Close() error {
	return rt.shutdown.Run()
}

// getRuntime retrieves the runtime from the App metadata.
func getRuntime(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt, nil
	}
	return nil, errors.New("runtime not initialized")
}

// context returns the command context carrying the request ID and logger.
func (rt *Runtime) context(c *cli.Context) context.Context {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if id, ok := c.App.Metadata[requestIDKey].(string); ok {
		ctx = logger.WithRequestID(ctx, id)
	}
	return logger.WithLogger(ctx, rt.Logger)
}

// owner returns the session client, logging in with the configured
// credentials when no session is active.
func (rt *Runtime) owner(ctx context.Context) (*smclient.SessionClient, error) {
	if rt.configErr != nil {
		return nil, rt.configErr
	}
	if rt.Session.LoggedIn() {
		return rt.Session, nil
	}
	if rt.Config.Username == "" {
		return nil, fmt.Errorf("%w: run \"login\" or set --username", smclient.ErrNotLoggedIn)
	}
	if err := rt.login(ctx, rt.Config.Username); err != nil {
		return nil, err
	}
	return rt.Session, nil
}

// backend returns the API key client.
func (rt *Runtime) backend() (*smclient.KeyClient, error) {
	if rt.configErr != nil {
		return nil, rt.configErr
	}
	if rt.Config.APIKey == "" {
		return nil, errors.New("api key required: set --api-key or SMCTL_API_KEY")
	}
	return rt.Key, nil
}

func (rt *Runtime) login(ctx context.Context, username string) error {
	if rt.configErr != nil {
		return rt.configErr
	}

	password := rt.Config.Password
	if password == "" {
		p, err := rt.prompt("Password for "+username+": ", "password required: set --password or SMCTL_PASSWORD")
		if err != nil {
			return err
		}
		password = p
	}

	if _, err := rt.Session.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	rt.user = username
	rt.Logger.Info("logged in", "username", username)
	return nil
}

// prompt reads a secret from the terminal without echo. Without a
// terminal it fails with missing.
func (rt *Runtime) prompt(label, missing string) (string, error) {
	f, ok := rt.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", errors.New(missing)
	}

	fmt.Fprint(rt.errOut, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(rt.errOut)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// promptLine is the REPL prompt.
func (rt *Runtime) promptLine() string {
	if rt.Session != nil && rt.Session.LoggedIn() && rt.user != "" {
		return buildinfo.Name + "(" + rt.user + ")> "
	}
	return buildinfo.Name + "> "
}

// format returns the output format for this invocation.
func (rt *Runtime) format(c *cli.Context) (output.Format, error) {
	name := rt.Config.Output
	if c.IsSet("output") {
		name = c.String("output")
	}
	return output.ParseFormat(name)
}

// print renders data in the selected format.
func (rt *Runtime) print(c *cli.Context, data any) error {
	format, err := rt.format(c)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, c.Bool("wide")).Format(c.App.Writer, data)
}

// printResponse renders a Service Manager reply. Tables show the data
// payload, or the description when there is none. JSON and YAML show the
// whole envelope.
func (rt *Runtime) printResponse(c *cli.Context, resp *smclient.Response) error {
	format, err := rt.format(c)
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.NewFormatter(format, c.Bool("wide")).Format(c.App.Writer, resp)
	}

	if len(resp.Data) > 0 && string(resp.Data) != "null" {
		return (&output.TableFormatter{Wide: c.Bool("wide")}).Format(c.App.Writer, resp.Data)
	}

	desc := resp.Description
	if desc == "" {
		desc = resp.Code.String()
	}
	_, err = fmt.Fprintln(c.App.Writer, desc)
	return err
}

// readJSON parses a JSON argument. "@path" reads a file and "@-" reads
// standard input.
func readJSON(c *cli.Context, value string) (json.RawMessage, error) {
	data := []byte(value)
	if strings.HasPrefix(value, "@") {
		var err error
		if value == "@-" {
			data, err = io.ReadAll(bufio.NewReader(c.App.Reader))
		} else {
			data, err = os.ReadFile(strings.TrimPrefix(value, "@"))
		}
		if err != nil {
			return nil, err
		}
	}

	data = []byte(strings.TrimSpace(string(data)))
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON: %.40q", string(data))
	}
	return json.RawMessage(data), nil
}

// requireArg returns the first positional argument or an error naming it.
func requireArg(c *cli.Context, name string) (string, error) {
	v := strings.TrimSpace(c.Args().First())
	if v == "" {
		return "", fmt.Errorf("%s required", name)
	}
	return v, nil
}
