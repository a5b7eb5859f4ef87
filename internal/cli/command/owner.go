package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/easytv/smclient-go/pkg/smclient"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Log in as a content owner",
		ArgsUsage: "[USERNAME]",
		Action:    loginAction,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "End the content owner session",
		Action: logoutAction,
	}
}

// OwnerCommand returns the content owner subcommand group.
func OwnerCommand() *cli.Command {
	return &cli.Command{
		Name:  "owner",
		Usage: "Content owner operations (session authenticated)",
		Subcommands: []*cli.Command{
			{
				Name:   "ping",
				Usage:  "Check that the session is valid",
				Action: ownerPing,
			},
			{
				Name:  "password",
				Usage: "Change the account password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "old", Usage: "Current password"},
					&cli.StringFlag{Name: "new", Usage: "New password"},
					&cli.StringFlag{Name: "confirm", Usage: "New password again (prompted when omitted on a terminal)"},
				},
				Action: ownerPassword,
			},
			{
				Name:  "services",
				Usage: "Browse published services",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List services",
						Action: ownerServicesList,
					},
					{
						Name:      "get",
						Usage:     "Show a service",
						ArgsUsage: "SERVICE_ID",
						Action:    ownerServicesGet,
					},
				},
			},
			{
				Name:  "jobs",
				Usage: "Manage jobs",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List jobs, newest first",
						Flags:  listFlags(),
						Action: ownerJobsList,
					},
					{
						Name:      "get",
						Usage:     "Show a job",
						ArgsUsage: "JOB_ID",
						Action:    ownerJobsGet,
					},
					{
						Name:  "post",
						Usage: "Submit a job",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "publication-date",
								Usage:    "Publication date of the content",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "expiration-date",
								Usage:    "Expiration date of the content",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "tasks",
								Usage:    "Task list as JSON, @FILE or @- for stdin",
								Required: true,
							},
						},
						Action: ownerJobsPost,
					},
					{
						Name:      "cancel",
						Usage:     "Cancel a job",
						ArgsUsage: "JOB_ID",
						Action:    ownerJobsCancel,
					},
				},
			},
		},
	}
}

// listFlags are the paging flags of the job listings.
func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Value:   smclient.DefaultJobsLimit,
			Usage:   "Page size",
		},
		&cli.BoolFlag{
			Name:  "no-limit",
			Usage: "Omit the page size and use the service default",
		},
		&cli.StringFlag{
			Name:  "before",
			Usage: "Only jobs older than this job ID",
		},
	}
}

func listOptions(c *cli.Context) []smclient.ListOption {
	var opts []smclient.ListOption
	if c.Bool("no-limit") {
		opts = append(opts, smclient.NoLimit())
	} else {
		opts = append(opts, smclient.Limit(c.Int("limit")))
	}
	if before := c.String("before"); before != "" {
		opts = append(opts, smclient.Before(before))
	}
	return opts
}

func loginAction(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	username := c.Args().First()
	if username == "" {
		username = rt.Config.Username
	}
	if username == "" {
		return fmt.Errorf("username required")
	}

	if err := rt.login(rt.context(c), username); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Logged in as %s\n", username)
	return nil
}

func logoutAction(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	if rt.Session == nil || !rt.Session.LoggedIn() {
		fmt.Fprintln(c.App.Writer, "Not logged in")
		return nil
	}

	if _, err := rt.Session.Logout(rt.context(c)); err != nil {
		return fmt.Errorf("logout request failed, local session cleared: %w", err)
	}
	rt.user = ""
	fmt.Fprintln(c.App.Writer, "Logged out")
	return nil
}

func ownerPing(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	ctx := rt.context(c)

	client, err := rt.owner(ctx)
	if err != nil {
		return err
	}
	resp, err := client.Ping(ctx)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func ownerPassword(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	oldPassword := c.String("old")
	if oldPassword == "" {
		if oldPassword, err = rt.prompt("Current password: ", "current password required: set --old"); err != nil {
			return err
		}
	}
	newPassword := c.String("new")
	if newPassword == "" {
		if newPassword, err = rt.prompt("New password: ", "new password required: set --new and --confirm"); err != nil {
			return err
		}
	}
	confirm := c.String("confirm")
	if !c.IsSet("confirm") {
		if confirm, err = rt.prompt("Confirm new password: ", "confirmation required: set --confirm"); err != nil {
			return err
		}
	}

	ctx := rt.context(c)
	client, err := rt.owner(ctx)
	if err != nil {
		return err
	}
	if _, err := client.ChangePassword(ctx, oldPassword, newPassword, confirm); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Password changed")
	return nil
}

func ownerServicesList(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	ctx := rt.context(c)

	client, err := rt.owner(ctx)
	if err != nil {
		return err
	}
	resp, err := client.GetServices(ctx)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func ownerServicesGet(c *cli.Context) error {
	serviceID, err := requireArg(c, "service ID")
	if err != nil {
		return err
	}
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	ctx := rt.context(c)

	client, err := rt.owner(ctx)
	if err != nil {
		return err
	}
	resp, err := client.GetService(ctx, serviceID)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func ownerJobsList(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	ctx := rt.context(c)

	client, err := rt.owner(ctx)
	if err != nil {
		return err
	}
	resp, err := client.GetJobs(ctx, listOptions(c)...)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func ownerJobsGet(c *cli.Context) error {
	jobID, err := requireArg(c, "job ID")
	if err != nil {
		return err
	}
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	ctx := rt.context(c)

	client, err := rt.owner(ctx)
	if err != nil {
		return err
	}
	resp, err := client.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func ownerJobsPost(c *cli.Context) error {
	tasks, err := readJSON(c, c.String("tasks"))
	if err != nil {
		return fmt.Errorf("--tasks: %w", err)
	}
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	ctx := rt.context(c)

	client, err := rt.owner(ctx)
	if err != nil {
		return err
	}
	resp, err := client.PostJob(ctx, c.String("publication-date"), c.String("expiration-date"), tasks)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func ownerJobsCancel(c *cli.Context) error {
	jobID, err := requireArg(c, "job ID")
	if err != nil {
		return err
	}
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	ctx := rt.context(c)

	client, err := rt.owner(ctx)
	if err != nil {
		return err
	}
	resp, err := client.CancelJob(ctx, jobID)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}
