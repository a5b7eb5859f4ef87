package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/easytv/smclient-go/internal/cli/output"
	"github.com/easytv/smclient-go/pkg/smclient"
)

// BackendCommand returns the backend service subcommand group.
func BackendCommand() *cli.Command {
	return &cli.Command{
		Name:    "backend",
		Aliases: []string{"be"},
		Usage:   "Backend service operations (API key authenticated)",
		Subcommands: []*cli.Command{
			{
				Name:  "tasks",
				Usage: "Manage the tasks this service offers",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List registered tasks",
						Action: backendTasksList,
					},
					{
						Name:  "register",
						Usage: "Register a task",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Usage: "Task name", Required: true},
							&cli.StringFlag{Name: "description", Usage: "Task description"},
							&cli.StringFlag{Name: "start-url", Usage: "URL called to start the task", Required: true},
							&cli.StringFlag{Name: "cancel-url", Usage: "URL called to cancel the task"},
							&cli.BoolFlag{Name: "rest-cancel", Usage: "Send --cancel-url as a REST cancel endpoint"},
							&cli.StringFlag{Name: "input", Usage: "Input schema as JSON, @FILE or @-", Value: "null"},
							&cli.StringFlag{Name: "result", Usage: "Output schema as JSON, @FILE or @-", Value: "null"},
						},
						Action: backendTasksRegister,
					},
					{
						Name:      "delete",
						Usage:     "Delete a task",
						ArgsUsage: "TASK_ID",
						Action:    backendTasksDelete,
					},
					{
						Name:      "enable",
						Usage:     "Make a task available",
						ArgsUsage: "TASK_ID",
						Action:    backendTasksAvailability(true),
					},
					{
						Name:      "disable",
						Usage:     "Make a task unavailable",
						ArgsUsage: "TASK_ID",
						Action:    backendTasksAvailability(false),
					},
				},
			},
			{
				Name:  "jobs",
				Usage: "Work on jobs assigned to this service",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List assigned jobs",
						Flags:  listFlags(),
						Action: backendJobsList,
					},
					{
						Name:      "get",
						Usage:     "Show a job (numeric ID)",
						ArgsUsage: "JOB_ID",
						Action:    backendJobsGet,
					},
					{
						Name:      "status",
						Usage:     "Report job progress",
						ArgsUsage: "JOB_ID STATUS",
						Action:    backendJobsStatus,
					},
					{
						Name:      "cancel",
						Usage:     "Cancel a job",
						ArgsUsage: "JOB_ID",
						Action:    backendJobsCancel,
					},
					{
						Name:      "assets",
						Usage:     "List the assets of a job",
						ArgsUsage: "JOB_ID",
						Action:    backendJobsAssets,
					},
					{
						Name:      "upload",
						Usage:     "Upload an asset for a job",
						ArgsUsage: "JOB_ID FILE",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Usage: "File name sent to the service (default: base name of FILE)"},
							&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Hide the progress bar"},
						},
						Action: backendJobsUpload,
					},
					{
						Name:      "finish",
						Usage:     "Complete a job with its output",
						ArgsUsage: "JOB_ID",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "result",
								Usage:    "Job output as JSON, @FILE or @-",
								Required: true,
							},
						},
						Action: backendJobsFinish,
					},
				},
			},
		},
	}
}

func backendTasksList(c *cli.Context) error {
	rt, client, err := backendClient(c)
	if err != nil {
		return err
	}
	resp, err := client.GetTasks(rt.context(c))
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func backendTasksRegister(c *cli.Context) error {
	input, err := readJSON(c, c.String("input"))
	if err != nil {
		return fmt.Errorf("--input: %w", err)
	}
	result, err := readJSON(c, c.String("result"))
	if err != nil {
		return fmt.Errorf("--result: %w", err)
	}

	rt, client, err := backendClient(c)
	if err != nil {
		return err
	}
	resp, err := client.RegisterTask(rt.context(c), smclient.TaskRegistration{
		Name:          c.String("name"),
		Description:   c.String("description"),
		StartURL:      c.String("start-url"),
		CancelURL:     c.String("cancel-url"),
		UseRESTCancel: c.Bool("rest-cancel"),
		Input:         input,
		Output:        result,
	})
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func backendTasksDelete(c *cli.Context) error {
	taskID, err := requireArg(c, "task ID")
	if err != nil {
		return err
	}
	rt, client, err := backendClient(c)
	if err != nil {
		return err
	}
	resp, err := client.DeleteTask(rt.context(c), taskID)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func backendTasksAvailability(available bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		taskID, err := requireArg(c, "task ID")
		if err != nil {
			return err
		}
		rt, client, err := backendClient(c)
		if err != nil {
			return err
		}
		resp, err := client.SetTaskAvailability(rt.context(c), taskID, available)
		if err != nil {
			return err
		}
		return rt.printResponse(c, resp)
	}
}

func backendJobsList(c *cli.Context) error {
	rt, client, err := backendClient(c)
	if err != nil {
		return err
	}
	resp, err := client.GetJobs(rt.context(c), listOptions(c)...)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func backendJobsGet(c *cli.Context) error {
	jobID, err := requireArg(c, "job ID")
	if err != nil {
		return err
	}
	rt, client, err := backendClient(c)
	if err != nil {
		return err
	}
	resp, err := client.GetJob(rt.context(c), jobID)
	if err != nil {
		return err
	}
	if resp == nil {
		return fmt.Errorf("invalid job ID %q: must be a number", jobID)
	}
	return rt.printResponse(c, resp)
}

func backendJobsStatus(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("job ID and status required")
	}
	rt, client, err := backendClient(c)
	if err != nil {
		return err
	}
	resp, err := client.SetStatus(rt.context(c), c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func backendJobsCancel(c *cli.Context) error {
	jobID, err := requireArg(c, "job ID")
	if err != nil {
		return err
	}
	rt, client, err := backendClient(c)
	if err != nil {
		return err
	}
	resp, err := client.CancelJob(rt.context(c), jobID)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func backendJobsAssets(c *cli.Context) error {
	jobID, err := requireArg(c, "job ID")
	if err != nil {
		return err
	}
	rt, client, err := backendClient(c)
	if err != nil {
		return err
	}
	resp, err := client.GetAssets(rt.context(c), jobID)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func backendJobsUpload(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("job ID and file required")
	}
	jobID, path := c.Args().Get(0), c.Args().Get(1)

	rt, client, err := backendClient(c)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	name := c.String("name")
	if name == "" {
		name = filepath.Base(path)
	}

	var reader io.Reader = f
	var bar *output.ProgressBar
	if !c.Bool("quiet") {
		bar = output.NewProgressBar(c.App.ErrWriter, name, info.Size())
		reader = bar.Reader(f)
	}

	resp, err := client.UploadAsset(rt.context(c), reader, name, jobID)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func backendJobsFinish(c *cli.Context) error {
	jobID, err := requireArg(c, "job ID")
	if err != nil {
		return err
	}
	result, err := readJSON(c, c.String("result"))
	if err != nil {
		return fmt.Errorf("--result: %w", err)
	}
	rt, client, err := backendClient(c)
	if err != nil {
		return err
	}
	resp, err := client.FinishJob(rt.context(c), jobID, result)
	if err != nil {
		return err
	}
	return rt.printResponse(c, resp)
}

func backendClient(c *cli.Context) (*Runtime, *smclient.KeyClient, error) {
	rt, err := getRuntime(c)
	if err != nil {
		return nil, nil, err
	}
	client, err := rt.backend()
	if err != nil {
		return nil, nil, err
	}
	return rt, client, nil
}
