package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/easytv/smclient-go/internal/cli/output"
	"github.com/easytv/smclient-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			rt, err := getRuntime(c)
			if err != nil {
				return err
			}
			format, err := rt.format(c)
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				_, err := fmt.Fprintln(c.App.Writer, buildinfo.String())
				return err
			}
			return rt.print(c, buildinfo.Get())
		},
	}
}
