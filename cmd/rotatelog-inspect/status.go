package main

import (
	"context"
	"fmt"

	"github.com/Data-Corruption/rotatelog/xlog/rlog"
	"github.com/urfave/cli/v3"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "report size and lock state of a log path",
		ArgsUsage: "<path>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("missing required <path> argument", 2)
			}
			st, err := rlog.Inspect(path)
			if err != nil {
				return err
			}
			fmt.Println(st)
			return nil
		},
	}
}
