package main

import (
	"context"
	"fmt"

	"github.com/Data-Corruption/rotatelog/xlog/rlog"
	"github.com/urfave/cli/v3"
)

func backupsCommand() *cli.Command {
	return &cli.Command{
		Name:      "backups",
		Usage:     "list rotated backups next to a log path",
		ArgsUsage: "<path>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("missing required <path> argument", 2)
			}
			backups, err := rlog.ListBackups(path)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Println("no backups found")
				return nil
			}
			for _, b := range backups {
				fmt.Printf("%d\t%s\tgzip=%v\t%dB\n", b.Index, b.Path, b.Gzip, b.SizeBytes)
			}
			return nil
		},
	}
}
