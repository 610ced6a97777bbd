// rotatelog-inspect is a small diagnostic client for a log file managed
// by rlog.Handler. It reports the active file's size, the backup set found
// alongside it, and whether the cross-process lock sentinel is currently
// held by another process. It never writes to the log file or its
// backups; the status probe creates the lock sentinel if it is missing.
//
// Usage:
//
//	rotatelog-inspect status /var/log/app/app.log
//	rotatelog-inspect backups /var/log/app/app.log
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	os.Exit(run())
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:  "rotatelog-inspect",
		Usage: "inspect a rotating log file's on-disk state",
		Commands: []*cli.Command{
			statusCommand(),
			backupsCommand(),
		},
	}
}

func run() int {
	if err := createApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "rotatelog-inspect:", err)
		return 1
	}
	return 0
}
