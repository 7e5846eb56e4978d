// Command zeclightsyncd-cli is a small urfave/cli frontend over a
// wallet data file: it can drive a one-shot sync session, or print a
// summary and transaction history from the data already on disk.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "zeclightsyncd-cli"
	app.Usage = "drive or inspect a zeclightsyncd wallet data file"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "datadir",
			Value: "data",
			Usage: "directory holding the wallet data file",
		},
	}
	app.Commands = []cli.Command{
		syncCommand,
		summaryCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "zeclightsyncd-cli: %v\n", err)
		os.Exit(1)
	}
}

func walletDataFile(ctx *cli.Context) string {
	dataDir := ctx.GlobalString("datadir")
	if dataDir == "" {
		dataDir = "data"
	}
	return dataDir + "/wallet.db"
}
