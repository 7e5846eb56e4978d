package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/decred/zeclightsync/syncengine"
)

var syncCommand = cli.Command{
	Name:      "sync",
	Usage:     "run one sync session against a light-wallet daemon",
	ArgsUsage: "daemon-uri",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "continually",
			Usage: "keep watching the mempool after catching up",
		},
	},
	Action: runSync,
}

func runSync(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		return cli.ShowCommandHelp(ctx, "sync")
	}

	engine := syncengine.New(syncengine.Config{
		DaemonURI:               args.Get(0),
		WalletDataFile:          walletDataFile(ctx),
		Continually:             ctx.Bool("continually"),
		ParseTransaction:        unconfiguredTransactionParser,
		ParseTransparentOutputs: unconfiguredTransparentOutputParser,
		AddressFromDiversifier:  unconfiguredAddressFromDiversifier,
	})

	status, err := engine.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("tip=%d last_fully_scanned=%v steps=%d/%d\n",
		status.TipHeight, status.LastFullyScannedBlock, status.CurrentStep, status.TotalSteps)
	return nil
}
