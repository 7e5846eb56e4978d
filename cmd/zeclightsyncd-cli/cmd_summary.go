package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/decred/zeclightsync/txmaterializer"
	"github.com/decred/zeclightsync/walletstore"
)

var summaryCommand = cli.Command{
	Name:  "summary",
	Usage: "print per-account balances and transaction history from the wallet data file",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "minconf",
			Value: 1,
			Usage: "minimum confirmations for a transaction to count toward a balance",
		},
	},
	Action: runSummary,
}

func runSummary(ctx *cli.Context) error {
	store, err := walletstore.Open(walletDataFile(ctx))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.GetWalletSummary(uint32(ctx.Int("minconf")))
	if err != nil {
		return err
	}

	for acct, bal := range summary.AccountBalances {
		fmt.Printf("account %d: transparent=%d sapling=%d orchard=%d\n",
			acct, bal.TransparentBalance, bal.SaplingBalance, bal.OrchardBalance)
	}

	ufvks, err := store.GetUnifiedFullViewingKeys()
	if err != nil {
		return err
	}

	txs, err := txmaterializer.BuildTransactionHistory(store.DB(), ufvks, unconfiguredAddressFromDiversifier, nil, nil)
	if err != nil {
		return err
	}

	for _, tx := range txs {
		fmt.Printf("%s mined=%v fee=%v delta=%d\n", tx.TxId, tx.MinedHeight, tx.Fee, tx.AccountBalanceDelta)
	}

	return nil
}
