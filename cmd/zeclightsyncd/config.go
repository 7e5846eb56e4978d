package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDataDir    = "data"
	defaultLogFilename = "zeclightsyncd.log"
	defaultMaxLogRolls = 3
)

// config holds every daemon-level flag, pared to what a single sync
// session needs.
type config struct {
	DaemonURI string `long:"rpcconnect" description:"host:port of the light-wallet daemon to sync against" required:"true"`
	DataDir   string `long:"datadir" description:"directory holding the wallet data file and log file"`

	Continually      bool   `long:"continually" description:"keep running and watching the mempool after catching up, instead of exiting"`
	MinConfirmations uint32 `long:"minconf" description:"minimum confirmations a transaction needs to count toward the wallet summary" default:"1"`

	DebugLevel string `long:"debuglevel" description:"logging level for all subsystems" default:"info"`
}

func loadConfig() (*config, error) {
	cfg := config{
		DataDir: defaultDataDir,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return &cfg, nil
}

func (c *config) walletDataFile() string {
	return filepath.Join(c.DataDir, "wallet.db")
}

func (c *config) logFile() string {
	return filepath.Join(c.DataDir, defaultLogFilename)
}
