package main

import (
	"fmt"

	"github.com/decred/zeclightsync/syncengine"
	"github.com/decred/zeclightsync/txmaterializer"
	"github.com/decred/zeclightsync/walletstore"
)

// These stand in for the consensus-aware transaction decoder and
// key-derivation library this CLI does not itself depend on -- see the
// equivalent seam in cmd/zeclightsyncd.

func unconfiguredTransactionParser(raw []byte, branchID uint32) (*syncengine.ParsedTransaction, error) {
	return nil, fmt.Errorf("zeclightsyncd-cli: no transaction parser configured")
}

func unconfiguredTransparentOutputParser(raw []byte) ([]syncengine.TransparentOutput, error) {
	return nil, fmt.Errorf("zeclightsyncd-cli: no transparent output parser configured")
}

func unconfiguredAddressFromDiversifier(ufvk walletstore.UnifiedFullViewingKey, pool txmaterializer.OutputPool, diversifier []byte) (string, bool) {
	return "", false
}
