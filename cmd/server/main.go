// Command server runs the seedvault ledger: the vault program behind a
// gRPC endpoint, with Prometheus metrics and optional S3 snapshots.
package main

import (
	"os"

	"github.com/dmitrijs2005/seedvault/internal/server"
)

func main() {
	os.Exit(server.Main())
}
