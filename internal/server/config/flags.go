package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/seedvault/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
// Supported flags:
//
//	-a string    gRPC bind address (e.g. ":50051")
//	-m string    metrics bind address, "" to disable
//	-s string    storage backend: memory, postgres, bolt
//	-d string    PostgreSQL DSN
//	-f string    bbolt file path
//	-x uint      retries of serialization failures (postgres)
//	-p string    program id
//	-l uint      lamports per signature
//	-t duration  request max age
//	-q uint      airdrop limit, 0 to disable
//	-r int       replay cache size
//	-i duration  snapshot interval, 0 to disable
//	-u string    S3 root user
//	-w string    S3 root password
//	-b string    S3 bucket
//	-g string    S3 region
//	-e string    S3 base endpoint
//	-v string    log level
//
// Arguments that are not listed above are ignored, so -c/-config can share
// the command line.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.EndpointAddrMetrics, "m", config.EndpointAddrMetrics, "metrics address")
	fs.StringVar(&config.StorageBackend, "s", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BoltPath, "f", config.BoltPath, "bolt file path")
	fs.Uint64Var(&config.TxRetries, "x", config.TxRetries, "transaction retries")
	fs.StringVar(&config.ProgramID, "p", config.ProgramID, "program id")
	fs.Uint64Var(&config.LamportsPerSignature, "l", config.LamportsPerSignature, "lamports per signature")
	fs.DurationVar(&config.RequestMaxAge, "t", config.RequestMaxAge, "request max age")
	fs.Uint64Var(&config.AirdropLimit, "q", config.AirdropLimit, "airdrop limit")
	fs.IntVar(&config.ReplayCacheSize, "r", config.ReplayCacheSize, "replay cache size")
	fs.DurationVar(&config.SnapshotInterval, "i", config.SnapshotInterval, "snapshot interval")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "w", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	return flagx.ParseOwn(fs, args)
}
