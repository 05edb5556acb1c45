package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/seedvault/internal/flagx"
)

// parseFlags overlays the flags listed in the package doc onto cfg. Other
// arguments are ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.KeystorePath, "k", cfg.KeystorePath, "keystore file")
	fs.StringVar(&cfg.BookPath, "b", cfg.BookPath, "local vault book, empty to disable")
	fs.StringVar(&cfg.ProgramID, "p", cfg.ProgramID, "program id")
	fs.DurationVar(&cfg.RequestTTL, "t", cfg.RequestTTL, "signed request lifetime")
	fs.Uint64Var(&cfg.Retries, "r", cfg.Retries, "retries while the server is unavailable")

	return flagx.ParseOwn(fs, args)
}
