package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/seedvault/internal/flagx"
	"github.com/dmitrijs2005/seedvault/internal/timex"
)

// JsonConfig is the on-disk shape of the client config file.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	KeystorePath       string         `json:"keystore_path"`
	BookPath           *string        `json:"book_path"`
	ProgramID          string         `json:"program_id"`
	RequestTTL         timex.Duration `json:"request_ttl"`
	Retries            *uint64        `json:"retries"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.KeystorePath != "" {
		cfg.KeystorePath = jc.KeystorePath
	}
	if jc.BookPath != nil {
		cfg.BookPath = *jc.BookPath
	}
	if jc.ProgramID != "" {
		cfg.ProgramID = jc.ProgramID
	}
	if jc.RequestTTL.Duration != 0 {
		cfg.RequestTTL = jc.RequestTTL.Duration
	}
	if jc.Retries != nil {
		cfg.Retries = *jc.Retries
	}
	return nil
}
