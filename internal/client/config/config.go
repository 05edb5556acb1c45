package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/vault"
)

// Config holds runtime settings for the wallet CLI.
type Config struct {
	ServerEndpointAddr string
	KeystorePath       string
	BookPath           string
	ProgramID          string
	RequestTTL         time.Duration
	Retries            uint64
}

// LoadDefaults populates c with sensible defaults. The keystore lives in
// the user's home directory when one can be found, next to the vault book.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	dir := "."
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".seedvault")
	}
	c.KeystorePath = filepath.Join(dir, "id.json")
	c.BookPath = filepath.Join(dir, "book.db")
	c.ProgramID = vault.DefaultProgramID.String()
	c.RequestTTL = 30 * time.Second
	c.Retries = 3
}

func (c *Config) Validate() error {
	if c.ServerEndpointAddr == "" {
		return errors.New("server address is empty")
	}
	if c.KeystorePath == "" {
		return errors.New("keystore path is empty")
	}
	if _, err := keys.Parse(c.ProgramID); err != nil {
		return fmt.Errorf("program id: %w", err)
	}
	if c.RequestTTL <= 0 {
		return errors.New("request ttl must be positive")
	}
	return nil
}

// Program returns the parsed program id. Call Validate first.
func (c *Config) Program() keys.PublicKey {
	id, err := keys.Parse(c.ProgramID)
	if err != nil {
		return vault.DefaultProgramID
	}
	return id
}

// LoadConfig applies defaults, then JSON (if present), then flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
