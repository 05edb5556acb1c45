package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/seedvault/internal/flagx"
	"github.com/dmitrijs2005/seedvault/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration, so both "90s" and integer nanoseconds are accepted.
// Fields left out of the file keep their current value.
type JsonConfig struct {
	EndpointAddrGRPC     string         `json:"endpoint_addr_grpc"`
	EndpointAddrMetrics  string         `json:"endpoint_addr_metrics"`
	StorageBackend       string         `json:"storage_backend"`
	DatabaseDSN          string         `json:"database_dsn"`
	BoltPath             string         `json:"bolt_path"`
	TxRetries            *uint64        `json:"tx_retries"`
	ProgramID            string         `json:"program_id"`
	LamportsPerSignature *uint64        `json:"lamports_per_signature"`
	RequestMaxAge        timex.Duration `json:"request_max_age"`
	AirdropLimit         *uint64        `json:"airdrop_limit"`
	ReplayCacheSize      int            `json:"replay_cache_size"`
	SnapshotInterval     timex.Duration `json:"snapshot_interval"`
	S3RootUser           string         `json:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config, if any, onto config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrMetrics, c.EndpointAddrMetrics)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.BoltPath, c.BoltPath)
	setString(&config.ProgramID, c.ProgramID)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if c.TxRetries != nil {
		config.TxRetries = *c.TxRetries
	}
	if c.LamportsPerSignature != nil {
		config.LamportsPerSignature = *c.LamportsPerSignature
	}
	if c.AirdropLimit != nil {
		config.AirdropLimit = *c.AirdropLimit
	}
	if c.RequestMaxAge.Duration != 0 {
		config.RequestMaxAge = c.RequestMaxAge.Duration
	}
	if c.SnapshotInterval.Duration != 0 {
		config.SnapshotInterval = c.SnapshotInterval.Duration
	}
	if c.ReplayCacheSize != 0 {
		config.ReplayCacheSize = c.ReplayCacheSize
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
