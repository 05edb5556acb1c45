// Package config loads runtime configuration for the seedvault wallet CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string    address:port of the ledger gRPC endpoint
//	-k string    keystore file
//	-b string    local vault book (SQLite), empty to disable
//	-p string    program id the envelopes are addressed to
//	-t duration  lifetime of signed envelopes
//	-r uint      retries while the server is unavailable
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "keystore_path": "~/.seedvault/id.json",
//	  "book_path": "~/.seedvault/book.db",
//	  "program_id": "Dhmc6b1boQ6WSgnNojLRnLSu8atQnV3RsJWP1B1E733E",
//	  "request_ttl": "30s",
//	  "retries": 3
//	}
package config
