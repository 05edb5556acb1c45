// Package client is the wallet's connection to the ledger server.
//
// GRPCClient speaks seedvault.v1.VaultService, retries calls while the
// server is unavailable, and maps status codes back to the sentinel errors
// in package common so callers can use errors.Is. A server that stays
// unreachable surfaces as ErrUnavailable.
package client
