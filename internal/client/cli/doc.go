// Package cli provides the interactive seedvault wallet.
//
// The wallet keeps one ed25519 identity in an encrypted keystore. Once
// unlocked it signs deposit and withdraw envelopes locally and submits them
// to the ledger server; the private key never leaves the process.
//
// Commands:
//
//	help                        list commands
//	keygen                      create and encrypt a new identity
//	unlock                      decrypt the identity for this session
//	whoami                      print the wallet address
//	airdrop <lamports>          request devnet funds
//	derive <seed>               show the vault address for a seed
//	deposit <seed> <lamports>   open and fund a vault
//	withdraw <seed>             drain and close a vault
//	balance [address]           show an account balance
//	vaults                      list vaults recorded in the local book
//	exit | quit                 leave
//
// <seed> is any base58 public key, or "new" for a random one.
package cli
