// Package vaults is the wallet's local book of vaults it has opened.
//
// The on-chain state is authoritative. The book only remembers the extra
// seed behind each deposit so the vault can be found and withdrawn later;
// a lost book never loses funds as long as the seed was kept elsewhere.
package vaults
