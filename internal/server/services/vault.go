// Package services holds the request-level logic between the gRPC handlers
// and the ledger. VaultService turns signed envelopes into ledger
// instructions, refusing anything forged, stale or already seen.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/dmitrijs2005/seedvault/internal/auth"
	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/logging"
	"github.com/dmitrijs2005/seedvault/internal/server/ledger"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
	"github.com/dmitrijs2005/seedvault/internal/vault"
)

// Ledger is the part of ledger.Runtime the service drives.
type Ledger interface {
	Execute(ctx context.Context, ins ledger.Instruction) (*ledger.Result, error)
	Airdrop(ctx context.Context, addr keys.PublicKey, lamports uint64) (*models.Account, error)
	Account(ctx context.Context, addr keys.PublicKey) (*models.Account, error)
	Deriver() vault.Deriver
}

// EnvelopeVerifier checks a signed envelope and decodes it.
type EnvelopeVerifier interface {
	Verify(token string) (*auth.Request, error)
}

type VaultService struct {
	ledger   Ledger
	verifier EnvelopeVerifier
	logger   logging.Logger

	// seen maps signer/jti to the envelope's expiry, oldest first.
	mu       sync.Mutex
	seen     *lru.Cache
	seenSize int
	now      func() time.Time
}

// NewVaultService remembers up to replayCacheSize envelope ids. An id is
// only dropped once its envelope has expired; while the cache is full of
// live ids new envelopes are refused with common.ErrReplayFull.
func NewVaultService(l Ledger, v EnvelopeVerifier, replayCacheSize int, logger logging.Logger) (*VaultService, error) {
	seen, err := lru.New(replayCacheSize)
	if err != nil {
		return nil, fmt.Errorf("replay cache: %w", err)
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &VaultService{
		ledger:   l,
		verifier: v,
		seen:     seen,
		seenSize: replayCacheSize,
		now:      time.Now,
		logger:   logger.With("module", "vault_service"),
	}, nil
}

// Submit verifies envelope, checks that it carries op, and executes it with
// the envelope's signer as depositor and fee payer. An envelope is spent
// once checked, whatever the outcome of the instruction.
func (s *VaultService) Submit(ctx context.Context, op ledger.Op, envelope string) (*ledger.Result, error) {
	req, err := s.verifier.Verify(envelope)
	if err != nil {
		s.logger.Debug(ctx, "envelope rejected", "error", err)
		return nil, err
	}
	if ledger.Op(req.Op) != op {
		return nil, fmt.Errorf("%w: envelope is for %q, called %q", common.ErrInvalidToken, req.Op, op)
	}

	if err := s.markSeen(req); err != nil {
		s.logger.Warn(ctx, "envelope refused", "signer", req.Signer.String(), "jti", req.ID, "error", err)
		return nil, err
	}

	return s.ledger.Execute(ctx, ledger.Instruction{
		Op:        op,
		Signers:   []keys.PublicKey{req.Signer},
		Depositor: req.Signer,
		ExtraSeed: req.ExtraSeed,
		Vault:     req.Vault,
		Bump:      req.Bump,
		Amount:    req.Amount,
	})
}

// markSeen records the envelope id. Ids are added once and never touched
// again, so the LRU order is arrival order. Room is made by dropping expired
// ids from the old end; an id that could still verify is never dropped.
func (s *VaultService) markSeen(req *auth.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := req.Signer.String() + "/" + req.ID
	if s.seen.Contains(key) {
		return fmt.Errorf("%w: %s", common.ErrReplayed, req.ID)
	}

	now := s.now()
	for s.seen.Len() >= s.seenSize {
		_, v, ok := s.seen.GetOldest()
		if !ok {
			break
		}
		if exp, _ := v.(time.Time); !now.After(exp) {
			return fmt.Errorf("%w: %d envelopes still valid", common.ErrReplayFull, s.seen.Len())
		}
		s.seen.RemoveOldest()
	}
	s.seen.Add(key, req.ExpiresAt)
	return nil
}

func (s *VaultService) Airdrop(ctx context.Context, addr keys.PublicKey, lamports uint64) (*models.Account, error) {
	return s.ledger.Airdrop(ctx, addr, lamports)
}

func (s *VaultService) Account(ctx context.Context, addr keys.PublicKey) (*models.Account, error) {
	return s.ledger.Account(ctx, addr)
}

// DeriveVault returns the vault address and canonical bump for a depositor
// and extra seed.
func (s *VaultService) DeriveVault(depositor, extraSeed keys.PublicKey) (keys.PublicKey, uint8, error) {
	return s.ledger.Deriver().Derive(depositor, extraSeed)
}
