// Package auth builds and checks signed instruction envelopes.
//
// An envelope is a compact JWS signed with the depositor's own ed25519 key.
// The subject claim carries that public key, so verification needs no key
// registry: a token that verifies against its own subject was produced by the
// holder of that key. The audience pins the token to one program.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/keys"
)

// Claims is the JWT payload of an envelope. Amount is a decimal string so
// the full u64 range survives JSON.
type Claims struct {
	jwt.RegisteredClaims
	Instruction string `json:"ins"`
	Seed        string `json:"seed"`
	Vault       string `json:"vault"`
	Bump        *uint8 `json:"bump,omitempty"`
	Amount      string `json:"amount,omitempty"`
}

// Request is the decoded content of an envelope.
type Request struct {
	ID        string
	Op        string
	Signer    keys.PublicKey
	ExtraSeed keys.PublicKey
	Vault     keys.PublicKey
	Bump      *uint8
	Amount    uint64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Sign wraps req into an envelope signed by kp for programID. The signer,
// id and timestamps are filled in here; ttl must be positive.
func Sign(kp *keys.Keypair, programID keys.PublicKey, req Request, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("envelope ttl must be positive")
	}
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   kp.Public.String(),
			Audience:  jwt.ClaimStrings{programID.String()},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Instruction: req.Op,
		Seed:        req.ExtraSeed.String(),
		Vault:       req.Vault.String(),
		Bump:        req.Bump,
	}
	if req.Amount > 0 {
		claims.Amount = strconv.FormatUint(req.Amount, 10)
	}

	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(kp.Private)
}

// Verifier checks envelopes addressed to one program.
type Verifier struct {
	programID keys.PublicKey
	maxAge    time.Duration
	now       func() time.Time
}

func NewVerifier(programID keys.PublicKey, maxAge time.Duration) *Verifier {
	return &Verifier{programID: programID, maxAge: maxAge, now: time.Now}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidToken, fmt.Sprintf(format, args...))
}

func signerKey(t *jwt.Token) (any, error) {
	sub, err := t.Claims.GetSubject()
	if err != nil {
		return nil, err
	}
	k, err := keys.Parse(sub)
	if err != nil {
		return nil, err
	}
	if !k.IsOnCurve() {
		return nil, errors.New("subject is not an ed25519 key")
	}
	return k.Ed25519(), nil
}

// Verify checks signature, audience, expiry and lifetime, then decodes the
// request. Every failure wraps common.ErrInvalidToken.
func (v *Verifier) Verify(token string) (*Request, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, signerKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(v.programID.String()),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, invalid("%v", err)
	}

	if claims.ID == "" {
		return nil, invalid("missing jti")
	}
	if claims.IssuedAt == nil {
		return nil, invalid("missing iat")
	}
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if v.maxAge > 0 && lifetime > v.maxAge {
		return nil, invalid("lifetime %s exceeds %s", lifetime, v.maxAge)
	}

	req := &Request{
		ID:        claims.ID,
		Op:        claims.Instruction,
		Bump:      claims.Bump,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if req.Signer, err = keys.Parse(claims.Subject); err != nil {
		return nil, invalid("sub: %v", err)
	}
	if req.ExtraSeed, err = keys.Parse(claims.Seed); err != nil {
		return nil, invalid("seed: %v", err)
	}
	if req.Vault, err = keys.Parse(claims.Vault); err != nil {
		return nil, invalid("vault: %v", err)
	}
	if claims.Amount != "" {
		if req.Amount, err = strconv.ParseUint(claims.Amount, 10, 64); err != nil {
			return nil, invalid("amount: %v", err)
		}
	}
	return req, nil
}
