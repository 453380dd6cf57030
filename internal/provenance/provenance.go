// Package provenance signs decisions into a hash-linked chain and verifies
// it. Every decision carries SHA-256(content), the predecessor's hash, and
// an Ed25519 signature over both, so tampering with any stored record is
// detectable by a deterministic audit walk.
package provenance

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"minds/internal/logging"
	"minds/internal/types"
)

// Chain holds the signing key. The key is exclusive to this component;
// every signature briefly takes the mutex.
type Chain struct {
	mu  sync.Mutex
	key ed25519.PrivateKey
}

// Init loads the Ed25519 key at keyPath, or generates and persists one with
// mode 0600. An existing key readable by group or world is rejected with
// ErrInsecureKey.
func Init(keyPath string) (*Chain, error) {
	info, err := os.Stat(keyPath)
	switch {
	case err == nil:
		if info.Mode().Perm()&0o077 != 0 {
			return nil, fmt.Errorf("%w: %s has mode %o", types.ErrInsecureKey, keyPath, info.Mode().Perm())
		}
		seed, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("read signing key: %w", err)
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("%w: signing key must be %d bytes, got %d",
				types.ErrInsecureKey, ed25519.SeedSize, len(seed))
		}
		logging.Provenance("signing key loaded from %s", keyPath)
		return &Chain{key: ed25519.NewKeyFromSeed(seed)}, nil

	case os.IsNotExist(err):
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(keyPath), 0o755); err != nil {
			return nil, fmt.Errorf("create key directory: %w", err)
		}
		if err := os.WriteFile(keyPath, priv.Seed(), 0o600); err != nil {
			return nil, fmt.Errorf("persist signing key: %w", err)
		}
		logging.Provenance("signing key generated at %s", keyPath)
		return &Chain{key: priv}, nil

	default:
		return nil, fmt.Errorf("stat signing key: %w", err)
	}
}

// PublicKeyHex returns the hex-encoded verifying key.
func (c *Chain) PublicKeyHex() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return hex.EncodeToString(c.key.Public().(ed25519.PublicKey))
}

// canonicalContent is the immutable subset of a decision that the content
// hash covers. Outcome fields and timestamps are deliberately absent: they
// mutate after signing.
type canonicalContent struct {
	Question  string           `json:"question"`
	Domain    string           `json:"domain"`
	Positions []types.Position `json:"positions"`
	Challenge types.Position   `json:"challenge"`
}

// Canonical serialises the immutable fields of a counsel deterministically.
func Canonical(question, domain string, positions []types.Position, challenge types.Position) ([]byte, error) {
	return json.Marshal(canonicalContent{
		Question:  question,
		Domain:    domain,
		Positions: positions,
		Challenge: challenge,
	})
}

// HashContent returns hex(SHA-256(content)).
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Sign produces the chain link for a content hash given the predecessor's
// hash (store.GenesisHash for the first record). The signature covers
// contentHash || previousHash as bytes.
func (c *Chain) Sign(contentHash, previousHash string) types.ProvenanceInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := []byte(contentHash + previousHash)
	sig := ed25519.Sign(c.key, msg)
	return types.ProvenanceInfo{
		ContentHash:  contentHash,
		PreviousHash: previousHash,
		Signature:    hex.EncodeToString(sig),
		AgentPubkey:  hex.EncodeToString(c.key.Public().(ed25519.PublicKey)),
	}
}

// VerifyLink checks one link's signature under its stored pubkey.
func VerifyLink(link types.ProvenanceInfo) error {
	pub, err := hex.DecodeString(link.AgentPubkey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: invalid agent pubkey", types.ErrProvenanceViolation)
	}
	sig, err := hex.DecodeString(link.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: invalid signature encoding", types.ErrProvenanceViolation)
	}
	msg := []byte(link.ContentHash + link.PreviousHash)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
		return fmt.Errorf("%w: signature does not verify", types.ErrProvenanceViolation)
	}
	return nil
}
