package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"sieve.dev/pkg/sieve/internal/adapter"
)

// Fingerprint identifies the normalized structure of a test function.
type Fingerprint string

// Fingerprinter turns code into a Fingerprint.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, code string) (Fingerprint, error)
}

type duplicateDetector struct {
	codeAdapter adapter.CodeAdapter
}

// NewDuplicateDetector fingerprints code with the language normalization of
// codeAdapter, so whitespace, indentation and comment variants collide.
func NewDuplicateDetector(codeAdapter adapter.CodeAdapter) Fingerprinter {
	return &duplicateDetector{codeAdapter: codeAdapter}
}

func (d *duplicateDetector) Fingerprint(ctx context.Context, code string) (Fingerprint, error) {
	normalized, err := d.codeAdapter.Normalize(ctx, adapter.NormalizeText(code))
	if err != nil {
		return "", fmt.Errorf("normalize candidate: %w", err)
	}

	sum := sha256.Sum256([]byte(normalized))

	return Fingerprint(hex.EncodeToString(sum[:])), nil
}

// FingerprintSet holds the fingerprints of the survivors of one session. It
// only grows.
type FingerprintSet struct {
	mu   sync.Mutex
	seen map[Fingerprint]struct{}
}

// NewFingerprintSet returns an empty set.
func NewFingerprintSet() *FingerprintSet {
	return &FingerprintSet{seen: make(map[Fingerprint]struct{})}
}

// IsSeen reports whether fp is in the set.
func (s *FingerprintSet) IsSeen(fp Fingerprint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.seen[fp]

	return ok
}

// MarkSeen inserts fp.
func (s *FingerprintSet) MarkSeen(fp Fingerprint) {
	s.Claim(fp)
}

// Claim inserts fp and reports whether it was absent. Of several concurrent
// claims for the same fingerprint exactly one wins.
func (s *FingerprintSet) Claim(fp Fingerprint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[fp]; ok {
		return false
	}

	s.seen[fp] = struct{}{}

	return true
}

// Len returns the number of fingerprints.
func (s *FingerprintSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.seen)
}
