package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainManifest = "scenekit/manifest/v1"
	DomainState    = "scenekit/state/v1"
	DomainNode     = "scenekit/node/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ManifestHash computes the content-addressed identity of a manifest.
// Two manifests with the same canonical JSON share a hash regardless of
// key order or formatting in their source files.
func ManifestHash(m *Manifest) (string, error) {
	canonical, err := MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("ManifestHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainManifest, canonical), nil
}

// StateHash computes a hash over the comparable fields of a router state:
// path, matched route pattern, scene id, params and query.
func StateHash(s RouterState) (string, error) {
	return ComparableHash(s.Comparable())
}

// ComparableHash hashes a state already reduced to its comparable map, such
// as a journal row. It agrees with StateHash for the same fields.
func ComparableHash(c map[string]any) (string, error) {
	canonical, err := MarshalCanonical(c)
	if err != nil {
		return "", fmt.Errorf("StateHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// NodeHash computes a structural hash of a node subtree.
func NodeHash(n *Node) (string, error) {
	canonical, err := MarshalCanonical(n)
	if err != nil {
		return "", fmt.Errorf("NodeHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainNode, canonical), nil
}

// MustManifestHash is like ManifestHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustManifestHash(m *Manifest) string {
	h, err := ManifestHash(m)
	if err != nil {
		panic(err)
	}
	return h
}
