package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ArtifactKeyOpts distinguishes artifacts rendered from the same graph.
type ArtifactKeyOpts struct {
	Format            string `json:"format"`
	Direction         string `json:"direction"`
	SubgraphDirection string `json:"subgraphDirection"`
	ShowConditions    bool   `json:"showConditions"`
	AutoLayout        bool   `json:"autoLayout"`
}

// Keyer derives cache keys for graphs and their render artifacts.
type Keyer interface {
	// GraphKey identifies a graph payload by content.
	GraphKey(payload []byte) string
	// ArtifactKey identifies one rendered artifact of a graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes payload bytes and render options into
// prefix:sha256 keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey returns graph:<sha256 of the payload bytes>.
func (k *DefaultKeyer) GraphKey(payload []byte) string {
	return fmt.Sprintf("graph:%s", Hash(payload))
}

// ArtifactKey returns artifact:<sha256 of graph hash + options>.
func (k *DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so deployments sharing one Redis
// instance keep separate namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every generated
// key. A nil inner falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(payload []byte) string {
	return k.prefix + k.inner.GraphKey(payload)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
