package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// ResolveKeyOpts identifies one resolve request.
type ResolveKeyOpts struct {
	Metadata   map[string]any `json:"metadata"`
	Style      string         `json:"style,omitempty"`
	Units      string         `json:"units,omitempty"`
	Layer      string         `json:"layer,omitempty"`
	NoFallback bool           `json:"no_fallback,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ResolveKey returns the key of a resolved result. catalog and schema are
	// content hashes of the loaded catalog and defaults schema.
	ResolveKey(catalog, schema string, opts ResolveKeyOpts) string
}

// DefaultKeyer hashes every key component with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResolveKey implements [Keyer]. Metadata maps are marshalled with sorted
// keys, so equal requests give equal keys.
func (DefaultKeyer) ResolveKey(catalog, schema string, opts ResolveKeyOpts) string {
	return digestKey("resolve", catalog, schema, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, so several deployments
// can share one Redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A missing trailing ":" is
// added. A nil inner keyer means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResolveKey implements [Keyer].
func (k *ScopedKeyer) ResolveKey(catalog, schema string, opts ResolveKeyOpts) string {
	return k.prefix + k.inner.ResolveKey(catalog, schema, opts)
}

// digestKey returns kind followed by the SHA-256 of the JSON encoding of
// parts. encoding/json writes map keys sorted, so metadata maps with equal
// contents give equal keys. Values JSON cannot encode (NaN, channels) are
// hashed from their fmt rendering, which also sorts map keys, so distinct
// requests never collapse onto one key.
func digestKey(kind string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", parts))
	}
	return kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
