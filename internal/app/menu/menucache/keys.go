package menucache

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// Shape prefixes. Every cached representation of menu data lives under one
// of these, so a mutation can clear a whole shape with one pattern delete.
const (
	prefixTree   = "arbor:menu:tree"
	prefixList   = "arbor:menu:list"
	prefixItem   = "arbor:menu:item"
	prefixUser   = "arbor:menu:user"
	prefixSearch = "arbor:menu:search"
	prefixStats  = "arbor:menu:stats"
	prefixPath   = "arbor:menu:path"
)

// broadPrefixes are the shapes cleared unconditionally after any mutation: a
// structural change can move ancestor paths, sibling order or visibility for
// nodes the mutation never touched, so per-key invalidation cannot be
// trusted for them.
var broadPrefixes = []string{
	prefixTree, prefixList, prefixUser, prefixSearch, prefixStats, prefixPath,
}

// Key bounds: beyond these the parameter tuple is hashed so keys stay short
// and deterministic.
const (
	maxKeyParams = 4
	maxKeyLen    = 96
)

// buildKey composes a deterministic cache key from the shape prefix and the
// ordered, stringified parameters.
func buildKey(prefix string, params ...string) string {
	if len(params) == 0 {
		return prefix
	}
	joined := strings.Join(params, ":")
	if len(params) > maxKeyParams || len(prefix)+1+len(joined) > maxKeyLen {
		sum := sha1.Sum([]byte(joined))
		return prefix + ":" + hex.EncodeToString(sum[:8])
	}
	return prefix + ":" + joined
}
