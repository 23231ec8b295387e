package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// StableID derives a deterministic, collision-resistant identifier
// from an ordered field tuple. Identical parts always produce the
// identical ID; any single differing part changes it. Parts are
// length-prefixed before hashing so ("ab","c") and ("a","bc") cannot
// collide.
func StableID(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s;", len(p), p)
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}
