// Package hash computes content fingerprints of expression trees.
package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/chazu/nick/compiler"
)

// HashExpr computes the SHA-256 content hash of an expression tree.
//
// The hash covers a deterministic serialization of the tree's structure and
// literal bits. Source positions, whitespace, comments and the spelling of
// literals do not contribute, so `5` and "`101`" hash the same.
func HashExpr(e compiler.Expr) [32]byte {
	return sha256.Sum256(Serialize(e))
}

// HexHash returns HashExpr as a lowercase hex string.
func HexHash(e compiler.Expr) string {
	h := HashExpr(e)
	return hex.EncodeToString(h[:])
}
