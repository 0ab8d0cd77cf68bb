// Package rgbcrypto provides the narrow, injectable hashing abstraction used
// throughout the consensus core, in place of every package reaching for a
// concrete hash library directly.
package rgbcrypto

import (
	"crypto/sha256"

	"github.com/zeebo/blake3"
)

// Provider is the injectable hash surface consensus code depends on,
// narrowed to exactly the primitives the commitment and operation layers
// need: SHA-256 for tagged commitments, BLAKE3 for large off-band
// attachment blobs that are too big to commit to directly.
type Provider interface {
	SHA256(input []byte) [32]byte
	Blake3_256(input []byte) [32]byte
}

// StdProvider is the default Provider backed by crypto/sha256 and
// github.com/zeebo/blake3. There is no "dev" vs "production" split here:
// RGB's core never verifies signatures itself (that belongs to the
// Bitcoin witness layer the single-use seal points at), so there is no
// FIPS-sensitive verification path to stub out.
type StdProvider struct{}

func (StdProvider) SHA256(input []byte) [32]byte {
	return sha256.Sum256(input)
}

func (StdProvider) Blake3_256(input []byte) [32]byte {
	h := blake3.Sum256(input)
	return h
}

// Default is the package-wide StdProvider instance; callers that don't need
// to inject a fake for testing can use this directly.
var Default Provider = StdProvider{}
