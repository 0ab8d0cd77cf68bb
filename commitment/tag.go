// Package commitment implements the tagged-hash commit-encoding protocol
// shared by every RGB consensus type: commit_id(x) = TaggedHash(tag, commit_encode(x)).
package commitment

import "crypto/sha256"

// TaggedHash computes the BIP340-style tagged hash used for every commit_id
// in the core: SHA256(SHA256(tag) || SHA256(tag) || msg). Two implementations
// that disagree on a single byte of tag or msg produce different ids.
func TaggedHash(tag string, msg []byte) [32]byte {
	tagHash := sha256.Sum256([]byte(tag))
	h := sha256.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	h.Write(msg)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Id32 is the common representation for every 32-byte tagged-hash identifier
// (OpId, ContractId, SchemaId, AnchorId, BundleId, ...).
type Id32 [32]byte

func (id Id32) Bytes() [32]byte { return [32]byte(id) }

func (id Id32) IsZero() bool { return id == Id32{} }
