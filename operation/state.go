// Package operation implements the RGB operation graph: Genesis, Transition
// and Extension nodes, their assignments, global state, metadata, and
// commit-encoding.
package operation

import (
	"github.com/rgb-wg/rgb-core-go/commitment"
	"github.com/rgb-wg/rgb-core-go/rgbcrypto"
	"github.com/rgb-wg/rgb-core-go/seal"
)

// FieldKind tags which element width/count a VerifiableState array holds:
// u32/u64 fields always carry an explicit width rather than a generic
// big.Int, generalized to 1-4 element u32/u64/u128 arrays.
type FieldKind uint8

const (
	FieldU32 FieldKind = iota
	FieldU64
	FieldU128
)

// VerifiableState is a tagged, fixed-width array of 1-4 little-endian field
// elements — the state shape schema-declared VM procedures (NoInflationBySum
// etc.) read through a narrow, counted interface.
type VerifiableState struct {
	Kind FieldKind
	// Elements holds up to 4 field values; for FieldU128 each element holds
	// the low 64 bits and Hi below holds the high 64 bits.
	Elements []uint64
	// Hi carries the upper 64 bits for FieldU128 elements, parallel to
	// Elements; empty for FieldU32/FieldU64.
	Hi []uint64
}

const maxVerifiableElements = 4

// CommitEncode writes the kind byte, element count, and little-endian
// elements; it writes no type id (GlobalCommitment/MetaCommitment callers
// write ty before calling it) — little-endian here
// because the field *encoding* is fixed as little-endian even though
// the surrounding commit envelope is big-endian length-prefixed.
func (s VerifiableState) CommitEncode(w *commitment.Writer) {
	w.PutU8(uint8(s.Kind))
	n := len(s.Elements)
	if n > maxVerifiableElements {
		n = maxVerifiableElements
	}
	w.PutU8(uint8(n))
	for i := 0; i < n; i++ {
		putLE64(w, s.Elements[i])
		if s.Kind == FieldU128 {
			hi := uint64(0)
			if i < len(s.Hi) {
				hi = s.Hi[i]
			}
			putLE64(w, hi)
		}
	}
}

func putLE64(w *commitment.Writer, v uint64) {
	for i := 0; i < 8; i++ {
		w.PutU8(uint8(v >> (8 * uint(i))))
	}
}

const unverifiedMaxLen = 64 * 1024

// AttachId is a blake3-256 hash of an off-band attachment too large to
// commit inline.
type AttachId [32]byte

// ComputeAttachId hashes a large off-band blob with the blake3-backed
// provider wired for this purpose.
func ComputeAttachId(blob []byte, p rgbcrypto.Provider) AttachId {
	return AttachId(p.Blake3_256(blob))
}

// UnverifiedState is an inline byte blob bounded to 64 KiB, plus an optional
// reference to a larger attachment hashed out of band.
type UnverifiedState struct {
	Inline   []byte
	Attach   *AttachId
	HasAttach bool
}

// CommitEncode commits independently to a hash of the inline blob and to the
// attach id (or its absence sentinel), so verifiable-only proofs about the
// inline bytes stay meaningful without depending on the attachment.
func (u UnverifiedState) CommitEncode(w *commitment.Writer) {
	if len(u.Inline) > unverifiedMaxLen {
		panic("operation: unverified state exceeds 64 KiB bound")
	}
	inlineHash := commitment.TaggedHash("urn:lnp-bp:rgb:state-unverified#2024-02-03", u.Inline)
	w.PutBytes(inlineHash[:])
	if u.HasAttach {
		w.PutU8(1)
		w.PutBytes(u.Attach[:])
	} else {
		w.PutU8(0)
	}
}

// State is {verifiable, unverified}, committing independently to each half.
type State struct {
	Verifiable VerifiableState
	Unverified UnverifiedState
}

func (s State) CommitEncode(w *commitment.Writer) {
	vw := commitment.NewWriter()
	s.Verifiable.CommitEncode(vw)
	vHash := commitment.TaggedHash("urn:lnp-bp:rgb:state-verifiable#2024-02-03", vw.Bytes())
	w.PutBytes(vHash[:])
	s.Unverified.CommitEncode(w)
}

// AssignmentType and other small type names are distinct uint16 types so
// the compiler catches mixing a MetaType where an AssignmentType belongs,
// rather than bare uint16 fields everywhere.
type (
	AssignmentType uint16
	GlobalType     uint16
	MetaType       uint16
	TransitionType uint16
	ExtensionType  uint16
	ValencyType    uint16
)

// AssignmentWitness makes invariant 7's Present/Absent distinction explicit:
// Absent is valid exclusively for genesis-reachable outputs, never for a
// transition/extension output that is meant to be spent later.
type AssignmentWitness struct {
	Present bool
	Txid    seal.Txid
}

// Lock and Fallback are opaque, commitment-only spending-condition fields
// on an Assign{seal, state, lock, fallback} shape. Both default to the
// empty-tagged-hash sentinel when a schema doesn't use them.
type Lock commitment.Id32
type Fallback commitment.Id32

var (
	emptyLock     = Lock(commitment.TaggedHash("urn:lnp-bp:rgb:lock-empty#2024-02-03", nil))
	emptyFallback = Fallback(commitment.TaggedHash("urn:lnp-bp:rgb:fallback-empty#2024-02-03", nil))
)

// EmptyLock is the sentinel used by an Assign that declares no spending
// condition.
func EmptyLock() Lock { return emptyLock }

// EmptyFallback is the sentinel used by an Assign that declares no
// fallback.
func EmptyFallback() Fallback { return emptyFallback }

// Assign is Revealed{seal,state,lock,fallback} or
// Confidential{seal_hash,state,lock,fallback}, modeled as a single struct
// with a RevealedSeal flag rather than an interface, since every caller
// needs Lock/Fallback/State regardless of which seal form is present and a
// shared struct avoids an unnecessary type switch at every read site.
type Assign struct {
	SealRevealed bool
	Seal         seal.Revealed    // valid iff SealRevealed
	SealHash     seal.Confidential // valid iff !SealRevealed
	State        State
	Lock         Lock
	Fallback     Fallback
}

func (a Assign) sealHash() seal.Confidential {
	if a.SealRevealed {
		return a.Seal.Conceal()
	}
	return a.SealHash
}

// CommitEncode follows an AssignmentCommitment{ty, state, seal, lock,
// fallback} leaf shape: ty is supplied by the caller (the
// TypedAssigns/Assignments encoder knows which AssignmentType this Assign
// belongs to), the remaining fields follow here in order.
func (a Assign) CommitEncode(ty AssignmentType, w *commitment.Writer) {
	w.PutU16(uint16(ty))
	a.State.CommitEncode(w)
	sh := a.sealHash()
	w.PutBytes(sh[:])
	w.PutBytes(a.Lock[:])
	w.PutBytes(a.Fallback[:])
}

// TypedAssigns is a non-empty ordered vector of Assign under a single
// AssignmentType.
type TypedAssigns struct {
	Type    AssignmentType
	Entries []Assign
}

func (t TypedAssigns) leafHashes() [][32]byte {
	leaves := make([][32]byte, len(t.Entries))
	for i, a := range t.Entries {
		w := commitment.NewWriter()
		a.CommitEncode(t.Type, w)
		leaves[i] = commitment.LeafHash(w.Bytes())
	}
	return leaves
}

// Assignments is the size-bounded map AssignmentType -> TypedAssigns.
// MaxAssignmentTypes bounds the number of distinct types with an explicit
// consensus constant rather than leaving it unbounded.
const MaxAssignmentTypes = 1 << 16

// Assignments is kept as an explicit ordered slice (not a Go map) because
// commit-encoding requires a caller-guaranteed key-ascending order; Sorted
// asserts that order rather than silently re-sorting, so a caller bug
// surfaces instead of being papered over.
type Assignments struct {
	Types []TypedAssigns // must already be ordered by Type ascending
}

// Sorted reports whether Types is already ordered by Type ascending, with
// no repeated type.
func (a Assignments) Sorted() bool {
	for i := 1; i < len(a.Types); i++ {
		if a.Types[i-1].Type >= a.Types[i].Type {
			return false
		}
	}
	return true
}

// CommitEncode merklizes the map: each TypedAssigns group contributes one
// merkle subtree over its entries, and the per-type roots are themselves
// merklized in ascending-type order, giving a two-level structure for
// bounded maps of assignments. Panics if Types isn't already sorted — see
// Sorted.
func (a Assignments) CommitEncode(w *commitment.Writer) {
	if !a.Sorted() {
		panic("operation: assignments must be ordered by type ascending")
	}
	groupRoots := make([][32]byte, len(a.Types))
	for i, t := range a.Types {
		root := commitment.MerkleRoot(t.leafHashes())
		tw := commitment.NewWriter()
		tw.PutU16(uint16(t.Type))
		tw.PutBytes(root[:])
		groupRoots[i] = commitment.LeafHash(tw.Bytes())
	}
	top := commitment.MerkleRoot(groupRoots)
	w.PutBytes(top[:])
}
