// Package anchor implements the LNPBP-4 multi-message commitment and
// LNPBP-1 key tweak that bind a set of contract bundles to one Bitcoin
// transaction.
package anchor

import (
	"math/big"
	"sort"

	"github.com/rgb-wg/rgb-core-go/commitment"
	"github.com/rgb-wg/rgb-core-go/operation"
)

type (
	AnchorId  commitment.Id32
	BundleId  commitment.Id32
)

const AnchorIdTag = "urn:lnp-bp:rgb:anchor#2024-02-03"
const BundleIdTag = "urn:lnp-bp:rgb:bundle#2024-02-03"

// MultiMsgCommitment is the LNPBP-4 multi-message Merkle commitment mapping
// ContractId -> BundleId for one witness transaction output. Width is fixed
// at construction to the witness transaction's output count (num_outputs) —
// an arbitrary value the embedding step chooses, not required to be a power
// of two — and a contract's slot is contract_id mod Width, contract_id read
// as a big-endian 256-bit integer.
type MultiMsgCommitment struct {
	Width uint16
	// Slots maps slot index -> every (contract id, bundle id) assigned to
	// it; empty slots commit to the void sentinel leaf, slots carrying more
	// than one contract commit to the Merkle root of their entries.
	Slots map[uint16][]slotEntry
}

type slotEntry struct {
	Contract operation.ContractId
	Bundle   BundleId
}

// NewMultiMsgCommitment builds an empty commitment with the given width,
// the number of outputs of the witness transaction the commitment embeds
// into.
func NewMultiMsgCommitment(width uint16) *MultiMsgCommitment {
	if width == 0 {
		panic("anchor: multi-message commitment width must be non-zero")
	}
	return &MultiMsgCommitment{Width: width, Slots: make(map[uint16][]slotEntry)}
}

// Slot computes the deterministic slot a contract id embeds into:
// vout = contract_id mod num_outputs, contract_id taken as a big-endian
// 256-bit integer so every implementation reducing the same id against the
// same width agrees on the slot.
func (m *MultiMsgCommitment) Slot(contractId operation.ContractId) uint16 {
	return slotFor(contractId, m.Width)
}

func slotFor(contractId operation.ContractId, width uint16) uint16 {
	id := new(big.Int).SetBytes(contractId[:])
	mod := new(big.Int).Mod(id, big.NewInt(int64(width)))
	return uint16(mod.Uint64())
}

// Insert places a (contractId -> bundleId) mapping into its deterministic
// slot. Multiple contracts landing in the same slot is not an error — their
// bundle ids are merklized together into that slot's leaf (LNPBP-4 allows
// more than one message per slot since they're collision-improbable across
// contracts in practice, and width is chosen by the embedder, not the
// caller inserting into it).
func (m *MultiMsgCommitment) Insert(contractId operation.ContractId, bundleId BundleId) error {
	slot := m.Slot(contractId)
	entries := m.Slots[slot]
	for i, e := range entries {
		if e.Contract == contractId {
			entries[i].Bundle = bundleId
			return nil
		}
	}
	m.Slots[slot] = append(entries, slotEntry{Contract: contractId, Bundle: bundleId})
	return nil
}

// leafHashes builds the ordered, width-sized leaf set: an empty slot
// commits to the void sentinel, a slot with one entry commits to
// (contractId, bundleId) directly, and a slot with several entries commits
// to the Merkle root of those entries sorted by contract id — so the leaf
// never depends on Insert order.
func (m *MultiMsgCommitment) leafHashes() [][32]byte {
	leaves := make([][32]byte, m.Width)
	for i := uint16(0); i < m.Width; i++ {
		entries := m.Slots[i]
		switch len(entries) {
		case 0:
			leaves[i] = commitment.TaggedHash(commitment.MerkleVoidLeaf, nil)
		case 1:
			leaves[i] = entryLeaf(entries[0])
		default:
			sorted := append([]slotEntry(nil), entries...)
			sort.Slice(sorted, func(a, b int) bool {
				return lessContract(sorted[a].Contract, sorted[b].Contract)
			})
			sub := make([][32]byte, len(sorted))
			for j, e := range sorted {
				sub[j] = entryLeaf(e)
			}
			leaves[i] = commitment.MerkleRoot(sub)
		}
	}
	return leaves
}

func entryLeaf(e slotEntry) [32]byte {
	w := commitment.NewWriter()
	w.PutBytes(e.Contract[:])
	w.PutBytes(e.Bundle[:])
	return commitment.LeafHash(w.Bytes())
}

func lessContract(a, b operation.ContractId) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// CommitEncode commits the width followed by the tree root, so two trees of
// different width never collide even if their occupied slots happen to hash
// the same.
func (m *MultiMsgCommitment) CommitEncode(w *commitment.Writer) {
	w.PutU16(m.Width)
	root := commitment.MerkleRoot(m.leafHashes())
	w.PutBytes(root[:])
}

// Message extracts the per-output message (the tree root) that LNPBP-1
// tweaks the output's public key by.
func (m *MultiMsgCommitment) Message() [32]byte {
	return commitment.MerkleRoot(m.leafHashes())
}

// Txid is the witness transaction's id, opaque to this package beyond
// equality and byte access.
type Txid [32]byte

// Proof carries the pre-tweak pubkey and script-type data sufficient to
// reproduce the tweaked scriptPubKey of one transaction output.
type ProofKind uint8

const (
	ProofSinglePubkey ProofKind = iota
	ProofLockScript
	ProofTaproot
)

type Proof struct {
	Kind          ProofKind
	PubkeyOrInternalKey [33]byte // compressed secp256k1 pubkey, or taproot internal key (x-only, first 32 bytes)
	ScriptData    []byte         // lock-script bytes for ProofLockScript; unused otherwise
}

// Anchor binds a set of contract bundles to one witness transaction.
type Anchor struct {
	Txid       Txid
	Commitment *MultiMsgCommitment
	Proof      Proof
}

func (a *Anchor) Id() AnchorId {
	w := commitment.NewWriter()
	w.PutBytes(a.Txid[:])
	a.Commitment.CommitEncode(w)
	w.PutU8(uint8(a.Proof.Kind))
	w.PutBytes(a.Proof.PubkeyOrInternalKey[:])
	w.PutBytes16(a.Proof.ScriptData)
	return AnchorId(commitment.TaggedHash(AnchorIdTag, w.Bytes()))
}

// TransitionBundle is a set of state transitions sharing one witness
// transaction, committed to by one LNPBP-4 leaf (its BundleId).
type BundleEntry struct {
	Op     operation.OpId
	Inputs []operation.Opout
}

type TransitionBundle struct {
	Entries []BundleEntry // ordered; inputs across entries must be pairwise disjoint
}

// InputsDisjoint checks invariant 4: within a TransitionBundle, the union of
// inputs across all entries is pairwise disjoint.
func (b TransitionBundle) InputsDisjoint() bool {
	seen := make(map[operation.Opout]operation.OpId)
	for _, e := range b.Entries {
		for _, in := range e.Inputs {
			if owner, ok := seen[in]; ok {
				_ = owner
				return false
			}
			seen[in] = e.Op
		}
	}
	return true
}

// Id computes the BundleId as the commit hash of the bundle's declared
// (node_id, inputs) pairs. Stable under
// reveal/conceal because it only ever commits to OpIds and Opouts, never to
// full operation bodies.
func (b TransitionBundle) Id() BundleId {
	leaves := make([][32]byte, len(b.Entries))
	for i, e := range b.Entries {
		w := commitment.NewWriter()
		w.PutBytes(e.Op[:])
		for _, in := range e.Inputs {
			w.PutBytes(in.Op[:])
			w.PutU16(uint16(in.Type))
			w.PutU16(in.Index)
		}
		leaves[i] = commitment.LeafHash(w.Bytes())
	}
	root := commitment.MerkleRoot(leaves)
	return BundleId(commitment.TaggedHash(BundleIdTag, root[:]))
}
