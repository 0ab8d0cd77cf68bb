// Package witness maps witness transactions to a total order over
// operations.
package witness

import (
	"github.com/rgb-wg/rgb-core-go/operation"
)

// WitnessOrdKind discriminates the witness status oracle's answer. Ignored
// is an intermediate bookkeeping flag, not a fourth ordering state:
// Ignored operations are excluded from the ordering input (same as
// Archived, for fold purposes) but the flag itself is preserved separately
// for the updater, never collapsed into WitnessOrdKind at the type this
// package hands to the folder.
type WitnessOrdKind uint8

const (
	Final WitnessOrdKind = iota
	Tentative
	Archived
)

// WitnessOrd is the oracle's answer for one witness txid: Final carries the
// confirming block height, Tentative and Archived carry none.
type WitnessOrd struct {
	Kind   WitnessOrdKind
	Height uint32 // valid iff Kind == Final
}

// Less orders: Final(h1) < Final(h2) when h1 < h2; Final(_) < Tentative.
// Archived is never compared — callers must exclude Archived witnesses
// from the fold before calling Less.
func (w WitnessOrd) Less(other WitnessOrd) bool {
	if w.Kind == Final && other.Kind == Final {
		return w.Height < other.Height
	}
	if w.Kind == Final && other.Kind == Tentative {
		return true
	}
	if w.Kind == Tentative && other.Kind == Final {
		return false
	}
	return false // equal kinds (both Tentative, or any Archived comparison) are not ordered here
}

// Oracle is the synchronous collaborator boundary: resolve_witness(txid)
// -> WitnessOrd, resolve_transaction(txid) -> Tx. Only the ordering half
// lives in this package; transaction resolution is the anchor layer's
// concern (it needs the actual Tx bytes to verify a scriptPubKey, this
// package only needs the ordering verdict).
type Oracle interface {
	Status(txid [32]byte) (WitnessOrd, error)
}

// Ignored flags a witness the updater has chosen to exclude from
// consideration without reclassifying it as Archived — e.g. a
// double-spend candidate still awaiting resolution. Kept as a side
// annotation alongside WitnessOrd rather than a WitnessOrdKind value:
// excluded from the ordering input but preserved for the updater's
// bookkeeping, rather than guessing which variant it collapses to.
type Annotated struct {
	Ord      WitnessOrd
	Ignored  bool
}

// IncludeInFold reports whether an annotated witness status participates
// in the contract-state fold: Archived and Ignored are both excluded,
// everything else (Final, Tentative) participates.
func (a Annotated) IncludeInFold() bool {
	return !a.Ignored && a.Ord.Kind != Archived
}

// OpOrd is the total order key for one operation: Genesis sorts strictly
// smallest; all others compare by (WitnessOrd, full-type discriminant with
// extension before transition, nonce, opid).
type OpOrd struct {
	IsGenesis bool
	Witness   WitnessOrd
	// TypeRank is extension=0, transition=1 so extension sorts before
	// transition at equal WitnessOrd.
	TypeRank uint8
	Nonce    uint64
	OpId     operation.OpId
}

const (
	RankExtension uint8 = 0
	RankTransition uint8 = 1
)

// Compare returns -1, 0, or 1 as a sorts before, equal to, or after b,
// giving sort.Slice a total order: two non-archived operations with equal
// witness, type, nonce and opid compare equal.
func Compare(a, b OpOrd) int {
	if a.IsGenesis != b.IsGenesis {
		if a.IsGenesis {
			return -1
		}
		return 1
	}
	if a.IsGenesis && b.IsGenesis {
		return 0
	}
	if cmp := compareWitness(a.Witness, b.Witness); cmp != 0 {
		return cmp
	}
	if a.TypeRank != b.TypeRank {
		if a.TypeRank < b.TypeRank {
			return -1
		}
		return 1
	}
	if a.Nonce != b.Nonce {
		if a.Nonce < b.Nonce {
			return -1
		}
		return 1
	}
	for i := range a.OpId {
		if a.OpId[i] != b.OpId[i] {
			if a.OpId[i] < b.OpId[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func compareWitness(a, b WitnessOrd) int {
	if a.Kind == b.Kind {
		if a.Kind == Final && a.Height != b.Height {
			if a.Height < b.Height {
				return -1
			}
			return 1
		}
		return 0
	}
	rank := func(k WitnessOrdKind) int {
		switch k {
		case Final:
			return 0
		case Tentative:
			return 1
		default:
			return 2
		}
	}
	if rank(a.Kind) < rank(b.Kind) {
		return -1
	}
	return 1
}
