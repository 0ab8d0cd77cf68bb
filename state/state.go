// Package state implements the deterministic contract-state folder:
// operations with witness orderings in, a ContractState out.
package state

import (
	"sort"

	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/seal"
	"github.com/rgb-wg/rgb-core-go/witness"
)

// GlobalStateMaxItems and TypedAssignmentsMaxItems bound the folder's
// per-type contributions: the folder must reject any operation whose
// contribution would exceed these, named and checked rather than an
// implicit cap.
const (
	GlobalStateMaxItems     = 1 << 20
	TypedAssignmentsMaxItems = 1 << 20
)

// ErrSizeLimit is returned when folding an operation would push a
// per-type item count past its bound.
type ErrSizeLimit struct {
	Kind string
	Type uint16
}

func (e *ErrSizeLimit) Error() string { return "state: size limit exceeded for " + e.Kind }

// OutputAssignment is one live, unspent assignment in the current state
// index: its Opout, resolved seal (witness-vout substituted per invariant
// 6), state payload, and whether a witness is present.
type OutputAssignment struct {
	Opout    operation.Opout
	Seal     seal.Revealed
	State    operation.State
	Witness  operation.AssignmentWitness
}

// GlobalStateIter abstracts read access to one global-state type's ordered
// value list: exposes size/prev/last/reset rather than a raw slice, so the
// VM and folder share one iteration contract instead of each re-deriving
// index arithmetic.
type GlobalStateIter struct {
	values []operation.State // ordered by OpOrd descending; index 0 = newest
	pos    int
}

func newGlobalStateIter(values []operation.State) *GlobalStateIter {
	return &GlobalStateIter{values: values}
}

// Size returns the total number of items in the type's history.
func (it *GlobalStateIter) Size() int { return len(it.values) }

// Reset repositions the iterator to depth items back from the newest
// (depth 0 == newest). Panics unless 0 <= depth < Size: fatal (panicable)
// states are reserved for invariant breaks in the validator's own data
// structures, and a GlobalStateIter asked to reset past its own reported
// size is exactly such a break.
func (it *GlobalStateIter) Reset(depth int) {
	if depth < 0 || depth >= len(it.values) {
		panic("state: GlobalStateIter.Reset depth out of range")
	}
	it.pos = depth
}

// Prev moves one step toward older entries and returns the value there, or
// ok=false if already at the oldest entry.
func (it *GlobalStateIter) Prev() (operation.State, bool) {
	if it.pos+1 >= len(it.values) {
		return operation.State{}, false
	}
	it.pos++
	return it.values[it.pos], true
}

// Last returns the newest (index 0) value, or ok=false if the type has no
// history.
func (it *GlobalStateIter) Last() (operation.State, bool) {
	if len(it.values) == 0 {
		return operation.State{}, false
	}
	return it.values[0], true
}

// At returns the value at depth (0 = newest) without moving the cursor,
// for the VM's ld.c random-access reads.
func (it *GlobalStateIter) At(depth int) (operation.State, bool) {
	if depth < 0 || depth >= len(it.values) {
		return operation.State{}, false
	}
	return it.values[depth], true
}

// GlobalContractState wraps GlobalStateIter per type; the VM sees only the
// wrapper. Fold builds each type's list already sorted by OpOrd descending;
// no ordering check is made when the iterators are read.
type GlobalContractState struct {
	byType map[operation.GlobalType]*GlobalStateIter
}

func (g *GlobalContractState) Iter(ty operation.GlobalType) (*GlobalStateIter, bool) {
	it, ok := g.byType[ty]
	return it, ok
}

// ContractState is the folder's output: global state history per type,
// the live assignment index per owned-right type, and the contract's
// identifiers.
type ContractState struct {
	SchemaId   operation.SchemaId
	ContractId operation.ContractId
	Global     *GlobalContractState
	// Assignments indexes live OutputAssignments by owned-right type.
	Assignments map[operation.AssignmentType][]OutputAssignment
}

// FoldInput is one operation to fold, paired with the witness-resolved
// ordering key the caller (validator) has already computed from the
// witness oracle.
type FoldInput struct {
	Op  operation.OpRef
	Ord witness.OpOrd
	// ResolvedTxid is the anchoring transaction's txid: it resolves
	// WitnessVout seals and is recorded as each new assignment's witness.
	// Zero when HasWitness is false.
	ResolvedTxid [32]byte
	HasWitness   bool
}

// Fold runs the state-folding algorithm: compute OpOrd (already done by
// the caller, supplied via FoldInput.Ord), sort ascending, walk the sorted
// list removing spent assignments and inserting new ones, then re-sort
// each global-state list by OpOrd descending. Determinism is total: two
// callers with identical inputs produce byte-identical ContractState
// Merkle roots, since every step here is a pure function of FoldInput.
func Fold(schemaId operation.SchemaId, contractId operation.ContractId, inputs []FoldInput) (*ContractState, error) {
	sorted := make([]FoldInput, len(inputs))
	copy(sorted, inputs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return witness.Compare(sorted[i].Ord, sorted[j].Ord) < 0
	})

	live := make(map[operation.Opout]OutputAssignment)
	globalsByType := make(map[operation.GlobalType][]taggedGlobal)

	for _, in := range sorted {
		ref := in.Op

		for _, opout := range ref.Inputs() {
			delete(live, opout)
		}

		assigns := ref.Assignments()
		for _, typed := range assigns.Types {
			if len(typed.Entries) > TypedAssignmentsMaxItems {
				return nil, &ErrSizeLimit{Kind: "assignments", Type: uint16(typed.Type)}
			}
			for idx, a := range typed.Entries {
				opout := operation.Opout{Op: ref.Id(), Type: typed.Type, Index: uint16(idx)}
				resolvedSeal := a.Seal
				if a.SealRevealed && a.Seal.WitnessRelative {
					if in.HasWitness {
						resolvedSeal = a.Seal.WithTxid(in.ResolvedTxid)
					}
				}
				aw := operation.AssignmentWitness{Present: in.HasWitness, Txid: in.ResolvedTxid}
				live[opout] = OutputAssignment{
					Opout:   opout,
					Seal:    resolvedSeal,
					State:   a.State,
					Witness: aw,
				}
			}
		}

		globals := ref.Globals()
		for _, entry := range globals.Entries {
			if len(globalsByType[entry.Type])+len(entry.States) > GlobalStateMaxItems {
				return nil, &ErrSizeLimit{Kind: "global", Type: uint16(entry.Type)}
			}
			for _, s := range entry.States {
				globalsByType[entry.Type] = append(globalsByType[entry.Type], taggedGlobal{ord: in.Ord, state: s})
			}
		}
	}

	byType := make(map[operation.GlobalType]*GlobalStateIter, len(globalsByType))
	for ty, items := range globalsByType {
		sort.SliceStable(items, func(i, j int) bool {
			return witness.Compare(items[i].ord, items[j].ord) > 0 // descending: newest first
		})
		values := make([]operation.State, len(items))
		for i, it := range items {
			values[i] = it.state
		}
		byType[ty] = newGlobalStateIter(values)
	}

	assignmentsByType := make(map[operation.AssignmentType][]OutputAssignment)
	for opout, oa := range live {
		assignmentsByType[opout.Type] = append(assignmentsByType[opout.Type], oa)
	}
	for ty := range assignmentsByType {
		sort.Slice(assignmentsByType[ty], func(i, j int) bool {
			return opoutLess(assignmentsByType[ty][i].Opout, assignmentsByType[ty][j].Opout)
		})
	}

	return &ContractState{
		SchemaId:   schemaId,
		ContractId: contractId,
		Global:     &GlobalContractState{byType: byType},
		Assignments: assignmentsByType,
	}, nil
}

type taggedGlobal struct {
	ord   witness.OpOrd
	state operation.State
}

func opoutLess(a, b operation.Opout) bool {
	for i := range a.Op {
		if a.Op[i] != b.Op[i] {
			return a.Op[i] < b.Op[i]
		}
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.Index < b.Index
}
