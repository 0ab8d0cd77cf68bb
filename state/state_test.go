package state

import (
	"testing"

	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/witness"
)

func genesisWithAssignment(ty operation.AssignmentType, value uint64) operation.Genesis {
	return operation.Genesis{
		Assignments: operation.Assignments{Types: []operation.TypedAssigns{
			{Type: ty, Entries: []operation.Assign{{
				SealHash: [32]byte{0x01},
				State:    operation.State{Verifiable: operation.VerifiableState{Kind: operation.FieldU64, Elements: []uint64{value}}},
				Lock:     operation.EmptyLock(),
				Fallback: operation.EmptyFallback(),
			}}},
		}},
		Globals: operation.GlobalState{Entries: []operation.GlobalEntry{
			{Type: 1, States: []operation.State{{Verifiable: operation.VerifiableState{Kind: operation.FieldU64, Elements: []uint64{value}}}}},
		}},
	}
}

func TestFoldInsertsGenesisAssignment(t *testing.T) {
	g := genesisWithAssignment(1, 1000)
	ref := operation.RefGenesis(&g)
	in := FoldInput{Op: ref, Ord: witness.OpOrd{IsGenesis: true}}

	st, err := Fold(operation.SchemaId{}, g.ContractId(), []FoldInput{in})
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if len(st.Assignments[1]) != 1 {
		t.Fatalf("expected one live assignment of type 1, got %d", len(st.Assignments[1]))
	}
}

func TestFoldRemovesSpentAssignment(t *testing.T) {
	g := genesisWithAssignment(1, 1000)
	ref := operation.RefGenesis(&g)
	genesisOrd := witness.OpOrd{IsGenesis: true}

	opout := operation.Opout{Op: g.Id(), Type: 1, Index: 0}
	tr := operation.Transition{
		ContractId: g.ContractId(),
		Type:       1,
		Inputs:     []operation.Opout{opout},
	}
	trRef := operation.RefTransition(&tr)
	trOrd := witness.OpOrd{Witness: witnessFinal(1), TypeRank: witness.RankTransition, Nonce: 1, OpId: tr.Id()}

	inputs := []FoldInput{
		{Op: ref, Ord: genesisOrd},
		{Op: trRef, Ord: trOrd},
	}
	st, err := Fold(operation.SchemaId{}, g.ContractId(), inputs)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if len(st.Assignments[1]) != 0 {
		t.Fatalf("expected spent assignment to be removed, got %d remaining", len(st.Assignments[1]))
	}
}

// TestFoldArchivedExclusion covers the canonical "Archived exclusion"
// scenario: an operation never handed to Fold (because the caller excluded
// it as Archived) contributes nothing to the resulting state, even though
// it would still appear unmodified in a consignment (out of scope for this
// package, which only ever sees what the caller includes).
func TestFoldArchivedExclusion(t *testing.T) {
	g := genesisWithAssignment(1, 1000)
	ref := operation.RefGenesis(&g)
	st, err := Fold(operation.SchemaId{}, g.ContractId(), []FoldInput{{Op: ref, Ord: witness.OpOrd{IsGenesis: true}}})
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	// A second, archived-and-excluded transition is simply never passed to
	// Fold by the caller; verifying it here means confirming the baseline
	// state is unaffected by operations outside the input set.
	if len(st.Assignments[1]) != 1 {
		t.Fatalf("fold must reflect only the operations actually supplied")
	}
}

func TestFoldDeterministic(t *testing.T) {
	g := genesisWithAssignment(1, 1000)
	ref := operation.RefGenesis(&g)
	in := []FoldInput{{Op: ref, Ord: witness.OpOrd{IsGenesis: true}}}

	a, err := Fold(operation.SchemaId{}, g.ContractId(), in)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	b, err := Fold(operation.SchemaId{}, g.ContractId(), in)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if len(a.Assignments[1]) != len(b.Assignments[1]) {
		t.Fatalf("fold not deterministic across identical calls")
	}
}

func TestGlobalStateIterNewestFirst(t *testing.T) {
	g := genesisWithAssignment(1, 1000)
	ref := operation.RefGenesis(&g)
	st, err := Fold(operation.SchemaId{}, g.ContractId(), []FoldInput{{Op: ref, Ord: witness.OpOrd{IsGenesis: true}}})
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	it, ok := st.Global.Iter(1)
	if !ok {
		t.Fatalf("expected global state history for type 1")
	}
	last, ok := it.Last()
	if !ok {
		t.Fatalf("expected at least one global state value")
	}
	if last.Verifiable.Elements[0] != 1000 {
		t.Fatalf("unexpected newest global value: %+v", last)
	}
}

func TestGlobalStateIterResetOutOfRangePanics(t *testing.T) {
	it := newGlobalStateIter([]operation.State{{}})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic resetting past reported size")
		}
	}()
	it.Reset(5)
}

func witnessFinal(h uint32) witness.WitnessOrd {
	return witness.WitnessOrd{Kind: witness.Final, Height: h}
}
