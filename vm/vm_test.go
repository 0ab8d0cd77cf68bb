package vm

import (
	"testing"

	"github.com/rgb-wg/rgb-core-go/operation"
)

func stateOf(v uint64) operation.State {
	return operation.State{Verifiable: operation.VerifiableState{Kind: operation.FieldU64, Elements: []uint64{v}}}
}

// TestNoInflationScenario covers the canonical "No inflation" scenario:
// genesis with issued_supply = 1000 and a single revealed assignment
// value=1000 succeeds; any transition whose inputs sum to != outputs
// fails.
func TestNoInflationScenario(t *testing.T) {
	if got := NoInflationBySum([]operation.State{stateOf(1000)}, []operation.State{stateOf(1000)}); got != ProcOk {
		t.Fatalf("equal sums must succeed, got %d", got)
	}
	if got := NoInflationBySum([]operation.State{stateOf(1000)}, []operation.State{stateOf(999)}); got != ProcFail {
		t.Fatalf("unequal sums must fail, got %d", got)
	}
}

func TestNoInflationMultipleInputsAndOutputs(t *testing.T) {
	in := []operation.State{stateOf(300), stateOf(700)}
	out := []operation.State{stateOf(400), stateOf(600)}
	if got := NoInflationBySum(in, out); got != ProcOk {
		t.Fatalf("sum-preserving split must succeed, got %d", got)
	}
}

// TestLoadOperationGlobalBoundCheck covers the canonical "VM bound
// check" scenario: ld.g dst,ty=T,pos=N with fewer than N+1 items of type T
// must fail with st0<-fail and leave dst unchanged.
func TestLoadOperationGlobalBoundCheck(t *testing.T) {
	g := operation.Genesis{}
	ctx := &Context{Op: operation.RefGenesis(&g)}
	m := NewMachine(ctx)

	m.Registers().setReg(0, Reg{Kind: RegCount, Count: 42}) // sentinel pre-existing value
	m.LoadOperationGlobal(0, 7, 3)

	if !m.Registers().St0 {
		t.Fatalf("expected st0 failure for out-of-range global read")
	}
	if m.Registers().Get(0).Kind != RegCount || m.Registers().Get(0).Count != 42 {
		t.Fatalf("destination register must be unmodified on failure, got %+v", m.Registers().Get(0))
	}
}

func TestCountClosedInputsByType(t *testing.T) {
	tr := operation.Transition{
		Inputs: []operation.Opout{
			{Op: operation.OpId{0x01}, Type: 5, Index: 0},
			{Op: operation.OpId{0x02}, Type: 5, Index: 0},
			{Op: operation.OpId{0x03}, Type: 6, Index: 0},
		},
	}
	ctx := &Context{Op: operation.RefTransition(&tr)}
	m := NewMachine(ctx)
	m.CountClosedInputs(1, 5)
	if m.Registers().St0 {
		t.Fatalf("unexpected failure")
	}
	if m.Registers().Get(1).Count != 2 {
		t.Fatalf("expected 2 closed inputs of type 5, got %d", m.Registers().Get(1).Count)
	}
}

func TestIdentityTransferRejectsCountMismatch(t *testing.T) {
	in := []operation.State{stateOf(1), stateOf(2)}
	out := []operation.State{stateOf(1)}
	if got := IdentityTransfer(in, out); got != ProcFail {
		t.Fatalf("expected failure on cardinality mismatch, got %d", got)
	}
}
