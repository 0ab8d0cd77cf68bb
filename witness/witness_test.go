package witness

import (
	"sort"
	"testing"

	"github.com/rgb-wg/rgb-core-go/operation"
)

func TestWitnessOrdFinalByHeight(t *testing.T) {
	a := WitnessOrd{Kind: Final, Height: 10}
	b := WitnessOrd{Kind: Final, Height: 20}
	if !a.Less(b) || b.Less(a) {
		t.Fatalf("Final(10) must be less than Final(20)")
	}
}

func TestWitnessOrdFinalBeforeTentative(t *testing.T) {
	a := WitnessOrd{Kind: Final, Height: 999}
	b := WitnessOrd{Kind: Tentative}
	if !a.Less(b) {
		t.Fatalf("any Final must sort before Tentative")
	}
}

func TestAnnotatedExcludesArchivedAndIgnored(t *testing.T) {
	archived := Annotated{Ord: WitnessOrd{Kind: Archived}}
	if archived.IncludeInFold() {
		t.Fatalf("archived witness must be excluded from the fold")
	}
	ignored := Annotated{Ord: WitnessOrd{Kind: Final, Height: 1}, Ignored: true}
	if ignored.IncludeInFold() {
		t.Fatalf("ignored witness must be excluded from the fold even if otherwise final")
	}
	included := Annotated{Ord: WitnessOrd{Kind: Tentative}}
	if !included.IncludeInFold() {
		t.Fatalf("tentative, non-ignored witness must participate in the fold")
	}
}

func TestOpOrdGenesisStrictlySmallest(t *testing.T) {
	g := OpOrd{IsGenesis: true}
	other := OpOrd{Witness: WitnessOrd{Kind: Final, Height: 0}}
	if Compare(g, other) >= 0 {
		t.Fatalf("genesis must compare strictly smallest")
	}
}

func TestOpOrdExtensionBeforeTransitionAtEqualWitness(t *testing.T) {
	w := WitnessOrd{Kind: Final, Height: 5}
	ext := OpOrd{Witness: w, TypeRank: RankExtension, Nonce: 1}
	tr := OpOrd{Witness: w, TypeRank: RankTransition, Nonce: 1}
	if Compare(ext, tr) >= 0 {
		t.Fatalf("extension must sort before transition at equal witness and nonce")
	}
}

func TestOpOrdTotalOrderSortStable(t *testing.T) {
	w := WitnessOrd{Kind: Final, Height: 1}
	ops := []OpOrd{
		{Witness: w, TypeRank: RankTransition, Nonce: 2, OpId: operation.OpId{0x02}},
		{Witness: w, TypeRank: RankTransition, Nonce: 1, OpId: operation.OpId{0x01}},
		{IsGenesis: true},
	}
	sort.Slice(ops, func(i, j int) bool { return Compare(ops[i], ops[j]) < 0 })
	if !ops[0].IsGenesis {
		t.Fatalf("genesis must sort first")
	}
	if ops[1].Nonce != 1 || ops[2].Nonce != 2 {
		t.Fatalf("nonce tie-break failed: %+v", ops)
	}
}

func TestOpOrdEqualFieldsCompareEqual(t *testing.T) {
	w := WitnessOrd{Kind: Final, Height: 7}
	a := OpOrd{Witness: w, TypeRank: RankTransition, Nonce: 3, OpId: operation.OpId{0x09}}
	b := a
	if Compare(a, b) != 0 {
		t.Fatalf("identical OpOrd values must compare equal")
	}
}
