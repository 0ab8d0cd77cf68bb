package operation

import (
	"testing"

	"github.com/rgb-wg/rgb-core-go/commitment"
)

func sampleGenesis() Genesis {
	return Genesis{
		SchemaId: SchemaId{0xAA},
		Header:   Header{Nonce: 1, Meta: []byte("issuance")},
		Metadata: Metadata{Entries: []MetadataEntry{
			{Type: 1, State: VerifiableState{Kind: FieldU64, Elements: []uint64{1000}}},
		}},
		Globals: GlobalState{Entries: []GlobalEntry{
			{Type: 1, States: []State{{Verifiable: VerifiableState{Kind: FieldU64, Elements: []uint64{1000}}}}},
		}},
		Assignments: Assignments{Types: []TypedAssigns{
			{Type: 1, Entries: []Assign{{
				SealRevealed: false,
				SealHash:     [32]byte{0x01},
				State:        State{Verifiable: VerifiableState{Kind: FieldU64, Elements: []uint64{1000}}},
				Lock:         EmptyLock(),
				Fallback:     EmptyFallback(),
			}}},
		}},
	}
}

func TestGenesisIdDeterministic(t *testing.T) {
	g := sampleGenesis()
	if g.Id() != g.Id() {
		t.Fatalf("Genesis.Id not stable across calls")
	}
}

func TestGenesisIdEqualsContractId(t *testing.T) {
	g := sampleGenesis()
	if ContractId(g.Id()) != g.ContractId() {
		t.Fatalf("ContractId must equal genesis.Id()")
	}
}

func TestGenesisIdSensitiveToFieldOrder(t *testing.T) {
	g1 := sampleGenesis()
	g2 := sampleGenesis()
	g2.Header.Nonce = 2
	if g1.Id() == g2.Id() {
		t.Fatalf("changing the nonce must change the operation id")
	}
}

func TestTransitionFullType(t *testing.T) {
	tr := Transition{ContractId: ContractId{0x01}, Type: 7}
	ft := tr.FullType()
	if ft.Kind != FullTransition || ft.Sub != 7 {
		t.Fatalf("unexpected full type: %+v", ft)
	}
}

func TestOpRefDispatchesToConcreteVariant(t *testing.T) {
	g := sampleGenesis()
	ref := RefGenesis(&g)
	if !ref.IsGenesis() || ref.IsTransition() || ref.IsExtension() {
		t.Fatalf("OpRef variant flags wrong for genesis")
	}
	if ref.Id() != g.Id() {
		t.Fatalf("OpRef.Id() diverged from Genesis.Id()")
	}
	if ref.ContractId() != g.ContractId() {
		t.Fatalf("OpRef.ContractId() diverged from Genesis.ContractId()")
	}
	if len(ref.Inputs()) != 0 {
		t.Fatalf("genesis must have no inputs")
	}
}

func TestTransitionInputOrderInsensitive(t *testing.T) {
	base := Transition{ContractId: ContractId{0x01}, Type: 1, Nonce: 9}
	a := base
	a.Inputs = []Opout{{Op: OpId{0x01}, Type: 1, Index: 0}, {Op: OpId{0x02}, Type: 1, Index: 0}}
	b := base
	b.Inputs = []Opout{{Op: OpId{0x02}, Type: 1, Index: 0}, {Op: OpId{0x01}, Type: 1, Index: 0}}
	if a.Id() != b.Id() {
		t.Fatalf("input set order must not change the commitment")
	}
}

func TestExtensionHasNoInputsField(t *testing.T) {
	e := Extension{ContractId: ContractId{0x01}, Type: 2}
	ref := RefExtension(&e)
	if ref.Inputs() != nil {
		t.Fatalf("extension must report no inputs via OpRef")
	}
}

func TestAssignDifferentSealHashesCommitDifferently(t *testing.T) {
	concealed := Assign{
		SealRevealed: false,
		SealHash:     [32]byte{0x42},
		State:        State{Verifiable: VerifiableState{Kind: FieldU32, Elements: []uint64{1}}},
		Lock:         EmptyLock(),
		Fallback:     EmptyFallback(),
	}
	other := concealed
	other.SealHash = [32]byte{0x43}

	w1 := newWriterFor(concealed, 1)
	w2 := newWriterFor(other, 1)
	if string(w1) == string(w2) {
		t.Fatalf("different seal hashes must commit differently")
	}
}

func newWriterFor(a Assign, ty AssignmentType) []byte {
	w := commitment.NewWriter()
	a.CommitEncode(ty, w)
	return w.Bytes()
}
