package operation

import (
	"testing"

	"github.com/rgb-wg/rgb-core-go/commitment"
	"github.com/rgb-wg/rgb-core-go/rgbcrypto"
)

func encodeState(s State) []byte {
	w := commitment.NewWriter()
	s.CommitEncode(w)
	return w.Bytes()
}

func TestStateCommitsVerifiableAndUnverifiedIndependently(t *testing.T) {
	a := State{
		Verifiable: VerifiableState{Kind: FieldU64, Elements: []uint64{1000}},
		Unverified: UnverifiedState{Inline: []byte("memo")},
	}
	b := a
	b.Unverified.Inline = []byte("different memo")

	if string(encodeState(a)) == string(encodeState(b)) {
		t.Fatalf("changing unverified bytes must change the state commitment")
	}

	c := a
	c.Verifiable.Elements = []uint64{2000}
	if string(encodeState(a)) == string(encodeState(c)) {
		t.Fatalf("changing verifiable elements must change the state commitment")
	}
}

func TestUnverifiedStateExceedingBoundPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for oversized unverified state")
		}
	}()
	u := UnverifiedState{Inline: make([]byte, unverifiedMaxLen+1)}
	w := commitment.NewWriter()
	u.CommitEncode(w)
}

func TestComputeAttachIdDeterministic(t *testing.T) {
	blob := []byte("a large off-band attachment blob")
	a := ComputeAttachId(blob, rgbcrypto.Default)
	b := ComputeAttachId(blob, rgbcrypto.Default)
	if a != b {
		t.Fatalf("ComputeAttachId not deterministic")
	}
}

func TestAssignmentsRejectsDescendingTypeOrder(t *testing.T) {
	entry := Assign{
		SealHash: [32]byte{0x01},
		State:    State{Verifiable: VerifiableState{Kind: FieldU32, Elements: []uint64{1}}},
		Lock:     EmptyLock(),
		Fallback: EmptyFallback(),
	}
	a := Assignments{Types: []TypedAssigns{{Type: 1, Entries: []Assign{entry}}, {Type: 2, Entries: []Assign{entry}}}}
	b := Assignments{Types: []TypedAssigns{{Type: 2, Entries: []Assign{entry}}, {Type: 1, Entries: []Assign{entry}}}}

	wa := commitment.NewWriter()
	a.CommitEncode(wa)
	defer func() {
		if recover() == nil {
			t.Fatalf("assignment groups out of ascending type order must be rejected")
		}
	}()
	wb := commitment.NewWriter()
	b.CommitEncode(wb)
}
