package validation

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rgb-wg/rgb-core-go/anchor"
	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/schema"
	"github.com/rgb-wg/rgb-core-go/witness"
)

// fakeConsignment is a minimal in-memory Consignment, independent of the
// CLI's JSON loader, so the pipeline can be exercised end to end against a
// witness oracle that actually distinguishes operations by txid.
type fakeConsignment struct {
	sch         schema.Schema
	genesis     operation.Genesis
	bundleIds   []anchor.BundleId
	bundles     map[anchor.BundleId]anchor.TransitionBundle
	anchors     map[anchor.BundleId]anchor.Anchor
	anchorTxids map[anchor.BundleId][32]byte
	ops         map[operation.OpId]operation.OpRef
	opWitness   map[operation.OpId][32]byte
}

func (c *fakeConsignment) Schema() schema.Schema             { return c.sch }
func (c *fakeConsignment) RootSchema() (schema.Schema, bool) { return schema.Schema{}, false }
func (c *fakeConsignment) Genesis() operation.Genesis        { return c.genesis }
func (c *fakeConsignment) BundleIds() []anchor.BundleId      { return c.bundleIds }

func (c *fakeConsignment) Bundle(id anchor.BundleId) (anchor.TransitionBundle, bool) {
	b, ok := c.bundles[id]
	return b, ok
}

func (c *fakeConsignment) Anchor(bundleId anchor.BundleId) ([32]byte, anchor.Anchor, bool) {
	a, ok := c.anchors[bundleId]
	return c.anchorTxids[bundleId], a, ok
}

func (c *fakeConsignment) Operation(id operation.OpId) (operation.OpRef, bool) {
	ref, ok := c.ops[id]
	return ref, ok
}

func (c *fakeConsignment) OpWitnessId(id operation.OpId) ([32]byte, bool) {
	txid, ok := c.opWitness[id]
	return txid, ok
}

var errUnknownTxid = errors.New("validator_test: unknown witness txid")

// mapOracle resolves witness status strictly by txid: a resolver that asks
// the wrong (e.g. all-zero) txid gets errUnknownTxid rather than silently
// reusing another operation's answer, so a regression in which txid gets
// queried surfaces immediately instead of being masked.
type mapOracle struct {
	byTxid map[[32]byte]witness.WitnessOrd
}

func (o mapOracle) Status(txid [32]byte) (witness.WitnessOrd, error) {
	ord, ok := o.byTxid[txid]
	if !ok {
		return witness.WitnessOrd{}, errUnknownTxid
	}
	return ord, nil
}

func globalState(marker uint64) operation.State {
	return operation.State{Verifiable: operation.VerifiableState{Kind: operation.FieldU32, Elements: []uint64{marker}}}
}

// TestValidatePipelineOrdersByRealWitnessTxid runs the full nine-step
// pipeline against a two-transition consignment anchored to distinct
// witness transactions, with an oracle that only answers the real txids.
// A resolver that queries the wrong txid for either operation either errors
// out (txid not in the oracle's map) or — as happened when resolveOrd used
// an all-zero placeholder — silently gives both operations the same
// witness status, and the global-state fold then orders them by nonce
// instead of by confirmation height. The fixture's nonce order is the
// reverse of its height order specifically so that bug and the fix
// disagree on which value Global.Iter(1).Last() returns.
func TestValidatePipelineOrdersByRealWitnessTxid(t *testing.T) {
	sch := schema.Schema{
		GlobalTypes: map[operation.GlobalType]schema.FieldSpec{1: {Kind: operation.FieldU32}},
		Transitions: map[operation.TransitionType]schema.TransitionSchema{
			1: {SubSchema: schema.SubSchema{}},
		},
	}
	schemaId := sch.Id()

	genesis := operation.Genesis{SchemaId: schemaId}
	contractId := genesis.ContractId()

	const (
		heightA = 20 // newer by height
		heightB = 10 // older by height
	)
	trA := operation.Transition{
		ContractId: contractId, Type: 1, Nonce: 1, // older by nonce
		Globals: operation.GlobalState{Entries: []operation.GlobalEntry{{Type: 1, States: []operation.State{globalState(111)}}}},
	}
	trB := operation.Transition{
		ContractId: contractId, Type: 1, Nonce: 2, // newer by nonce
		Globals: operation.GlobalState{Entries: []operation.GlobalEntry{{Type: 1, States: []operation.State{globalState(222)}}}},
	}
	refA := operation.RefTransition(&trA)
	refB := operation.RefTransition(&trB)

	bundleA := anchor.TransitionBundle{Entries: []anchor.BundleEntry{{Op: refA.Id()}}}
	bundleB := anchor.TransitionBundle{Entries: []anchor.BundleEntry{{Op: refB.Id()}}}
	bidA, bidB := bundleA.Id(), bundleB.Id()

	var txidA, txidB [32]byte
	txidA[31] = 0xAA
	txidB[31] = 0xBB

	mmA := anchor.NewMultiMsgCommitment(1)
	_ = mmA.Insert(contractId, bidA)
	mmB := anchor.NewMultiMsgCommitment(1)
	_ = mmB.Insert(contractId, bidB)

	c := &fakeConsignment{
		sch:       sch,
		genesis:   genesis,
		bundleIds: []anchor.BundleId{bidA, bidB},
		bundles:   map[anchor.BundleId]anchor.TransitionBundle{bidA: bundleA, bidB: bundleB},
		anchors: map[anchor.BundleId]anchor.Anchor{
			bidA: {Txid: anchor.Txid(txidA), Commitment: mmA},
			bidB: {Txid: anchor.Txid(txidB), Commitment: mmB},
		},
		anchorTxids: map[anchor.BundleId][32]byte{bidA: txidA, bidB: txidB},
		ops:         map[operation.OpId]operation.OpRef{refA.Id(): refA, refB.Id(): refB},
		opWitness:   map[operation.OpId][32]byte{refA.Id(): txidA, refB.Id(): txidB},
	}

	oracle := mapOracle{byTxid: map[[32]byte]witness.WitnessOrd{
		txidA: {Kind: witness.Final, Height: heightA},
		txidB: {Kind: witness.Final, Height: heightB},
	}}

	v := NewValidator(oracle, zerolog.Nop(), nil)
	status, snapshot, err := v.Validate(c)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !status.Valid() {
		t.Fatalf("expected valid consignment, got failures: %+v", status.Failures)
	}

	it, ok := snapshot.Global.Iter(operation.GlobalType(1))
	if !ok {
		t.Fatalf("expected global type 1 history")
	}
	if it.Size() != 2 {
		t.Fatalf("expected 2 global entries, got %d", it.Size())
	}
	last, ok := it.Last()
	if !ok {
		t.Fatalf("expected a newest global entry")
	}
	if got := last.Verifiable.Elements[0]; got != 111 {
		t.Fatalf("newest global entry = %d, want 111 (trA, the higher witness height) — "+
			"got trB instead, consistent with resolveOrd resolving the wrong txid", got)
	}
}

// TestTopologicalOrderDetectsCycle exercises step 3-4's cycle detection
// directly: two transitions each closing the other's output form a 2-cycle
// that Kahn's algorithm must report rather than silently truncate.
func TestTopologicalOrderDetectsCycle(t *testing.T) {
	idA := operation.OpId{0x01}
	idB := operation.OpId{0x02}
	trA := operation.Transition{Inputs: []operation.Opout{{Op: idB}}}
	trB := operation.Transition{Inputs: []operation.Opout{{Op: idA}}}
	ops := map[operation.OpId]operation.OpRef{
		idA: operation.RefTransition(&trA),
		idB: operation.RefTransition(&trB),
	}

	order, err := topologicalOrder(operation.OpId{0xFF}, ops)
	if err == nil {
		t.Fatalf("expected cycle error, got order %v", order)
	}
}
