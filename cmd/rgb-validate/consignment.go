package main

import (
	"crypto/sha256"
	"fmt"

	"github.com/rgb-wg/rgb-core-go/anchor"
	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/schema"
)

// memConsignment is an in-process validation.Consignment built directly
// from a decoded jsonConsignment: every transition is bundled 1:1 with a
// single-entry TransitionBundle and anchored by a synthetic Anchor whose
// txid is the transition's declared witness txid, which is sufficient to
// exercise the validation pipeline's graph/bundle/anchor/fold/VM steps end
// to end without requiring a real Bitcoin transaction or indexer.
type memConsignment struct {
	schema      schema.Schema
	genesis     operation.Genesis
	operations  map[operation.OpId]operation.OpRef
	bundleIds   []anchor.BundleId
	bundles     map[anchor.BundleId]anchor.TransitionBundle
	anchors     map[anchor.BundleId]anchor.Anchor
	anchorTxids map[anchor.BundleId][32]byte
	opWitness   map[operation.OpId][32]byte
}

func buildConsignment(doc jsonConsignment) (*memConsignment, error) {
	sch, err := doc.Schema.decode()
	if err != nil {
		return nil, err
	}
	genesis, err := doc.Genesis.decode(sch.Id())
	if err != nil {
		return nil, err
	}
	contractId := genesis.ContractId()

	c := &memConsignment{
		schema:      sch,
		genesis:     genesis,
		operations:  map[operation.OpId]operation.OpRef{genesis.Id(): operation.RefGenesis(&genesis)},
		bundles:     map[anchor.BundleId]anchor.TransitionBundle{},
		anchors:     map[anchor.BundleId]anchor.Anchor{},
		anchorTxids: map[anchor.BundleId][32]byte{},
		opWitness:   map[operation.OpId][32]byte{},
	}

	for i := range doc.Transitions {
		tr, err := doc.Transitions[i].decode(contractId)
		if err != nil {
			return nil, fmt.Errorf("transitions[%d]: %w", i, err)
		}
		ref := operation.RefTransition(&tr)
		c.operations[ref.Id()] = ref

		witnessTxidBytes, err := decodeHex(doc.Transitions[i].WitnessTxidHex)
		if err != nil || len(witnessTxidBytes) != 32 {
			return nil, fmt.Errorf("transitions[%d]: bad witness_txid_hex", i)
		}
		var witnessTxid [32]byte
		copy(witnessTxid[:], witnessTxidBytes)
		c.opWitness[ref.Id()] = witnessTxid

		bundle := anchor.TransitionBundle{Entries: []anchor.BundleEntry{{Op: ref.Id(), Inputs: tr.Inputs}}}
		bundleId := bundle.Id()
		c.bundleIds = append(c.bundleIds, bundleId)
		c.bundles[bundleId] = bundle

		mm := anchor.NewMultiMsgCommitment(1)
		if err := mm.Insert(contractId, bundleId); err != nil {
			return nil, fmt.Errorf("transitions[%d]: %w", i, err)
		}
		pub := syntheticPubkey(witnessTxid)
		c.anchors[bundleId] = anchor.Anchor{
			Txid:       anchor.Txid(witnessTxid),
			Commitment: mm,
			Proof:      anchor.Proof{Kind: anchor.ProofSinglePubkey, PubkeyOrInternalKey: pub},
		}
		c.anchorTxids[bundleId] = witnessTxid
	}

	return c, nil
}

// syntheticPubkey derives a deterministic, clearly-not-a-real-key 33-byte
// value from the witness txid so Anchor has something stable to carry as
// its pre-tweak key when the caller supplies no real one — the validator
// only ever compares the anchor's declared txid to the witness, it never
// asks this CLI to verify the LNPBP-1 tweak against a live UTXO.
func syntheticPubkey(txid [32]byte) [33]byte {
	h := sha256.Sum256(txid[:])
	var out [33]byte
	out[0] = 0x02
	copy(out[1:], h[:])
	return out
}

func (c *memConsignment) Schema() schema.Schema { return c.schema }

func (c *memConsignment) RootSchema() (schema.Schema, bool) { return schema.Schema{}, false }

func (c *memConsignment) Genesis() operation.Genesis { return c.genesis }

func (c *memConsignment) BundleIds() []anchor.BundleId { return c.bundleIds }

func (c *memConsignment) Bundle(id anchor.BundleId) (anchor.TransitionBundle, bool) {
	b, ok := c.bundles[id]
	return b, ok
}

func (c *memConsignment) Anchor(bundleId anchor.BundleId) ([32]byte, anchor.Anchor, bool) {
	a, ok := c.anchors[bundleId]
	if !ok {
		return [32]byte{}, anchor.Anchor{}, false
	}
	return c.anchorTxids[bundleId], a, true
}

func (c *memConsignment) Operation(id operation.OpId) (operation.OpRef, bool) {
	ref, ok := c.operations[id]
	return ref, ok
}

func (c *memConsignment) OpWitnessId(id operation.OpId) ([32]byte, bool) {
	txid, ok := c.opWitness[id]
	return txid, ok
}
