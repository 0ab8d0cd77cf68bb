// Package seal implements the single-use-seal revealed/concealed duality:
// Revealed carries the outpoint (or witness-relative vout) a state is bound
// to; Confidential carries only its 32-byte hash, until the owner chooses to
// reveal it.
package seal

import (
	"errors"

	"github.com/rgb-wg/rgb-core-go/commitment"
)

// Txid is a 32-byte Bitcoin transaction id, big-endian (display order),
// stored opaque here: this package never parses or validates Bitcoin wire
// data, it only hashes and compares ids handed to it by the anchor layer.
type Txid [32]byte

// Confidential is the concealed form of a seal: the tagged hash of its
// revealed form. Two concealed seals are equal iff their revealed forms
// would conceal to the same hash.
type Confidential commitment.Id32

// sealTag is the domain-separation tag for seal conceal hashing: the
// revealed form blinding || txid || vout is hashed with commitment.TaggedHash
// under this tag, the same double-prefixed SHA-256(tag) construction used
// for commit ids.
const sealTag = "seal"

// ErrWitnessVoutUnresolved is returned by TryIntoOutpoint when the seal is a
// WitnessVout and no anchoring txid has been supplied yet.
var ErrWitnessVoutUnresolved = errors.New("seal: witness-vout seal has no resolved txid")

// Revealed is the disclosed form of a seal: either a self-contained
// TxOutpoint, or a WitnessVout that borrows its txid from whatever
// transaction ends up anchoring it.
type Revealed struct {
	// WitnessRelative is true for WitnessVout, false for TxOutpoint.
	WitnessRelative bool
	Blinding        uint64
	Txid            Txid // zero and ignored when WitnessRelative is true
	Vout            uint32
}

// TxOutpoint builds a self-contained, already-anchored seal.
func TxOutpoint(blinding uint64, txid Txid, vout uint32) Revealed {
	return Revealed{WitnessRelative: false, Blinding: blinding, Txid: txid, Vout: vout}
}

// WitnessVout builds a seal whose txid is only known once a witness
// transaction anchors it.
func WitnessVout(blinding uint64, vout uint32) Revealed {
	return Revealed{WitnessRelative: true, Blinding: blinding, Vout: vout}
}

func encodeForConceal(blinding uint64, txid Txid, vout uint32) []byte {
	w := commitment.NewWriter()
	w.PutU64(blinding)
	w.PutBytes(txid[:])
	w.PutU32(vout)
	return w.Bytes()
}

// Conceal hashes the revealed seal's self-contained form. For a WitnessVout
// it requires the caller to have already substituted the anchoring txid via
// WithTxid; calling Conceal on an unresolved WitnessVout panics, since
// every call site in this repo resolves before concealing (see
// Revealed.WithTxid).
func (r Revealed) Conceal() Confidential {
	if r.WitnessRelative {
		panic("seal: Conceal called on unresolved WitnessVout; call WithTxid first")
	}
	msg := encodeForConceal(r.Blinding, r.Txid, r.Vout)
	h := commitment.TaggedHash(sealTag, msg)
	return Confidential(h)
}

// WithTxid substitutes the anchoring transaction's txid into a WitnessVout,
// turning it into a resolved, concealable seal. Calling it on a TxOutpoint
// is a no-op that returns r unchanged: outpoint seals are already
// self-contained.
func (r Revealed) WithTxid(txid Txid) Revealed {
	if !r.WitnessRelative {
		return r
	}
	r.Txid = txid
	r.WitnessRelative = false
	return r
}

// Outpoint is the plain (txid, vout) pair a closed seal ultimately points
// at on-chain.
type Outpoint struct {
	Txid Txid
	Vout uint32
}

// TryIntoOutpoint succeeds for a TxOutpoint seal, and fails with
// ErrWitnessVoutUnresolved for a WitnessVout that has not yet been
// resolved against a witness transaction.
func (r Revealed) TryIntoOutpoint() (Outpoint, error) {
	if r.WitnessRelative {
		return Outpoint{}, ErrWitnessVoutUnresolved
	}
	return Outpoint{Txid: r.Txid, Vout: r.Vout}, nil
}
