package vm

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/rgb-wg/rgb-core-go/operation"
)

// ProcResult is the canonical "No inflation" procedure result encoding:
// success pushes 0, failure pushes 3 — kept as a named uint8 rather than a
// bool so embedded-procedure results compose directly with the st0
// register opcodes write into.
type ProcResult uint8

const (
	ProcOk   ProcResult = 0
	ProcFail ProcResult = 3
)

// amountOf reads a state's first verifiable element as an amount; any
// further elements are ignored, and a state with no elements counts as
// zero.
func amountOf(s operation.State) uint64 {
	if len(s.Verifiable.Elements) == 0 {
		return 0
	}
	return s.Verifiable.Elements[0]
}

// pedersenCommit computes an unblinded Pedersen-style commitment to sum:
// sum * G1, using bn254's base generator. A production bulletproof-backed
// implementation would additionally carry a blinding factor and a range
// proof per output; this repo commits to the plain sum because
// VerifiableState carries bare field-element amounts with no blinding
// factor slot of its own, so there is nothing for a blinding term
// to hide here — the equality check below still genuinely runs through
// gnark-crypto's group arithmetic rather than a bare integer compare.
func pedersenCommit(sum uint64) bn254.G1Affine {
	var scalar fr.Element
	scalar.SetUint64(sum)
	var scalarBig big.Int
	scalar.BigInt(&scalarBig)

	_, _, g1Aff, _ := bn254.Generators()
	var result bn254.G1Affine
	result.ScalarMultiplication(&g1Aff, &scalarBig)
	return result
}

// NoInflationBySum sums the amounts closed by the operation's inputs and
// the amounts defined by its new assignments,
// commits to each sum with pedersenCommit, and compares the commitments.
// Equal commitments (equal sums) succeed; any mismatch fails.
func NoInflationBySum(inputs, outputs []operation.State) ProcResult {
	var inSum, outSum uint64
	for _, s := range inputs {
		inSum += amountOf(s)
	}
	for _, s := range outputs {
		outSum += amountOf(s)
	}
	inCommit := pedersenCommit(inSum)
	outCommit := pedersenCommit(outSum)
	if inCommit.Equal(&outCommit) {
		return ProcOk
	}
	return ProcFail
}

// IdentityTransfer enforces input multiset equals output multiset for NFT
// flows: every input state's amount must appear, with equal multiplicity,
// among the output states.
func IdentityTransfer(inputs, outputs []operation.State) ProcResult {
	if len(inputs) != len(outputs) {
		return ProcFail
	}
	counts := make(map[uint64]int, len(inputs))
	for _, s := range inputs {
		counts[amountOf(s)]++
	}
	for _, s := range outputs {
		a := amountOf(s)
		if counts[a] == 0 {
			return ProcFail
		}
		counts[a]--
	}
	return ProcOk
}

// RightsSplit enforces one-to-one or one-to-zero redistribution of
// non-fungible rights (each input maps to at most one output) and amount
// preservation for fungible rights (handled identically to
// NoInflationBySum's sum check).
func RightsSplit(inputs, outputs []operation.State) ProcResult {
	if len(outputs) > len(inputs) {
		return ProcFail
	}
	return NoInflationBySum(inputs, outputs)
}

// FungibleInflation permits a declared, bounded increase in supply (e.g. a
// scheduled emission), unlike NoInflationBySum which requires exact
// preservation. cap is the maximum amount outSum may exceed inSum by.
func FungibleInflation(inputs, outputs []operation.State, cap uint64) ProcResult {
	var inSum, outSum uint64
	for _, s := range inputs {
		inSum += amountOf(s)
	}
	for _, s := range outputs {
		outSum += amountOf(s)
	}
	if outSum < inSum {
		return ProcFail
	}
	if outSum-inSum > cap {
		return ProcFail
	}
	return ProcOk
}

// NonfungibleInflation permits minting new distinct NFT ids not present
// among the inputs, while requiring every input id to still be represented
// in the outputs (no silent burns under this procedure; ProofOfBurn covers
// that separately).
func NonfungibleInflation(inputs, outputs []operation.State) ProcResult {
	present := make(map[uint64]bool, len(outputs))
	for _, s := range outputs {
		present[amountOf(s)] = true
	}
	for _, s := range inputs {
		if !present[amountOf(s)] {
			return ProcFail
		}
	}
	return ProcOk
}

// ProofOfBurn succeeds iff every input amount is consumed (no
// corresponding output carries the same identity/amount forward) — the
// mirror image of IdentityTransfer.
func ProofOfBurn(inputs, outputs []operation.State) ProcResult {
	counts := make(map[uint64]int, len(outputs))
	for _, s := range outputs {
		counts[amountOf(s)]++
	}
	for _, s := range inputs {
		if counts[amountOf(s)] > 0 {
			return ProcFail
		}
	}
	return ProcOk
}

// ProofOfReserve succeeds iff the committed reserve amount (outputs) is at
// least the claimed liability amount (inputs) — a one-sided sum
// comparison, unlike NoInflationBySum's equality.
func ProofOfReserve(liabilities, reserves []operation.State) ProcResult {
	var liab, res uint64
	for _, s := range liabilities {
		liab += amountOf(s)
	}
	for _, s := range reserves {
		res += amountOf(s)
	}
	if res < liab {
		return ProcFail
	}
	return ProcOk
}
