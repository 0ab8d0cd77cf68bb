package validation

import (
	"bytes"
	"errors"
	"sort"

	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/schema"
	"github.com/rgb-wg/rgb-core-go/vm"
)

var errCycle = errors.New("validation: operation graph contains a cycle")

// topologicalOrder runs the operation graph's cycle check via Kahn's
// algorithm over the closed-input edges (parent -> child). Ties among
// simultaneously-ready nodes break on ascending OpId bytes so two callers
// given the same operation set always see the same order, independent of
// Go's randomized map iteration.
func topologicalOrder(genesisId operation.OpId, ops map[operation.OpId]operation.OpRef) ([]operation.OpId, error) {
	indegree := make(map[operation.OpId]int, len(ops))
	children := make(map[operation.OpId][]operation.OpId, len(ops))
	for id := range ops {
		indegree[id] = 0
	}
	for id, ref := range ops {
		for _, opout := range ref.Inputs() {
			if _, ok := ops[opout.Op]; !ok {
				continue // unresolved input; reported separately by the caller
			}
			children[opout.Op] = append(children[opout.Op], id)
			indegree[id]++
		}
	}

	var ready []operation.OpId
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sortIds(ready)

	order := make([]operation.OpId, 0, len(ops))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		var newlyReady []operation.OpId
		for _, child := range children[next] {
			indegree[child]--
			if indegree[child] == 0 {
				newlyReady = append(newlyReady, child)
			}
		}
		sortIds(newlyReady)
		ready = mergeSorted(ready, newlyReady)
	}

	if len(order) != len(ops) {
		return order, errCycle
	}
	return order, nil
}

func sortIds(ids []operation.OpId) {
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
}

// mergeSorted merges two already-sorted OpId slices, preserving order.
func mergeSorted(a, b []operation.OpId) []operation.OpId {
	if len(b) == 0 {
		return a
	}
	out := make([]operation.OpId, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if bytes.Compare(a[i][:], b[j][:]) <= 0 {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// evaluateEmbedded dispatches one operation's schema-declared Validate
// binding to the matching host procedure in package vm, resolving its
// inputs' states from the parent operations it closes and its outputs'
// states from its own new assignments. ProcNone never reaches here (the
// caller only invokes this when a binding names an embedded procedure).
func evaluateEmbedded(proc schema.EmbeddedProcedure, ref operation.OpRef, parentType func(operation.Opout) (operation.AssignmentType, bool), c *CheckedConsignment) vm.ProcResult {
	inputs := resolveInputStates(ref, c)
	outputs := collectOutputStates(ref)

	switch proc {
	case schema.ProcNoInflationBySum:
		return vm.NoInflationBySum(inputs, outputs)
	case schema.ProcFungibleInflation:
		return vm.FungibleInflation(inputs, outputs, ^uint64(0))
	case schema.ProcNonfungibleInflation:
		return vm.NonfungibleInflation(inputs, outputs)
	case schema.ProcIdentityTransfer:
		return vm.IdentityTransfer(inputs, outputs)
	case schema.ProcRightsSplit:
		return vm.RightsSplit(inputs, outputs)
	case schema.ProcProofOfBurn:
		return vm.ProofOfBurn(inputs, outputs)
	case schema.ProcProofOfReserve:
		return vm.ProofOfReserve(inputs, outputs)
	default:
		return vm.ProcOk
	}
}

func resolveInputStates(ref operation.OpRef, c *CheckedConsignment) []operation.State {
	var out []operation.State
	for _, opout := range ref.Inputs() {
		parent, ok := c.Operation(opout.Op)
		if !ok {
			continue
		}
		for _, t := range parent.Assignments().Types {
			if t.Type != opout.Type {
				continue
			}
			if int(opout.Index) < len(t.Entries) {
				out = append(out, t.Entries[opout.Index].State)
			}
		}
	}
	return out
}

func collectOutputStates(ref operation.OpRef) []operation.State {
	var out []operation.State
	for _, t := range ref.Assignments().Types {
		for _, a := range t.Entries {
			out = append(out, a.State)
		}
	}
	return out
}
