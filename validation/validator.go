package validation

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rgb-wg/rgb-core-go/anchor"
	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/schema"
	"github.com/rgb-wg/rgb-core-go/state"
	"github.com/rgb-wg/rgb-core-go/vm"
	"github.com/rgb-wg/rgb-core-go/witness"
)

// Validator runs the validation pipeline against one Consignment at a
// time. It is single-threaded and stateless between calls — validation is
// a pure function over its inputs — so a Validator value may be shared
// across goroutines validating distinct consignments in parallel as long
// as the injected Oracle is safe for concurrent reads.
type Validator struct {
	Oracle  witness.Oracle
	Log     zerolog.Logger
	Metrics *Metrics
}

// NewValidator wires a Validator with its ambient logging/metrics stack.
// Passing a zerolog.Nop() logger and nil Metrics is valid for tests that
// don't care about observability.
func NewValidator(oracle witness.Oracle, log zerolog.Logger, metrics *Metrics) *Validator {
	return &Validator{Oracle: oracle, Log: log, Metrics: metrics}
}

// Validate runs the full nine-step validation pipeline against c and
// returns the accumulated Status plus the folded ContractState (nil when the
// fold itself fails). It never short-circuits on a Failure — every step
// records what it finds and continues, so the returned Status is exhaustive.
func (v *Validator) Validate(c Consignment) (*Status, *state.ContractState, error) {
	start := time.Now()
	jobId := uuid.New()
	logger := v.Log.With().Str("job_id", jobId.String()).Logger()
	status := &Status{}

	checked := NewCheckedConsignment(c)
	sch := checked.Schema()
	genesis := checked.Genesis()

	// Step 1-2: recompute SchemaId and ContractId.
	schemaId := sch.Id()
	if schemaId != genesis.SchemaId {
		status.addFailure(CodeSchemaUnknown, genesis.Id(),
			"genesis references schema %x, recomputed schema id is %x", genesis.SchemaId, schemaId)
	}
	contractId := genesis.ContractId()

	if root, ok := checked.RootSchema(); ok {
		if err := schema.CheckSubsumption(sch, root); err != nil {
			status.addFailure(CodeSchemaRootHierarchy, genesis.Id(), "%s", err.Error())
		}
	}

	// Step 3-4: build the graph, resolving inputs, detecting cycles.
	allOps := v.collectOperations(checked, genesis)
	order, cycleErr := topologicalOrder(genesis.Id(), allOps)
	if cycleErr != nil {
		status.addFailure(CodeCycle, operation.OpId{}, "%s", cycleErr.Error())
	}

	for _, ref := range allOps {
		for _, opout := range ref.Inputs() {
			if _, ok := allOps[opout.Op]; !ok {
				status.addFailure(CodeUnresolvedInput, ref.Id(),
					"input %x/%d/%d does not resolve to a known operation", opout.Op, opout.Type, opout.Index)
			}
		}
	}

	// Step 5: schema validation per operation, accumulating failures.
	parentType := func(o operation.Opout) (operation.AssignmentType, bool) {
		parent, ok := allOps[o.Op]
		if !ok {
			return 0, false
		}
		for _, t := range parent.Assignments().Types {
			if t.Type == o.Type {
				return t.Type, true
			}
		}
		return 0, false
	}
	for _, ref := range allOps {
		findings := shapeFindings(sch, ref, parentType)
		for _, f := range findings {
			status.Failures = append(status.Failures, f)
		}
		v.Metrics.recordOperation(findings)
		logger.Debug().Str("op_id", idHex(ref.Id())).Int("findings", len(findings)).Msg("operation validated")
	}

	// Step 6: bundle disjointness and BundleId recomputation.
	for _, bid := range checked.BundleIds() {
		bundle, ok := checked.Bundle(bid)
		if !ok {
			continue
		}
		if !bundle.InputsDisjoint() {
			status.addFailure(CodeBundleInputsOverlap, operation.OpId{}, "bundle %x has overlapping inputs", bid)
		}
		if recomputed := bundle.Id(); recomputed != bid {
			status.addFailure(CodeBundleInputsOverlap, operation.OpId{}, "bundle %x recomputes to %x", bid, recomputed)
		}

		// Step 7: anchor verification against the witness transaction.
		witnessTxid, anc, ok := checked.Anchor(bid)
		if !ok {
			status.addFailure(CodeAnchorMismatch, operation.OpId{}, "no anchor found for bundle %x", bid)
			continue
		}
		if anc.Txid != (anchor.Txid)(witnessTxid) {
			status.addFailure(CodeAnchorMismatch, operation.OpId{}, "anchor txid does not match witness transaction for bundle %x", bid)
		}
	}

	// Step 8: fold contract state using the witness-ordering oracle.
	inputs := make([]state.FoldInput, 0, len(order))
	for _, id := range order {
		ref := allOps[id]
		ord, hasWitness, resolvedTxid := v.resolveOrd(checked, ref, genesis.Id())
		if !ord.IsGenesis && ord.Witness.Kind == witness.Archived {
			continue // archived operations are left out of the fold
		}
		inputs = append(inputs, state.FoldInput{
			Op: ref, Ord: ord, ResolvedTxid: resolvedTxid, HasWitness: hasWitness,
		})
	}
	snapshot, err := state.Fold(schemaId, contractId, inputs)
	if err != nil {
		status.addFailure(CodeSizeLimit, operation.OpId{}, "%s", err.Error())
		logger.Info().Err(err).Msg("contract state fold failed")
	}

	// Step 9: evaluate each operation's schema-declared embedded Validate
	// procedure over the states its inputs close and its new assignments
	// define. The procedures read no contract-state snapshot.
	for _, id := range order {
		ref := allOps[id]
		sub, ok := subSchemaFor(sch, ref.FullType())
		if !ok {
			continue
		}
		binding, ok := sub.Actions[schema.ActionValidate]
		if !ok || binding.Embedded == schema.ProcNone {
			continue
		}
		result := evaluateEmbedded(binding.Embedded, ref, parentType, checked)
		if result != vm.ProcOk {
			status.addFailure(CodeScriptFailure, ref.Id(), "embedded procedure %d failed", binding.Embedded)
		}
	}

	v.Metrics.observeConsignmentSeconds(time.Since(start).Seconds())
	logger.Info().Bool("valid", status.Valid()).Int("failures", len(status.Failures)).Msg("consignment validated")
	return status, snapshot, nil
}

func idHex(id operation.OpId) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 8)
	for i := 0; i < 4; i++ {
		out[i*2] = hextable[id[i]>>4]
		out[i*2+1] = hextable[id[i]&0xf]
	}
	return string(out)
}

func (v *Validator) collectOperations(c *CheckedConsignment, genesis operation.Genesis) map[operation.OpId]operation.OpRef {
	out := map[operation.OpId]operation.OpRef{genesis.Id(): operation.RefGenesis(&genesis)}
	for _, bid := range c.BundleIds() {
		bundle, ok := c.Bundle(bid)
		if !ok {
			continue
		}
		for _, e := range bundle.Entries {
			if ref, ok := c.Operation(e.Op); ok {
				out[e.Op] = ref
			}
		}
	}
	return out
}

func (v *Validator) resolveOrd(c *CheckedConsignment, ref operation.OpRef, genesisId operation.OpId) (witness.OpOrd, bool, [32]byte) {
	if ref.Id() == genesisId {
		return witness.OpOrd{IsGenesis: true}, false, [32]byte{}
	}
	rank := witness.RankTransition
	if ref.IsExtension() {
		rank = witness.RankExtension
	}
	ord := witness.OpOrd{TypeRank: rank, Nonce: ref.Nonce(), OpId: ref.Id()}
	txid, ok := c.OpWitnessId(ref.Id())
	if !ok || v.Oracle == nil {
		return ord, false, [32]byte{}
	}
	w, err := v.Oracle.Status(txid)
	if err != nil {
		return ord, false, [32]byte{}
	}
	ord.Witness = w
	return ord, w.Kind != witness.Archived, txid
}

func subSchemaFor(s schema.Schema, ft operation.FullType) (schema.SubSchema, bool) {
	switch ft.Kind {
	case operation.FullGenesis:
		return s.Genesis, true
	case operation.FullTransition:
		ts, ok := s.Transitions[operation.TransitionType(ft.Sub)]
		return ts.SubSchema, ok
	default:
		es, ok := s.Extensions[operation.ExtensionType(ft.Sub)]
		return es.SubSchema, ok
	}
}

func shapeFindings(s schema.Schema, ref operation.OpRef, parentType func(operation.Opout) (operation.AssignmentType, bool)) []Finding {
	errs := schema.ValidateShape(s, ref, parentType)
	out := make([]Finding, 0, len(errs))
	for _, e := range errs {
		out = append(out, newFinding(SeverityFailure, CodeOccurrenceMismatch, ref.Id(), "%s", e.Error()))
	}
	return out
}
