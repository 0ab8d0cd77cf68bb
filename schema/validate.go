package schema

import "github.com/rgb-wg/rgb-core-go/operation"

const (
	ErrSchemaUnknown      ErrorCode = "SCHEMA_UNKNOWN"
	ErrOccurrenceMismatch ErrorCode = "OCCURRENCE_MISMATCH"
	ErrInputTypeMismatch  ErrorCode = "INPUT_TYPE_MISMATCH"
)

// OccurrenceMismatch is returned once per violated bound, carrying enough
// detail to reproduce the literal scenario message:
// "Failure::OccurrenceMismatch(Name, found=2, expected=Once)".
type OccurrenceMismatch struct {
	Code     ErrorCode
	TypeId   uint16
	Found    int
	Expected Occurrences
}

func (e *OccurrenceMismatch) Error() string { return string(e.Code) }

// ValidateShape checks a single operation against its resolved sub-schema:
// occurrence bounds over metadata/inputs/outputs/valencies, and — for
// transitions — that each referenced parent output's assignment type
// matches the declared input type. It returns every violation rather than
// stopping at the first, since the validation pipeline must stay
// exhaustive.
func ValidateShape(s Schema, op operation.OpRef, parentAssignmentType func(operation.Opout) (operation.AssignmentType, bool)) []error {
	var errs []error

	sub, ok := subSchemaFor(s, op.FullType())
	if !ok {
		errs = append(errs, schemaErr(ErrSchemaUnknown, "no sub-schema declared for full type %+v", op.FullType()))
		return errs
	}

	errs = append(errs, checkOccurrences("metadata", sub.Metadata, countMetadata(op.Metadata()))...)
	errs = append(errs, checkOccurrences("output", sub.Outputs, countAssignments(op.Assignments()))...)

	if len(sub.Inputs) > 0 || len(op.Inputs()) > 0 {
		errs = append(errs, checkOccurrences("input", sub.Inputs, countInputs(op.Inputs(), parentAssignmentType))...)
	}

	if len(sub.Valencies) > 0 || len(op.Valencies()) > 0 {
		errs = append(errs, checkOccurrences("valency", sub.Valencies, countValencies(op.Valencies()))...)
	}

	for _, opout := range op.Inputs() {
		declaredType, ok := parentAssignmentType(opout)
		if !ok {
			continue // unresolved inputs are reported by the validator, not here
		}
		if declaredType != opout.Type {
			errs = append(errs, schemaErr(ErrInputTypeMismatch,
				"opout %x/%d/%d references assignment type %d but parent declares %d",
				opout.Op, opout.Type, opout.Index, opout.Type, declaredType))
		}
	}

	return errs
}

func subSchemaFor(s Schema, ft operation.FullType) (SubSchema, bool) {
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

func countMetadata(m operation.Metadata) map[uint16]int {
	counts := make(map[uint16]int, len(m.Entries))
	for _, e := range m.Entries {
		counts[uint16(e.Type)]++
	}
	return counts
}

func countAssignments(a operation.Assignments) map[uint16]int {
	counts := make(map[uint16]int, len(a.Types))
	for _, t := range a.Types {
		counts[uint16(t.Type)] += len(t.Entries)
	}
	return counts
}

func countInputs(inputs []operation.Opout, parentType func(operation.Opout) (operation.AssignmentType, bool)) map[uint16]int {
	counts := make(map[uint16]int, len(inputs))
	for _, o := range inputs {
		ty := o.Type
		if declared, ok := parentType(o); ok {
			ty = declared
		}
		counts[uint16(ty)]++
	}
	return counts
}

func countValencies(valencies []operation.ValencyType) map[uint16]int {
	counts := make(map[uint16]int, len(valencies))
	for _, v := range valencies {
		counts[uint16(v)]++
	}
	return counts
}

func checkOccurrences[T ~uint16](kind string, declared map[T]Occurrences, found map[uint16]int) []error {
	var errs []error
	seen := make(map[uint16]bool, len(found))
	for ty, occ := range declared {
		n := found[uint16(ty)]
		seen[uint16(ty)] = true
		if !occ.Check(uint16(clampCount(n))) {
			errs = append(errs, &OccurrenceMismatch{
				Code: ErrOccurrenceMismatch, TypeId: uint16(ty), Found: n, Expected: occ,
			})
		}
	}
	for ty, n := range found {
		if !seen[ty] && n > 0 {
			errs = append(errs, &OccurrenceMismatch{
				Code: ErrOccurrenceMismatch, TypeId: ty, Found: n, Expected: Occurrences{Kind: NoneOrUpTo, Max: 0},
			})
		}
	}
	_ = kind
	return errs
}

func clampCount(n int) int {
	if n > int(OccursUnbounded) {
		return int(OccursUnbounded)
	}
	return n
}
