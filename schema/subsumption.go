package schema

import "fmt"

// ErrorCode is a small stable vocabulary of sentinel codes rather than
// free-form error strings, so golden fixtures and callers can match on
// cause.
type ErrorCode string

const (
	ErrSchemaRootHierarchy      ErrorCode = "SCHEMA_ROOT_HIERARCHY"
	ErrSchemaRootNoFieldMatch   ErrorCode = "SCHEMA_ROOT_NO_FIELD_MATCH"
	ErrSchemaRootNoOwnedMatch   ErrorCode = "SCHEMA_ROOT_NO_OWNED_MATCH"
	ErrSchemaRootNoValencyMatch ErrorCode = "SCHEMA_ROOT_NO_VALENCY_MATCH"
	ErrSchemaRootLooserBound    ErrorCode = "SCHEMA_ROOT_LOOSER_BOUND"
)

// SchemaError pairs a stable code with a human-readable detail.
type SchemaError struct {
	Code ErrorCode
	Msg  string
}

func (e *SchemaError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Msg) }

func schemaErr(code ErrorCode, format string, args ...any) error {
	return &SchemaError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CheckSubsumption implements the root-schema subsumption rule: if a schema
// declares root_schema_id, every declared field/owned/valency type must be
// present in the root with identical constraints or tighter occurrences,
// and the root must not itself declare a root.
func CheckSubsumption(derived, root Schema) error {
	if root.RootSchemaId != nil {
		return schemaErr(ErrSchemaRootHierarchy, "root schema must not itself declare a root_schema_id")
	}

	for ty, spec := range derived.GlobalTypes {
		rootSpec, ok := root.GlobalTypes[ty]
		if !ok || rootSpec.Kind != spec.Kind {
			return schemaErr(ErrSchemaRootNoFieldMatch, "global type %d absent or mismatched in root schema", ty)
		}
	}
	for ty, spec := range derived.OwnedTypes {
		rootSpec, ok := root.OwnedTypes[ty]
		if !ok || rootSpec.Kind != spec.Kind {
			return schemaErr(ErrSchemaRootNoOwnedMatch, "owned-right type %d absent or mismatched in root schema", ty)
		}
	}
	for ty := range derived.ValencyTypes {
		if _, ok := root.ValencyTypes[ty]; !ok {
			return schemaErr(ErrSchemaRootNoValencyMatch, "valency type %d absent in root schema", ty)
		}
	}

	if err := checkSubSchemaTighter(derived.Genesis, root.Genesis); err != nil {
		return err
	}
	for ty, sub := range derived.Transitions {
		rootSub, ok := root.Transitions[ty]
		if !ok {
			return schemaErr(ErrSchemaRootNoOwnedMatch, "transition type %d absent in root schema", ty)
		}
		if err := checkSubSchemaTighter(sub.SubSchema, rootSub.SubSchema); err != nil {
			return err
		}
	}
	for ty, sub := range derived.Extensions {
		rootSub, ok := root.Extensions[ty]
		if !ok {
			return schemaErr(ErrSchemaRootNoOwnedMatch, "extension type %d absent in root schema", ty)
		}
		if err := checkSubSchemaTighter(sub.SubSchema, rootSub.SubSchema); err != nil {
			return err
		}
	}
	return nil
}

func checkSubSchemaTighter(derived, root SubSchema) error {
	checks := []struct {
		name string
		d, r map[uint16]Occurrences
	}{
		{"metadata", widen(derived.Metadata), widen(root.Metadata)},
		{"input", widen(derived.Inputs), widen(root.Inputs)},
		{"output", widen(derived.Outputs), widen(root.Outputs)},
		{"valency", widen(derived.Valencies), widen(root.Valencies)},
	}
	for _, c := range checks {
		for ty, occ := range c.d {
			rootOcc, ok := c.r[ty]
			if !ok {
				return schemaErr(ErrSchemaRootNoFieldMatch, "%s type %d absent in root sub-schema", c.name, ty)
			}
			if !occ.tighterOrEqual(rootOcc) {
				return schemaErr(ErrSchemaRootLooserBound, "%s type %d widens root occurrence bound", c.name, ty)
			}
		}
	}
	return nil
}

func widen[T ~uint16](m map[T]Occurrences) map[uint16]Occurrences {
	out := make(map[uint16]Occurrences, len(m))
	for k, v := range m {
		out[uint16(k)] = v
	}
	return out
}
