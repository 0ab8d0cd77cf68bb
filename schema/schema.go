// Package schema validates the shape of an operation before its semantics
// are evaluated: declared type tables, occurrence bounds, and root-schema
// subsumption.
package schema

import (
	"github.com/rgb-wg/rgb-core-go/commitment"
	"github.com/rgb-wg/rgb-core-go/operation"
)

// Occurrences is the declared multiplicity bound for a type within an
// operation: Once, NoneOrOnce, OnceOrUpTo(n), NoneOrUpTo(n), with n capped
// at OccursUnbounded, the u16::MAX sentinel meaning "unbounded".
type OccurrenceKind uint8

const (
	Once OccurrenceKind = iota
	NoneOrOnce
	OnceOrUpTo
	NoneOrUpTo
)

// OccursUnbounded is the u16::MAX sentinel meaning "no upper bound".
const OccursUnbounded uint16 = 0xFFFF

type Occurrences struct {
	Kind OccurrenceKind
	Max  uint16 // only meaningful for OnceOrUpTo / NoneOrUpTo
}

func (o Occurrences) min() uint16 {
	switch o.Kind {
	case Once, OnceOrUpTo:
		return 1
	default:
		return 0
	}
}

func (o Occurrences) max() uint16 {
	switch o.Kind {
	case Once, NoneOrOnce:
		return 1
	default:
		return o.Max
	}
}

// Check reports whether count satisfies the bound.
func (o Occurrences) Check(count uint16) bool {
	if count < o.min() {
		return false
	}
	max := o.max()
	if max == OccursUnbounded {
		return true
	}
	return count <= max
}

// tighterOrEqual reports whether o is at least as tight as other — used by
// subsumption checking (a derived schema may only narrow a root schema's
// bounds, never widen them).
func (o Occurrences) tighterOrEqual(other Occurrences) bool {
	if o.min() < other.min() {
		return false
	}
	if other.max() == OccursUnbounded {
		return true
	}
	return o.max() != OccursUnbounded && o.max() <= other.max()
}

// FieldSpec declares an allowed metadata/global/owned-right type and the
// data-format bound its VerifiableState/UnverifiedState must satisfy.
type FieldSpec struct {
	Kind operation.FieldKind
}

// ActionKind names what a schema-bound procedure enforces. Validate is the
// only action currently defined; the enum is left open for future actions,
// so unknown kinds don't need a separate "unsupported" error path — they
// simply aren't declared here yet.
type ActionKind uint8

const ActionValidate ActionKind = 0

// EmbeddedProcedure enumerates the closed set of host-implemented checks a
// schema may bind an action to, instead of an AluVM library reference.
// Kept as a closed enumeration: these exercise host-side primitives
// (Pedersen sums, bulletproof verification) the scripting ISA can't
// express portably.
type EmbeddedProcedure uint8

const (
	ProcNone EmbeddedProcedure = iota
	ProcNoInflationBySum
	ProcFungibleInflation
	ProcNonfungibleInflation
	ProcIdentityTransfer
	ProcRightsSplit
	ProcProofOfBurn
	ProcProofOfReserve
)

// ScriptBinding is either an EmbeddedProcedure or a reference to a
// user-supplied AluVM library routine, identified by (library hash, offset).
type ScriptBinding struct {
	Embedded   EmbeddedProcedure // ProcNone if LibraryRef is used instead
	LibraryRef [32]byte
	Offset     uint16
}

// SubSchema is shared by the genesis sub-schema and every
// Transition/Extension sub-schema: it declares occurrence bounds over
// metadata, closed inputs (transitions only), newly defined outputs, and
// valencies, plus the action->procedure ABI.
type SubSchema struct {
	Metadata   map[operation.MetaType]Occurrences
	Inputs     map[operation.AssignmentType]Occurrences // empty for genesis/extension
	Outputs    map[operation.AssignmentType]Occurrences
	Valencies  map[operation.ValencyType]Occurrences
	Actions    map[ActionKind]ScriptBinding
}

type TransitionSchema struct {
	SubSchema
}

type ExtensionSchema struct {
	SubSchema
}

// SchemaId tags a schema. It is an alias of operation.SchemaId, which is
// defined in the operation package so Genesis can reference it without an
// import cycle.
type SchemaId = operation.SchemaId

// Schema is a frozen document of field/owned-right/valency type tables,
// the genesis sub-schema, per-type transition/extension sub-schemas, and
// an optional root schema id for subsumption.
type Schema struct {
	GlobalTypes map[operation.GlobalType]FieldSpec
	OwnedTypes  map[operation.AssignmentType]FieldSpec
	ValencyTypes map[operation.ValencyType]struct{}
	Genesis     SubSchema
	Transitions map[operation.TransitionType]TransitionSchema
	Extensions  map[operation.ExtensionType]ExtensionSchema
	RootSchemaId *SchemaId // nil when this schema has no root
}

// Id computes the schema's tagged-hash identifier. The exact byte layout of
// a Schema is an internal matter of this package (the concrete encoding of
// type tables is unspecified beyond "a frozen document"), so CommitEncode
// only needs to be deterministic and injective over this package's own
// Schema values, not interoperate with a wire format defined elsewhere.
func (s Schema) Id() SchemaId {
	w := commitment.NewWriter()
	s.commitEncode(w)
	return SchemaId(commitment.TaggedHash(operation.SchemaIdTag, w.Bytes()))
}

func (s Schema) commitEncode(w *commitment.Writer) {
	writeGlobalTypes(w, s.GlobalTypes)
	writeOwnedTypes(w, s.OwnedTypes)
	writeValencyTypes(w, s.ValencyTypes)
	writeSubSchema(w, s.Genesis)
	writeTransitions(w, s.Transitions)
	writeExtensions(w, s.Extensions)
	if s.RootSchemaId != nil {
		w.PutU8(1)
		w.PutBytes(s.RootSchemaId[:])
	} else {
		w.PutU8(0)
	}
}
