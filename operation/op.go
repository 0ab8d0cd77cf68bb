package operation

import (
	"sort"

	"github.com/rgb-wg/rgb-core-go/commitment"
)

// OpIdTag and ContractIdTag are the exact UTF-8 domain-separation string
// used by every conforming implementation.
const (
	OpIdTag       = "urn:lnp-bp:rgb:operation#2024-02-03"
	ContractIdTag = OpIdTag // ContractId == genesis.op_id(), same tag domain
)

// SchemaIdTag is the schema commitment's domain-separation tag.
const SchemaIdTag = "urn:lnp-bp:rgb:schema#2024-10-23"

type (
	OpId       commitment.Id32
	ContractId commitment.Id32
	// SchemaId lives in this package, not the schema package, so that
	// Genesis can reference it without an import cycle (the schema package
	// itself depends on operation's type vocabulary).
	SchemaId commitment.Id32
)

// Opout names one output of an operation: (OpId, AssignmentType, index).
type Opout struct {
	Op    OpId
	Type  AssignmentType
	Index uint16
}

// FullType discriminates the three operation variants and, for
// transition/extension, carries the schema-declared subtype.
type FullTypeKind uint8

const (
	FullGenesis FullTypeKind = iota
	FullTransition
	FullExtension
)

type FullType struct {
	Kind FullTypeKind
	Sub  uint16 // TransitionType or ExtensionType; unused for Genesis
}

// Header carries genesis-only metadata: a nonce plus arbitrary contract
// meta bytes the schema interprets (chain parameters, issue text, etc).
type Header struct {
	Nonce uint64
	Meta  []byte
}

func (h Header) CommitEncode(w *commitment.Writer) {
	putLE64(w, h.Nonce)
	w.PutBytes24(h.Meta)
}

// Genesis is the root operation of a contract. Its OpId equals the
// contract's ContractId.
type Genesis struct {
	SchemaId    SchemaId
	Header      Header
	Metadata    Metadata
	Globals     GlobalState
	Assignments Assignments
	Reserved    []byte
}

// CommitEncode follows a fixed field order: schema_id, header,
// metadata(merkle), globals(merkle), assignments(merkle), reserved.
// Reordering this is a consensus fork.
func (g Genesis) CommitEncode(w *commitment.Writer) {
	w.PutBytes(g.SchemaId[:])
	g.Header.CommitEncode(w)
	g.Metadata.CommitEncode(w)
	g.Globals.CommitEncode(w)
	g.Assignments.CommitEncode(w)
	w.PutBytes24(g.Reserved)
}

// Id computes the genesis's OpId, which doubles as the contract's
// ContractId.
func (g Genesis) Id() OpId { return OpId(commitment.CommitId(OpIdTag, g)) }

// ContractId derives the contract id from this genesis.
func (g Genesis) ContractId() ContractId { return ContractId(g.Id()) }

func (g Genesis) FullType() FullType { return FullType{Kind: FullGenesis} }

// Transition spends a set of prior Opouts and defines new assignments under
// the same contract.
type Transition struct {
	ContractId ContractId
	Type       TransitionType
	Nonce      uint64
	Inputs     []Opout // merklized in canonical (Op, Type, Index) order regardless of caller order; no duplicates
	Metadata   Metadata
	Globals    GlobalState
	Assignments Assignments
	Reserved   []byte
}

func (t Transition) inputLeaves() [][32]byte {
	sorted := sortedOpouts(t.Inputs)
	leaves := make([][32]byte, len(sorted))
	for i, o := range sorted {
		w := commitment.NewWriter()
		w.PutBytes(o.Op[:])
		w.PutU16(uint16(o.Type))
		w.PutU16(o.Index)
		leaves[i] = commitment.LeafHash(w.Bytes())
	}
	return leaves
}

// sortedOpouts returns inputs in canonical (Op, Type, Index) order so two
// callers supplying the same logical input set in different orders commit
// to the same Merkle root.
func sortedOpouts(inputs []Opout) []Opout {
	sorted := append([]Opout(nil), inputs...)
	sort.Slice(sorted, func(i, j int) bool { return lessOpout(sorted[i], sorted[j]) })
	return sorted
}

func lessOpout(a, b Opout) bool {
	for i := range a.Op {
		if a.Op[i] != b.Op[i] {
			return a.Op[i] < b.Op[i]
		}
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.Index < b.Index
}

// CommitEncode follows commit.rs's Transition<Seal> order: contract_id,
// transition_type, nonce, inputs(merkle), metadata(merkle),
// globals(merkle), assignments(merkle), reserved.
func (t Transition) CommitEncode(w *commitment.Writer) {
	w.PutBytes(t.ContractId[:])
	w.PutU16(uint16(t.Type))
	putLE64(w, t.Nonce)
	root := commitment.MerkleRoot(t.inputLeaves())
	w.PutBytes(root[:])
	t.Metadata.CommitEncode(w)
	t.Globals.CommitEncode(w)
	t.Assignments.CommitEncode(w)
	w.PutBytes24(t.Reserved)
}

func (t Transition) Id() OpId { return OpId(commitment.CommitId(OpIdTag, t)) }

func (t Transition) FullType() FullType {
	return FullType{Kind: FullTransition, Sub: uint16(t.Type)}
}

// Extension redeems valencies (public rights) rather than spending inputs.
type Extension struct {
	ContractId ContractId
	Type       ExtensionType
	Metadata   Metadata
	Globals    GlobalState
	Assignments Assignments
	Valencies  []ValencyType // redeemed valencies; ordered ascending
	Reserved   []byte
}

// CommitEncode follows commit.rs's Extension<Seal> order: contract_id,
// extension_type (no inputs field, unlike Transition), metadata(merkle),
// globals(merkle), assignments(merkle), valencies(merkle), reserved.
func (e Extension) CommitEncode(w *commitment.Writer) {
	w.PutBytes(e.ContractId[:])
	w.PutU16(uint16(e.Type))
	e.Metadata.CommitEncode(w)
	e.Globals.CommitEncode(w)
	e.Assignments.CommitEncode(w)

	leaves := make([][32]byte, len(e.Valencies))
	for i, v := range e.Valencies {
		vw := commitment.NewWriter()
		vw.PutU16(uint16(v))
		leaves[i] = commitment.LeafHash(vw.Bytes())
	}
	root := commitment.MerkleRoot(leaves)
	w.PutBytes(root[:])
	w.PutBytes24(e.Reserved)
}

func (e Extension) Id() OpId { return OpId(commitment.CommitId(OpIdTag, e)) }

func (e Extension) FullType() FullType {
	return FullType{Kind: FullExtension, Sub: uint16(e.Type)}
}

// OpRef polymorphs read-only access over the three operation variants so
// the validator and VM can treat them uniformly. It holds exactly one of
// the three variants.
type OpRef struct {
	genesis    *Genesis
	transition *Transition
	extension  *Extension
}

func RefGenesis(g *Genesis) OpRef       { return OpRef{genesis: g} }
func RefTransition(t *Transition) OpRef { return OpRef{transition: t} }
func RefExtension(e *Extension) OpRef   { return OpRef{extension: e} }

func (r OpRef) Id() OpId {
	switch {
	case r.genesis != nil:
		return r.genesis.Id()
	case r.transition != nil:
		return r.transition.Id()
	default:
		return r.extension.Id()
	}
}

func (r OpRef) ContractId() ContractId {
	switch {
	case r.genesis != nil:
		return r.genesis.ContractId()
	case r.transition != nil:
		return r.transition.ContractId
	default:
		return r.extension.ContractId
	}
}

func (r OpRef) FullType() FullType {
	switch {
	case r.genesis != nil:
		return r.genesis.FullType()
	case r.transition != nil:
		return r.transition.FullType()
	default:
		return r.extension.FullType()
	}
}

func (r OpRef) Metadata() Metadata {
	switch {
	case r.genesis != nil:
		return r.genesis.Metadata
	case r.transition != nil:
		return r.transition.Metadata
	default:
		return r.extension.Metadata
	}
}

func (r OpRef) Globals() GlobalState {
	switch {
	case r.genesis != nil:
		return r.genesis.Globals
	case r.transition != nil:
		return r.transition.Globals
	default:
		return r.extension.Globals
	}
}

func (r OpRef) Assignments() Assignments {
	switch {
	case r.genesis != nil:
		return r.genesis.Assignments
	case r.transition != nil:
		return r.transition.Assignments
	default:
		return r.extension.Assignments
	}
}

// Inputs returns the Opouts this operation spends. Genesis and Extension
// never spend inputs, so they return nil.
func (r OpRef) Inputs() []Opout {
	if r.transition != nil {
		return r.transition.Inputs
	}
	return nil
}

// Valencies returns the valency types this operation redeems. Only
// Extension redeems valencies, so Genesis and Transition return nil.
func (r OpRef) Valencies() []ValencyType {
	if r.extension != nil {
		return r.extension.Valencies
	}
	return nil
}

// Nonce returns the operation's nonce. Extension carries none in this
// data model, so it returns 0.
func (r OpRef) Nonce() uint64 {
	switch {
	case r.genesis != nil:
		return r.genesis.Header.Nonce
	case r.transition != nil:
		return r.transition.Nonce
	default:
		return 0
	}
}

// IsGenesis, IsTransition, IsExtension let callers avoid repeated FullType
// switches for the common case of "which variant is this".
func (r OpRef) IsGenesis() bool    { return r.genesis != nil }
func (r OpRef) IsTransition() bool { return r.transition != nil }
func (r OpRef) IsExtension() bool  { return r.extension != nil }

// Genesis, TransitionOp, ExtensionOp give typed access back to the
// concrete variant once a caller has checked Is*.
func (r OpRef) Genesis() *Genesis       { return r.genesis }
func (r OpRef) TransitionOp() *Transition { return r.transition }
func (r OpRef) ExtensionOp() *Extension   { return r.extension }
