package main

import (
	"encoding/hex"
	"fmt"

	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/schema"
	"github.com/rgb-wg/rgb-core-go/seal"
)

// The jsonX types below mirror just enough of operation/schema's shapes to
// let a jsonConsignment describe a real Genesis (plus, optionally, a chain of
// transitions) over JSON wire bytes, using a hex-string-over-JSON
// convention rather than inventing a binary upload format.

type jsonState struct {
	Kind     string   `json:"kind"` // "u32", "u64", "u128"
	Elements []uint64 `json:"elements,omitempty"`
	Hi       []uint64 `json:"hi,omitempty"`
	InlineHex string  `json:"inline_hex,omitempty"`
}

func (s jsonState) decode() (operation.State, error) {
	var kind operation.FieldKind
	switch s.Kind {
	case "", "u32":
		kind = operation.FieldU32
	case "u64":
		kind = operation.FieldU64
	case "u128":
		kind = operation.FieldU128
	default:
		return operation.State{}, fmt.Errorf("state: unknown kind %q", s.Kind)
	}
	inline, err := decodeHex(s.InlineHex)
	if err != nil {
		return operation.State{}, fmt.Errorf("state: %w", err)
	}
	return operation.State{
		Verifiable: operation.VerifiableState{Kind: kind, Elements: s.Elements, Hi: s.Hi},
		Unverified: operation.UnverifiedState{Inline: inline},
	}, nil
}

type jsonAssign struct {
	SealTxidHex         string    `json:"seal_txid_hex,omitempty"`
	SealVout            uint32    `json:"seal_vout,omitempty"`
	SealWitnessRelative bool      `json:"seal_witness_relative,omitempty"`
	SealBlinding        uint64    `json:"seal_blinding,omitempty"`
	State               jsonState `json:"state"`
}

func (a jsonAssign) decode() (operation.Assign, error) {
	st, err := a.State.decode()
	if err != nil {
		return operation.Assign{}, err
	}
	var revealed seal.Revealed
	if a.SealWitnessRelative {
		revealed = seal.WitnessVout(a.SealBlinding, a.SealVout)
	} else {
		txidBytes, err := decodeHex(a.SealTxidHex)
		if err != nil {
			return operation.Assign{}, fmt.Errorf("assign: seal_txid_hex: %w", err)
		}
		var txid seal.Txid
		copy(txid[:], txidBytes)
		revealed = seal.TxOutpoint(a.SealBlinding, txid, a.SealVout)
	}
	return operation.Assign{
		SealRevealed: true,
		Seal:         revealed,
		State:        st,
		Lock:         operation.EmptyLock(),
		Fallback:     operation.EmptyFallback(),
	}, nil
}

type jsonTypedAssigns struct {
	Type    uint16       `json:"type"`
	Entries []jsonAssign `json:"entries"`
}

func decodeAssignments(in []jsonTypedAssigns) (operation.Assignments, error) {
	out := make([]operation.TypedAssigns, len(in))
	for i, t := range in {
		entries := make([]operation.Assign, len(t.Entries))
		for j, e := range t.Entries {
			a, err := e.decode()
			if err != nil {
				return operation.Assignments{}, fmt.Errorf("assignments[%d].entries[%d]: %w", i, j, err)
			}
			entries[j] = a
		}
		out[i] = operation.TypedAssigns{Type: operation.AssignmentType(t.Type), Entries: entries}
	}
	return operation.Assignments{Types: out}, nil
}

type jsonGlobalEntry struct {
	Type   uint16      `json:"type"`
	States []jsonState `json:"states"`
}

func decodeGlobals(in []jsonGlobalEntry) (operation.GlobalState, error) {
	out := make([]operation.GlobalEntry, len(in))
	for i, e := range in {
		states := make([]operation.State, len(e.States))
		for j, s := range e.States {
			st, err := s.decode()
			if err != nil {
				return operation.GlobalState{}, fmt.Errorf("globals[%d].states[%d]: %w", i, j, err)
			}
			states[j] = st
		}
		out[i] = operation.GlobalEntry{Type: operation.GlobalType(e.Type), States: states}
	}
	return operation.GlobalState{Entries: out}, nil
}

type jsonMetaEntry struct {
	Type  uint16    `json:"type"`
	State jsonState `json:"state"`
}

func decodeMetadata(in []jsonMetaEntry) (operation.Metadata, error) {
	out := make([]operation.MetadataEntry, len(in))
	for i, e := range in {
		st, err := e.State.decode()
		if err != nil {
			return operation.Metadata{}, fmt.Errorf("metadata[%d]: %w", i, err)
		}
		out[i] = operation.MetadataEntry{Type: operation.MetaType(e.Type), State: st.Verifiable}
	}
	return operation.Metadata{Entries: out}, nil
}

type jsonOpout struct {
	OpHex string `json:"op_hex"`
	Type  uint16 `json:"type"`
	Index uint16 `json:"index"`
}

func (o jsonOpout) decode() (operation.Opout, error) {
	b, err := decodeHex(o.OpHex)
	if err != nil || len(b) != 32 {
		return operation.Opout{}, fmt.Errorf("opout: bad op_hex")
	}
	var id operation.OpId
	copy(id[:], b)
	return operation.Opout{Op: id, Type: operation.AssignmentType(o.Type), Index: o.Index}, nil
}

type jsonGenesis struct {
	Nonce       uint64              `json:"nonce"`
	MetaHex     string              `json:"meta_hex,omitempty"`
	Metadata    []jsonMetaEntry     `json:"metadata,omitempty"`
	Globals     []jsonGlobalEntry   `json:"globals,omitempty"`
	Assignments []jsonTypedAssigns  `json:"assignments,omitempty"`
	ReservedHex string              `json:"reserved_hex,omitempty"`
}

func (g jsonGenesis) decode(schemaId operation.SchemaId) (operation.Genesis, error) {
	meta, err := decodeHex(g.MetaHex)
	if err != nil {
		return operation.Genesis{}, fmt.Errorf("genesis: meta_hex: %w", err)
	}
	metadata, err := decodeMetadata(g.Metadata)
	if err != nil {
		return operation.Genesis{}, fmt.Errorf("genesis: %w", err)
	}
	globals, err := decodeGlobals(g.Globals)
	if err != nil {
		return operation.Genesis{}, fmt.Errorf("genesis: %w", err)
	}
	assigns, err := decodeAssignments(g.Assignments)
	if err != nil {
		return operation.Genesis{}, fmt.Errorf("genesis: %w", err)
	}
	reserved, err := decodeHex(g.ReservedHex)
	if err != nil {
		return operation.Genesis{}, fmt.Errorf("genesis: reserved_hex: %w", err)
	}
	return operation.Genesis{
		SchemaId:    schemaId,
		Header:      operation.Header{Nonce: g.Nonce, Meta: meta},
		Metadata:    metadata,
		Globals:     globals,
		Assignments: assigns,
		Reserved:    reserved,
	}, nil
}

type jsonTransition struct {
	Type        uint16             `json:"type"`
	Nonce       uint64             `json:"nonce"`
	Inputs      []jsonOpout        `json:"inputs,omitempty"`
	Metadata    []jsonMetaEntry    `json:"metadata,omitempty"`
	Globals     []jsonGlobalEntry  `json:"globals,omitempty"`
	Assignments []jsonTypedAssigns `json:"assignments,omitempty"`
	ReservedHex string             `json:"reserved_hex,omitempty"`
	WitnessTxidHex string          `json:"witness_txid_hex"`
}

func (t jsonTransition) decode(contractId operation.ContractId) (operation.Transition, error) {
	inputs := make([]operation.Opout, len(t.Inputs))
	for i, o := range t.Inputs {
		decoded, err := o.decode()
		if err != nil {
			return operation.Transition{}, fmt.Errorf("transition.inputs[%d]: %w", i, err)
		}
		inputs[i] = decoded
	}
	metadata, err := decodeMetadata(t.Metadata)
	if err != nil {
		return operation.Transition{}, fmt.Errorf("transition: %w", err)
	}
	globals, err := decodeGlobals(t.Globals)
	if err != nil {
		return operation.Transition{}, fmt.Errorf("transition: %w", err)
	}
	assigns, err := decodeAssignments(t.Assignments)
	if err != nil {
		return operation.Transition{}, fmt.Errorf("transition: %w", err)
	}
	reserved, err := decodeHex(t.ReservedHex)
	if err != nil {
		return operation.Transition{}, fmt.Errorf("transition: reserved_hex: %w", err)
	}
	return operation.Transition{
		ContractId:  contractId,
		Type:        operation.TransitionType(t.Type),
		Nonce:       t.Nonce,
		Inputs:      inputs,
		Metadata:    metadata,
		Globals:     globals,
		Assignments: assigns,
		Reserved:    reserved,
	}, nil
}

type jsonOccurrences struct {
	Kind string `json:"kind"` // "once", "none_or_once", "once_or_up_to", "none_or_up_to"
	Max  uint16 `json:"max,omitempty"`
}

func (o jsonOccurrences) decode() (schema.Occurrences, error) {
	switch o.Kind {
	case "once":
		return schema.Occurrences{Kind: schema.Once}, nil
	case "none_or_once":
		return schema.Occurrences{Kind: schema.NoneOrOnce}, nil
	case "once_or_up_to":
		return schema.Occurrences{Kind: schema.OnceOrUpTo, Max: o.Max}, nil
	case "none_or_up_to":
		return schema.Occurrences{Kind: schema.NoneOrUpTo, Max: o.Max}, nil
	default:
		return schema.Occurrences{}, fmt.Errorf("occurrences: unknown kind %q", o.Kind)
	}
}

type jsonSubSchema struct {
	Metadata  map[string]jsonOccurrences `json:"metadata,omitempty"`
	Inputs    map[string]jsonOccurrences `json:"inputs,omitempty"`
	Outputs   map[string]jsonOccurrences `json:"outputs,omitempty"`
	Valencies map[string]jsonOccurrences `json:"valencies,omitempty"`
	ValidateProc string                  `json:"validate_proc,omitempty"`
}

var embeddedProcByName = map[string]schema.EmbeddedProcedure{
	"":                          schema.ProcNone,
	"no_inflation_by_sum":       schema.ProcNoInflationBySum,
	"fungible_inflation":        schema.ProcFungibleInflation,
	"nonfungible_inflation":     schema.ProcNonfungibleInflation,
	"identity_transfer":         schema.ProcIdentityTransfer,
	"rights_split":              schema.ProcRightsSplit,
	"proof_of_burn":             schema.ProcProofOfBurn,
	"proof_of_reserve":          schema.ProcProofOfReserve,
}

func (s jsonSubSchema) decode() (schema.SubSchema, error) {
	meta, err := decodeOccurrenceMapU16[operation.MetaType](s.Metadata)
	if err != nil {
		return schema.SubSchema{}, err
	}
	inputs, err := decodeOccurrenceMapU16[operation.AssignmentType](s.Inputs)
	if err != nil {
		return schema.SubSchema{}, err
	}
	outputs, err := decodeOccurrenceMapU16[operation.AssignmentType](s.Outputs)
	if err != nil {
		return schema.SubSchema{}, err
	}
	valencies, err := decodeOccurrenceMapU16[operation.ValencyType](s.Valencies)
	if err != nil {
		return schema.SubSchema{}, err
	}
	proc, ok := embeddedProcByName[s.ValidateProc]
	if !ok {
		return schema.SubSchema{}, fmt.Errorf("sub_schema: unknown validate_proc %q", s.ValidateProc)
	}
	actions := map[schema.ActionKind]schema.ScriptBinding{}
	if proc != schema.ProcNone {
		actions[schema.ActionValidate] = schema.ScriptBinding{Embedded: proc}
	}
	return schema.SubSchema{Metadata: meta, Inputs: inputs, Outputs: outputs, Valencies: valencies, Actions: actions}, nil
}

func decodeOccurrenceMapU16[T ~uint16](in map[string]jsonOccurrences) (map[T]schema.Occurrences, error) {
	out := make(map[T]schema.Occurrences, len(in))
	for k, v := range in {
		var id uint16
		if _, err := fmt.Sscanf(k, "%d", &id); err != nil {
			return nil, fmt.Errorf("occurrence map: bad type key %q", k)
		}
		occ, err := v.decode()
		if err != nil {
			return nil, err
		}
		out[T(id)] = occ
	}
	return out, nil
}

type jsonSchema struct {
	Genesis     jsonSubSchema            `json:"genesis"`
	Transitions map[string]jsonSubSchema `json:"transitions,omitempty"`
	Extensions  map[string]jsonSubSchema `json:"extensions,omitempty"`
}

func (s jsonSchema) decode() (schema.Schema, error) {
	genesis, err := s.Genesis.decode()
	if err != nil {
		return schema.Schema{}, fmt.Errorf("schema.genesis: %w", err)
	}
	transitions := make(map[operation.TransitionType]schema.TransitionSchema, len(s.Transitions))
	for k, v := range s.Transitions {
		var id uint16
		if _, err := fmt.Sscanf(k, "%d", &id); err != nil {
			return schema.Schema{}, fmt.Errorf("schema.transitions: bad type key %q", k)
		}
		sub, err := v.decode()
		if err != nil {
			return schema.Schema{}, fmt.Errorf("schema.transitions[%s]: %w", k, err)
		}
		transitions[operation.TransitionType(id)] = schema.TransitionSchema{SubSchema: sub}
	}
	extensions := make(map[operation.ExtensionType]schema.ExtensionSchema, len(s.Extensions))
	for k, v := range s.Extensions {
		var id uint16
		if _, err := fmt.Sscanf(k, "%d", &id); err != nil {
			return schema.Schema{}, fmt.Errorf("schema.extensions: bad type key %q", k)
		}
		sub, err := v.decode()
		if err != nil {
			return schema.Schema{}, fmt.Errorf("schema.extensions[%s]: %w", k, err)
		}
		extensions[operation.ExtensionType(id)] = schema.ExtensionSchema{SubSchema: sub}
	}
	return schema.Schema{
		Genesis:     genesis,
		Transitions: transitions,
		Extensions:  extensions,
	}, nil
}

type jsonConsignment struct {
	Schema      jsonSchema       `json:"schema"`
	Genesis     jsonGenesis      `json:"genesis"`
	Transitions []jsonTransition `json:"transitions,omitempty"`
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}
