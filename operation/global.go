package operation

import "github.com/rgb-wg/rgb-core-go/commitment"

// GlobalEntry is one GlobalStateType's bounded, ordered vector of State
// values; index 0 is most recent for that type, and that ordering is
// consensus-significant.
type GlobalEntry struct {
	Type   GlobalType
	States []State // non-empty; caller-ordered, index 0 most recent
}

func (g GlobalEntry) leafHashes() [][32]byte {
	leaves := make([][32]byte, len(g.States))
	for i, s := range g.States {
		w := commitment.NewWriter()
		w.PutU16(uint16(g.Type))
		s.CommitEncode(w)
		leaves[i] = commitment.LeafHash(w.Bytes())
	}
	return leaves
}

// GlobalState is the bounded map GlobalStateType -> NonEmptyVec<State>.
// Entries must be ordered by Type ascending, same discipline as
// Assignments.
type GlobalState struct {
	Entries []GlobalEntry
}

func (g GlobalState) CommitEncode(w *commitment.Writer) {
	groupRoots := make([][32]byte, len(g.Entries))
	for i, e := range g.Entries {
		root := commitment.MerkleRoot(e.leafHashes())
		tw := commitment.NewWriter()
		tw.PutU16(uint16(e.Type))
		tw.PutBytes(root[:])
		groupRoots[i] = commitment.LeafHash(tw.Bytes())
	}
	top := commitment.MerkleRoot(groupRoots)
	w.PutBytes(top[:])
}

// Metadata is the bounded map MetaType -> VerifiableState; each type
// appears at most once per operation, so unlike GlobalState there is no
// inner vector to merklize.
type MetadataEntry struct {
	Type  MetaType
	State VerifiableState
}

type Metadata struct {
	Entries []MetadataEntry // must be ordered by Type ascending
}

func (m Metadata) CommitEncode(w *commitment.Writer) {
	leaves := make([][32]byte, len(m.Entries))
	for i, e := range m.Entries {
		tw := commitment.NewWriter()
		tw.PutU16(uint16(e.Type))
		e.State.CommitEncode(tw)
		leaves[i] = commitment.LeafHash(tw.Bytes())
	}
	root := commitment.MerkleRoot(leaves)
	w.PutBytes(root[:])
}
