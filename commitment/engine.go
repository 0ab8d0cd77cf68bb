package commitment

// Encodable is implemented by every consensus type that participates in
// commit-encoding: CommitEncode appends the type's canonical strict-encoded
// representation to w, in the exact field order fixed for that type.
type Encodable interface {
	CommitEncode(w *Writer)
}

// Engine drives commit_id(x) = TaggedHash(tag, commit_encode(x)) for any
// Encodable, and exposes the two sub-operations this scheme names:
// commit_to_serialized (append a child's own strict encoding inline) and
// commit_to_merkle (append the 32-byte root of a child container instead of
// the container itself, so the parent's id doesn't grow with the
// container's size).
type Engine struct {
	w *Writer
}

func NewEngine() *Engine { return &Engine{w: NewWriter()} }

// CommitToSerialized inlines x's own strict encoding into the parent.
func (e *Engine) CommitToSerialized(x Encodable) {
	x.CommitEncode(e.w)
}

// CommitToMerkle inlines the merkle root over leaves into the parent,
// instead of the leaves themselves.
func (e *Engine) CommitToMerkle(leaves [][32]byte) {
	root := MerkleRoot(leaves)
	e.w.PutBytes(root[:])
}

// Writer exposes the underlying strict-encoding sink for primitive fields
// (ty, state, reserved bytes) that don't need the Encodable indirection.
func (e *Engine) Writer() *Writer { return e.w }

// Finish tags the accumulated encoding and returns the commit id.
func (e *Engine) Finish(tag string) Id32 {
	return Id32(TaggedHash(tag, e.w.Bytes()))
}

// CommitId is a convenience wrapper for the common case: one Encodable,
// tagged once, no extra merkle children appended at the top level.
func CommitId(tag string, x Encodable) Id32 {
	e := NewEngine()
	e.CommitToSerialized(x)
	return e.Finish(tag)
}
