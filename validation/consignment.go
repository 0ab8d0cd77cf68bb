package validation

import (
	"fmt"

	"github.com/rgb-wg/rgb-core-go/anchor"
	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/schema"
)

// Consignment is the external collaborator the core asks for: schema,
// genesis, bundle ids/contents, anchors, operations, and the
// operation-to-witness mapping.
type Consignment interface {
	Schema() schema.Schema
	RootSchema() (schema.Schema, bool)
	Genesis() operation.Genesis
	BundleIds() []anchor.BundleId
	Bundle(id anchor.BundleId) (anchor.TransitionBundle, bool)
	Anchor(bundleId anchor.BundleId) (witnessTxid [32]byte, a anchor.Anchor, ok bool)
	Operation(id operation.OpId) (operation.OpRef, bool)
	OpWitnessId(id operation.OpId) ([32]byte, bool)
}

// CheckedConsignment wraps a Consignment and enforces id-to-object
// consistency (operation(id).id() == id) on every read.
type CheckedConsignment struct {
	inner Consignment
}

func NewCheckedConsignment(c Consignment) *CheckedConsignment {
	return &CheckedConsignment{inner: c}
}

// ErrIdMismatch is a caller-bug-grade invariant break: a consignment that
// hands back an operation whose own id() disagrees with the key it was
// looked up under.
type ErrIdMismatch struct {
	Requested operation.OpId
	Got       operation.OpId
}

func (e *ErrIdMismatch) Error() string {
	return fmt.Sprintf("validation: consignment returned operation %x for request %x", e.Got, e.Requested)
}

func (c *CheckedConsignment) Schema() schema.Schema                 { return c.inner.Schema() }
func (c *CheckedConsignment) RootSchema() (schema.Schema, bool)     { return c.inner.RootSchema() }
func (c *CheckedConsignment) Genesis() operation.Genesis            { return c.inner.Genesis() }
func (c *CheckedConsignment) BundleIds() []anchor.BundleId          { return c.inner.BundleIds() }

func (c *CheckedConsignment) Bundle(id anchor.BundleId) (anchor.TransitionBundle, bool) {
	return c.inner.Bundle(id)
}

func (c *CheckedConsignment) Anchor(bundleId anchor.BundleId) ([32]byte, anchor.Anchor, bool) {
	return c.inner.Anchor(bundleId)
}

// Operation looks up an operation and panics with *ErrIdMismatch if the
// consignment violates id-to-object consistency — a well-behaved
// consignment can never trigger it, so this is reserved for the
// validator's own invariant breaks rather than ordinary input errors.
func (c *CheckedConsignment) Operation(id operation.OpId) (operation.OpRef, bool) {
	ref, ok := c.inner.Operation(id)
	if !ok {
		return operation.OpRef{}, false
	}
	if got := ref.Id(); got != id {
		panic(&ErrIdMismatch{Requested: id, Got: got})
	}
	return ref, true
}

func (c *CheckedConsignment) OpWitnessId(id operation.OpId) ([32]byte, bool) {
	return c.inner.OpWitnessId(id)
}
