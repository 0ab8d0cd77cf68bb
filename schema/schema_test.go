package schema

import (
	"testing"

	"github.com/rgb-wg/rgb-core-go/operation"
)

func TestOccurrencesCheck(t *testing.T) {
	cases := []struct {
		name  string
		occ   Occurrences
		count uint16
		want  bool
	}{
		{"once satisfied", Occurrences{Kind: Once}, 1, true},
		{"once violated by zero", Occurrences{Kind: Once}, 0, false},
		{"once violated by two", Occurrences{Kind: Once}, 2, false},
		{"none-or-once allows zero", Occurrences{Kind: NoneOrOnce}, 0, true},
		{"once-or-up-to allows bound", Occurrences{Kind: OnceOrUpTo, Max: 5}, 5, true},
		{"once-or-up-to rejects over bound", Occurrences{Kind: OnceOrUpTo, Max: 5}, 6, false},
		{"none-or-up-to unbounded", Occurrences{Kind: NoneOrUpTo, Max: OccursUnbounded}, 9999, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.occ.Check(c.count); got != c.want {
				t.Fatalf("Check(%d) = %v, want %v", c.count, got, c.want)
			}
		})
	}
}

// TestOccurrenceMismatchScenario covers the canonical occurrence-check
// scenario: a schema declaring metadata(Name) = Once, against an operation with two
// Name fields, must report OccurrenceMismatch(Name, found=2, expected=Once).
func TestOccurrenceMismatchScenario(t *testing.T) {
	const nameType operation.MetaType = 1
	s := Schema{
		Genesis: SubSchema{
			Metadata: map[operation.MetaType]Occurrences{nameType: {Kind: Once}},
		},
	}
	op := operation.Genesis{
		Metadata: operation.Metadata{Entries: []operation.MetadataEntry{
			{Type: nameType, State: operation.VerifiableState{}},
			{Type: nameType, State: operation.VerifiableState{}},
		}},
	}
	errs := ValidateShape(s, operation.RefGenesis(&op), noParent)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one mismatch, got %d: %v", len(errs), errs)
	}
	mismatch, ok := errs[0].(*OccurrenceMismatch)
	if !ok {
		t.Fatalf("expected *OccurrenceMismatch, got %T", errs[0])
	}
	if mismatch.TypeId != uint16(nameType) || mismatch.Found != 2 || mismatch.Expected.Kind != Once {
		t.Fatalf("unexpected mismatch detail: %+v", mismatch)
	}
}

func TestOccurrenceSatisfiedProducesNoError(t *testing.T) {
	const nameType operation.MetaType = 1
	s := Schema{
		Genesis: SubSchema{
			Metadata: map[operation.MetaType]Occurrences{nameType: {Kind: Once}},
		},
	}
	op := operation.Genesis{
		Metadata: operation.Metadata{Entries: []operation.MetadataEntry{
			{Type: nameType, State: operation.VerifiableState{}},
		}},
	}
	errs := ValidateShape(s, operation.RefGenesis(&op), noParent)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestSubsumptionRejectsRootWithRoot(t *testing.T) {
	rootId := operation.SchemaId{0x01}
	root := Schema{RootSchemaId: &rootId}
	derived := Schema{}
	err := CheckSubsumption(derived, root)
	if err == nil {
		t.Fatalf("expected error when root schema itself has a root")
	}
	se, ok := err.(*SchemaError)
	if !ok || se.Code != ErrSchemaRootHierarchy {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubsumptionRejectsLooserBound(t *testing.T) {
	const ty operation.MetaType = 5
	root := Schema{
		Genesis: SubSchema{
			Metadata: map[operation.MetaType]Occurrences{ty: {Kind: Once}},
		},
	}
	derived := Schema{
		Genesis: SubSchema{
			Metadata: map[operation.MetaType]Occurrences{ty: {Kind: NoneOrUpTo, Max: OccursUnbounded}},
		},
	}
	if err := CheckSubsumption(derived, root); err == nil {
		t.Fatalf("expected error: derived widens root's Once bound to unbounded")
	}
}

func noParent(operation.Opout) (operation.AssignmentType, bool) { return 0, false }
