package schema

import (
	"sort"

	"github.com/rgb-wg/rgb-core-go/commitment"
	"github.com/rgb-wg/rgb-core-go/operation"
)

// Every type table below is a Go map, so encoding must explicitly sort keys
// ascending before writing — map iteration order is randomized by the
// runtime and would otherwise make Schema.Id() non-deterministic, breaking
// the "Merkle leaves for maps are ordered by key ascending" invariant.

func sortedU16Keys[T ~uint16](m map[T]Occurrences) []T {
	keys := make([]T, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func writeOccurrences(w *commitment.Writer, o Occurrences) {
	w.PutU8(uint8(o.Kind))
	w.PutU16(o.Max)
}

func writeGlobalTypes(w *commitment.Writer, m map[operation.GlobalType]FieldSpec) {
	keys := make([]operation.GlobalType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	w.PutU16(uint16(len(keys)))
	for _, k := range keys {
		w.PutU16(uint16(k))
		w.PutU8(uint8(m[k].Kind))
	}
}

func writeOwnedTypes(w *commitment.Writer, m map[operation.AssignmentType]FieldSpec) {
	keys := make([]operation.AssignmentType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	w.PutU16(uint16(len(keys)))
	for _, k := range keys {
		w.PutU16(uint16(k))
		w.PutU8(uint8(m[k].Kind))
	}
}

func writeValencyTypes(w *commitment.Writer, m map[operation.ValencyType]struct{}) {
	keys := make([]operation.ValencyType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	w.PutU16(uint16(len(keys)))
	for _, k := range keys {
		w.PutU16(uint16(k))
	}
}

func writeOccurrenceMap[T ~uint16](w *commitment.Writer, m map[T]Occurrences) {
	keys := sortedU16Keys(m)
	w.PutU16(uint16(len(keys)))
	for _, k := range keys {
		w.PutU16(uint16(k))
		writeOccurrences(w, m[k])
	}
}

func writeActions(w *commitment.Writer, m map[ActionKind]ScriptBinding) {
	keys := make([]ActionKind, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	w.PutU16(uint16(len(keys)))
	for _, k := range keys {
		w.PutU8(uint8(k))
		b := m[k]
		w.PutU8(uint8(b.Embedded))
		w.PutBytes(b.LibraryRef[:])
		w.PutU16(b.Offset)
	}
}

func writeSubSchema(w *commitment.Writer, s SubSchema) {
	writeOccurrenceMap(w, s.Metadata)
	writeOccurrenceMap(w, s.Inputs)
	writeOccurrenceMap(w, s.Outputs)
	writeOccurrenceMap(w, s.Valencies)
	writeActions(w, s.Actions)
}

func writeTransitions(w *commitment.Writer, m map[operation.TransitionType]TransitionSchema) {
	keys := make([]operation.TransitionType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	w.PutU16(uint16(len(keys)))
	for _, k := range keys {
		w.PutU16(uint16(k))
		writeSubSchema(w, m[k].SubSchema)
	}
}

func writeExtensions(w *commitment.Writer, m map[operation.ExtensionType]ExtensionSchema) {
	keys := make([]operation.ExtensionType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	w.PutU16(uint16(len(keys)))
	for _, k := range keys {
		w.PutU16(uint16(k))
		writeSubSchema(w, m[k].SubSchema)
	}
}
