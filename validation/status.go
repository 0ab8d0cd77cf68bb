// Package validation implements the consignment validation pipeline:
// topological traversal, schema checks, seal verification, and VM
// invocation.
package validation

import "github.com/rgb-wg/rgb-core-go/operation"

// Code is the stable error-taxonomy vocabulary exposed to callers, a
// small closed set of string constants so golden fixtures stay stable
// across releases.
type Code string

const (
	CodeSchemaUnknown          Code = "SCHEMA_UNKNOWN"
	CodeSchemaRootHierarchy    Code = "SCHEMA_ROOT_HIERARCHY"
	CodeSchemaRootNoFieldMatch Code = "SCHEMA_ROOT_NO_FIELD_MATCH"
	CodeUnresolvedInput        Code = "UNRESOLVED_INPUT"
	CodeCycle                  Code = "CYCLE"
	CodeOccurrenceMismatch     Code = "OCCURRENCE_MISMATCH"
	CodeBundleInputsOverlap    Code = "BUNDLE_INPUTS_OVERLAP"
	CodeAnchorMismatch         Code = "ANCHOR_MISMATCH"
	CodeSealInvalid            Code = "SEAL_INVALID"
	CodeScriptFailure          Code = "SCRIPT_FAILURE"
	CodeScriptLibAbsent        Code = "SCRIPT_LIB_ABSENT"
	CodeSizeLimit              Code = "SIZE_LIMIT"
)

// Severity is one of the pipeline's three severities.
type Severity uint8

const (
	SeverityFailure Severity = iota
	SeverityWarning
	SeverityInfo
)

// Finding is one accumulated validation result: a stable code, a
// human-readable detail, and the operation it concerns (the zero OpId when
// it's consignment-wide rather than per-operation).
type Finding struct {
	Severity Severity
	Code     Code
	Message  string
	Op       operation.OpId
}

func (f Finding) Error() string { return string(f.Code) + ": " + f.Message }

// Status is the pipeline's verdict: the full accumulation of findings
// across all three severities. The validator never short-circuits on a
// failure; every step runs to completion.
type Status struct {
	Failures []Finding
	Warnings []Finding
	Infos    []Finding
}

// Valid reports the pipeline's verdict rule: valid iff the failure list
// is empty.
func (s *Status) Valid() bool { return len(s.Failures) == 0 }

func (s *Status) addFailure(code Code, op operation.OpId, format string, args ...any) {
	s.Failures = append(s.Failures, newFinding(SeverityFailure, code, op, format, args...))
}

func (s *Status) addWarning(code Code, op operation.OpId, format string, args ...any) {
	s.Warnings = append(s.Warnings, newFinding(SeverityWarning, code, op, format, args...))
}

func (s *Status) addInfo(code Code, op operation.OpId, format string, args ...any) {
	s.Infos = append(s.Infos, newFinding(SeverityInfo, code, op, format, args...))
}
