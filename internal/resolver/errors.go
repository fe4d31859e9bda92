package resolver

import "fmt"

// Kind classifies an assembly-time failure per spec.md §7.
type Kind string

const (
	KindLexical  Kind = "lexical"
	KindSemantic Kind = "semantic"
	KindIO       Kind = "io"
	KindRange    Kind = "range"
)

// AssemblyError names the offending token or label alongside the source
// line it came from. Every resolver failure is wrapped in one of these —
// the assembler never recovers, it reports and stops (spec.md §7).
type AssemblyError struct {
	Kind      Kind
	Line      string
	Offending string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("%s: %s (line: %q)", e.Kind, e.Offending, e.Line)
}

func newError(kind Kind, line, offending string) *AssemblyError {
	return &AssemblyError{Kind: kind, Line: line, Offending: offending}
}
