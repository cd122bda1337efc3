package diag

import "capy/internal/source"

// Note is auxiliary context attached to a Diagnostic (e.g. "first defined
// here" pointing at an earlier span).
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one kind-tagged record produced by a pipeline phase.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Primary  source.Span
	Notes    []Note

	// Reason refines MutabilityViolation; zero for every other Kind.
	Reason MutabilityReason
}

// New builds an Error-severity diagnostic.
func New(kind Kind, primary source.Span, message string) *Diagnostic {
	return &Diagnostic{Severity: Error, Kind: kind, Primary: primary, Message: message}
}

// WithNote appends a Note and returns the receiver for chaining.
func (d *Diagnostic) WithNote(span source.Span, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Span: span, Msg: msg})
	return d
}

// WithSeverity overrides the default severity.
func (d *Diagnostic) WithSeverity(s Severity) *Diagnostic {
	d.Severity = s
	return d
}

// WithReason attaches a MutabilityReason (only meaningful on
// MutabilityViolation diagnostics).
func (d *Diagnostic) WithReason(r MutabilityReason) *Diagnostic {
	d.Reason = r
	return d
}
