// Package diag is the diagnostics plumbing shared by every phase: kind-tagged,
// severity-leveled records carrying a source range. Rendering diagnostics to
// a terminal or an editor is someone else's job — this package only
// produces and collects the records.
package diag

// Severity ranks how serious a diagnostic is.
type Severity uint8

const (
	Help Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Help:
		return "help"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}
