// Package identity guesses which installed application owns a process.
package identity

// Display is what a consumer shows for a resolved application.
type Display struct {
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Registry answers questions about installed applications and owners.
type Registry interface {
	// CandidateIdentifiersForOwnerID lists the applications sharing a uid,
	// in registry order.
	CandidateIdentifiersForOwnerID(id int) []string
	IsRegisteredIdentifier(identifier string) bool
	DisplayMetadata(identifier string) (Display, bool)
	NumericIDForOwnerName(name string) (int, bool)
}

// ProcessMeta reads per-process metadata from the operating system.
type ProcessMeta interface {
	// CanonicalProcessName is the argument vector with NUL separators
	// turned into spaces, trimmed.
	CanonicalProcessName(pid int) (string, bool)
	// NumericOwnerIDFromStatus is the real uid from the process status.
	NumericOwnerIDFromStatus(pid int) (int, bool)
}

// Evidence is the ordered list of candidate identifiers for one process.
type Evidence []string

// First returns the first non-empty candidate.
func (e Evidence) First() string {
	for _, c := range e {
		if c != "" {
			return c
		}
	}
	return ""
}
