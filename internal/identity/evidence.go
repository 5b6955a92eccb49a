package identity

import (
	"regexp"
	"strings"

	"github.com/lxp-git/android-system-resource-monitor/internal/topparse"
)

// packageNameRegex matches dotted lowercase identifiers such as
// "com.android.systemui".
var packageNameRegex = regexp.MustCompile(`[a-z][a-z0-9_]*(\.[a-z0-9_]+)+`)

// evidenceSource produces zero or more candidates for a record. Sources
// never fail; a lookup that errors or panics contributes nothing.
type evidenceSource func(r *Resolver, rec topparse.ProcessRecord) []string

// evidenceSources run in priority order.
var evidenceSources = []evidenceSource{
	commandIdentifier,
	processTableIdentifier,
	ownerIdentifier,
}

// commandIdentifier takes the first package-like token in the command.
func commandIdentifier(_ *Resolver, rec topparse.ProcessRecord) []string {
	return nonEmpty(packageNameRegex.FindString(rec.Command))
}

// processTableIdentifier reads the process's own name. Secondary processes
// are named "<package>:<suffix>", so the part before the colon is offered
// as a second candidate.
func processTableIdentifier(r *Resolver, rec topparse.ProcessRecord) []string {
	if r.meta == nil {
		return nil
	}

	var name string
	guard(func() {
		name, _ = r.meta.CanonicalProcessName(rec.PID)
	})
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	out := []string{name}
	if prefix, _, found := strings.Cut(name, ":"); found {
		out = append(out, nonEmpty(prefix)...)
	}
	return out
}

// ownerIdentifier maps the owner to a uid and takes the first application
// registered under it.
func ownerIdentifier(r *Resolver, rec topparse.ProcessRecord) []string {
	uid, ok := r.ownerID(rec)
	if !ok {
		return nil
	}

	var pkgs []string
	guard(func() {
		pkgs = r.registry.CandidateIdentifiersForOwnerID(uid)
	})
	if len(pkgs) == 0 {
		return nil
	}
	return nonEmpty(pkgs[0])
}

// ownerID tries the owner name first and falls back to the status file.
func (r *Resolver) ownerID(rec topparse.ProcessRecord) (int, bool) {
	var (
		uid int
		ok  bool
	)
	guard(func() {
		uid, ok = r.registry.NumericIDForOwnerName(rec.Owner)
	})
	if ok {
		return uid, true
	}

	if r.meta == nil || rec.PID <= 0 {
		return 0, false
	}
	guard(func() {
		uid, ok = r.meta.NumericOwnerIDFromStatus(rec.PID)
	})
	if !ok || uid < 0 {
		return 0, false
	}
	return uid, true
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// guard swallows a panic from a collaborator call.
func guard(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
