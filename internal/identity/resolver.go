package identity

import (
	"strings"

	"github.com/lxp-git/android-system-resource-monitor/internal/topparse"
)

// Resolver fills in ProcessRecord.AppIdentifier from the available evidence.
// It holds no mutable state and is safe for concurrent use when its
// collaborators are.
type Resolver struct {
	registry Registry
	meta     ProcessMeta
}

// NewResolver creates a resolver. A nil registry disables resolution; a nil
// meta skips the sources that need per-process OS data.
func NewResolver(registry Registry, meta ProcessMeta) *Resolver {
	return &Resolver{registry: registry, meta: meta}
}

// Gather collects the candidates for rec from every evidence source, in
// priority order. Duplicates are kept.
func (r *Resolver) Gather(rec topparse.ProcessRecord) Evidence {
	if r == nil || r.registry == nil {
		return nil
	}
	var ev Evidence
	for _, src := range evidenceSources {
		ev = append(ev, src(r, rec)...)
	}
	return ev
}

// Resolve returns rec with AppIdentifier set to the first candidate the
// registry confirms, or the first candidate at all when none is confirmed.
// Without a registry rec is returned unchanged.
func (r *Resolver) Resolve(rec topparse.ProcessRecord) topparse.ProcessRecord {
	if r == nil || r.registry == nil {
		return rec
	}
	rec.AppIdentifier = r.selectIdentifier(r.Gather(rec))
	return rec
}

func (r *Resolver) selectIdentifier(ev Evidence) string {
	for _, c := range ev {
		if c != "" && r.isRegistered(c) {
			return c
		}
	}
	return ev.First()
}

func (r *Resolver) isRegistered(identifier string) bool {
	var ok bool
	guard(func() {
		ok = r.registry.IsRegisteredIdentifier(identifier)
	})
	return ok
}

// DisplayLookup finds display metadata for identifier, retrying with the
// part before a colon for secondary processes.
func (r *Resolver) DisplayLookup(identifier string) (Display, bool) {
	if r == nil || r.registry == nil || identifier == "" {
		return Display{}, false
	}

	candidates := []string{identifier}
	if prefix, _, found := strings.Cut(identifier, ":"); found && prefix != "" {
		candidates = append(candidates, prefix)
	}

	for _, c := range candidates {
		var (
			d  Display
			ok bool
		)
		guard(func() {
			d, ok = r.registry.DisplayMetadata(c)
		})
		if ok {
			return d, true
		}
	}
	return Display{}, false
}
