// Package registry knows which applications are installed, which uid each
// one runs as and how to display them. It backs identity resolution.
package registry

import (
	"sort"
	"sync"

	"github.com/AstromechZA/etcpwdparse"

	"github.com/lxp-git/android-system-resource-monitor/internal/identity"
)

// UnknownUID marks an application known only by name.
const UnknownUID = -1

// App is one installed application.
type App struct {
	ID    string `yaml:"id"`
	UID   int    `yaml:"uid"`
	Label string `yaml:"label"`
	Icon  string `yaml:"icon"`
}

// Registry is an in-memory package registry. Populate it with the Add and
// Load* methods, then share it; lookups are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	apps   map[string]App
	byUID  map[int][]string
	passwd *etcpwdparse.EtcPasswdCache
}

var _ identity.Registry = (*Registry)(nil)

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		apps:  make(map[string]App),
		byUID: make(map[int][]string),
	}
}

// Add registers app. A later Add for the same id updates the uid and keeps
// any label or icon already known when the new entry has none.
func (r *Registry) Add(app App) {
	if app.ID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.apps[app.ID]
	if exists {
		if app.Label == "" {
			app.Label = prev.Label
		}
		if app.Icon == "" {
			app.Icon = prev.Icon
		}
		if prev.UID != app.UID {
			r.byUID[prev.UID] = remove(r.byUID[prev.UID], app.ID)
			r.index(app)
		}
	} else {
		r.index(app)
	}
	r.apps[app.ID] = app
}

// Len reports the number of registered applications.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.apps)
}

// Apps returns every registered application sorted by id.
func (r *Registry) Apps() []App {
	r.mu.RLock()
	out := make([]App, 0, len(r.apps))
	for _, a := range r.apps {
		out = append(out, a)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CandidateIdentifiersForOwnerID returns the applications sharing uid id in
// the order they were registered.
func (r *Registry) CandidateIdentifiersForOwnerID(id int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUID[id]
	if len(ids) == 0 {
		return nil
	}
	return append([]string(nil), ids...)
}

func (r *Registry) IsRegisteredIdentifier(identifier string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.apps[identifier]
	return ok
}

// DisplayMetadata returns the label and icon for identifier. Applications
// without a catalog label are shown by identifier.
func (r *Registry) DisplayMetadata(identifier string) (identity.Display, bool) {
	r.mu.RLock()
	app, ok := r.apps[identifier]
	r.mu.RUnlock()
	if !ok {
		return identity.Display{}, false
	}

	label := app.Label
	if label == "" {
		label = app.ID
	}
	return identity.Display{Label: label, Icon: app.Icon}, true
}

func (r *Registry) index(app App) {
	if app.UID == UnknownUID {
		return
	}
	r.byUID[app.UID] = append(r.byUID[app.UID], app.ID)
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
