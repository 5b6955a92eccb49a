// Package procmeta reads process names and owners from the operating system.
package procmeta

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/lxp-git/android-system-resource-monitor/internal/identity"
)

const defaultTimeout = 2 * time.Second

// reader performs the uncached lookups.
type reader interface {
	Cmdline(ctx context.Context, pid int) (string, error)
	RealUID(ctx context.Context, pid int) (int, error)
}

type lookup struct {
	name  string
	uid   int
	uidOK bool
}

type cacheKey struct {
	pid  int
	kind byte
}

const (
	kindName byte = iota
	kindUID
)

// Source answers process metadata queries from /proc through gopsutil.
type Source struct {
	reader  reader
	cache   *Cache[cacheKey, lookup]
	timeout time.Duration
}

var _ identity.ProcessMeta = (*Source)(nil)

// NewSource creates a Source memoizing up to size lookups for ttl. A size
// or ttl of zero disables memoization.
func NewSource(size int, ttl time.Duration) *Source {
	s := &Source{reader: gopsutilReader{}, timeout: defaultTimeout}
	if size > 0 && ttl > 0 {
		s.cache = NewCache[cacheKey, lookup](size, ttl)
	}
	return s
}

// CanonicalProcessName returns the process's argument vector joined by
// spaces. Kernel threads and exited processes have none.
func (s *Source) CanonicalProcessName(pid int) (string, bool) {
	if pid <= 0 {
		return "", false
	}
	key := cacheKey{pid: pid, kind: kindName}
	if v, ok := s.cached(key); ok {
		return v.name, v.name != ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	name, err := s.reader.Cmdline(ctx, pid)
	if err != nil {
		name = ""
	}
	name = normalize(name)
	s.store(key, lookup{name: name})
	return name, name != ""
}

// NumericOwnerIDFromStatus returns the real uid of the process.
func (s *Source) NumericOwnerIDFromStatus(pid int) (int, bool) {
	if pid <= 0 {
		return 0, false
	}
	key := cacheKey{pid: pid, kind: kindUID}
	if v, ok := s.cached(key); ok {
		return v.uid, v.uidOK
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	uid, err := s.reader.RealUID(ctx, pid)
	v := lookup{uid: uid, uidOK: err == nil && uid >= 0}
	if !v.uidOK {
		v.uid = 0
	}
	s.store(key, v)
	return v.uid, v.uidOK
}

func (s *Source) cached(key cacheKey) (lookup, bool) {
	if s.cache == nil {
		return lookup{}, false
	}
	return s.cache.Get(key)
}

func (s *Source) store(key cacheKey, v lookup) {
	if s.cache != nil {
		s.cache.Put(key, v)
	}
}

// normalize turns NUL separators into spaces and trims the result.
func normalize(cmdline string) string {
	return strings.TrimSpace(strings.ReplaceAll(cmdline, "\x00", " "))
}

type gopsutilReader struct{}

func (gopsutilReader) Cmdline(ctx context.Context, pid int) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", err
	}
	return p.CmdlineWithContext(ctx)
}

func (gopsutilReader) RealUID(ctx context.Context, pid int) (int, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return 0, err
	}
	uids, err := p.UidsWithContext(ctx)
	if err != nil {
		return 0, err
	}
	if len(uids) == 0 {
		return 0, process.ErrorProcessNotRunning
	}
	return int(uids[0]), nil
}
