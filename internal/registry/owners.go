package registry

import (
	"regexp"
	"strconv"

	"github.com/AstromechZA/etcpwdparse"
)

const (
	perUserRange   = 100000
	firstAppUID    = 10000
	firstIsolateID = 90000
)

var (
	appUserRegex      = regexp.MustCompile(`^u(\d+)_a(\d+)$`)
	isolatedUserRegex = regexp.MustCompile(`^u(\d+)_i(\d+)$`)
)

// wellKnownIDs are the fixed Android system uids top prints by name.
var wellKnownIDs = map[string]int{
	"root":      0,
	"system":    1000,
	"radio":     1001,
	"bluetooth": 1002,
	"graphics":  1003,
	"input":     1004,
	"audio":     1005,
	"camera":    1006,
	"log":       1007,
	"compass":   1008,
	"mount":     1009,
	"wifi":      1010,
	"media":     1013,
	"dhcp":      1014,
	"nfc":       1027,
	"shell":     2000,
	"cache":     2001,
	"nobody":    9999,
}

// NumericIDForOwnerName maps a user name from top's USER column to a uid.
// Only ids above zero are reported; root is left to the process status.
func (r *Registry) NumericIDForOwnerName(name string) (int, bool) {
	id, ok := lookupOwner(name, r.passwdCache())
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// UsePasswd sets the passwd database consulted for names that are not
// Android user names.
func (r *Registry) UsePasswd(cache *etcpwdparse.EtcPasswdCache) {
	r.mu.Lock()
	r.passwd = cache
	r.mu.Unlock()
}

func (r *Registry) passwdCache() *etcpwdparse.EtcPasswdCache {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.passwd
}

func lookupOwner(name string, passwd *etcpwdparse.EtcPasswdCache) (int, bool) {
	if name == "" {
		return 0, false
	}
	if id, err := strconv.Atoi(name); err == nil {
		return id, true
	}
	if m := appUserRegex.FindStringSubmatch(name); m != nil {
		return androidUID(m[1], m[2], firstAppUID)
	}
	if m := isolatedUserRegex.FindStringSubmatch(name); m != nil {
		return androidUID(m[1], m[2], firstIsolateID)
	}
	if id, ok := wellKnownIDs[name]; ok {
		return id, true
	}
	if passwd != nil {
		if entry, ok := passwd.LookupUserByName(name); ok {
			return entry.Uid(), true
		}
	}
	return 0, false
}

func androidUID(user, app string, base int) (int, bool) {
	u, err := strconv.Atoi(user)
	if err != nil {
		return 0, false
	}
	a, err := strconv.Atoi(app)
	if err != nil || a >= perUserRange-base {
		return 0, false
	}
	return u*perUserRange + base + a, true
}
