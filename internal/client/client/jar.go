package client

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/aln/internal/common"
	"github.com/dmitrijs2005/aln/internal/client/models"
)

type cookieKey struct {
	domain, path, name string
}

type seenCookie struct {
	cookie *http.Cookie
	// order of arrival, newest highest
	seq uint64
}

// sessionJar is a cookie jar that also remembers the attributes of every
// cookie it was handed, which net/http/cookiejar does not expose.
type sessionJar struct {
	mu      sync.Mutex
	jar     *cookiejar.Jar
	seen    map[cookieKey]seenCookie
	seq     uint64
	baseURL *url.URL
}

func newSessionJar(baseURL *url.URL) *sessionJar {
	j := &sessionJar{baseURL: baseURL}
	j.reset()
	return j
}

func (j *sessionJar) reset() {
	// cookiejar.New only fails on a bad PublicSuffixList.
	jar, _ := cookiejar.New(nil)
	j.jar = jar
	j.seen = make(map[cookieKey]seenCookie)
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, c := range cookies {
		cc := *c
		if cc.Domain == "" {
			cc.Domain = u.Hostname()
		}
		cc.Domain = strings.TrimPrefix(cc.Domain, ".")
		if cc.Path == "" {
			cc.Path = "/"
		}
		if cc.MaxAge > 0 && cc.Expires.IsZero() {
			cc.Expires = time.Now().Add(time.Duration(cc.MaxAge) * time.Second)
		}
		k := cookieKey{cc.Domain, cc.Path, cc.Name}
		if cc.MaxAge < 0 || (!cc.Expires.IsZero() && cc.Expires.Before(time.Now())) {
			delete(j.seen, k)
			continue
		}
		j.seq++
		j.seen[k] = seenCookie{cookie: &cc, seq: j.seq}
	}
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// session finds the backend session cookie: same host as the backend and a
// name ending in ".sid". When several match, the most recently set wins.
func (j *sessionJar) session() (models.Session, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	host := j.baseURL.Hostname()
	now := time.Now()
	var best seenCookie
	for k, sc := range j.seen {
		if k.domain != host || !strings.HasSuffix(k.name, common.SessionCookieSuffix) {
			continue
		}
		if !sc.cookie.Expires.IsZero() && sc.cookie.Expires.Before(now) {
			continue
		}
		if sc.seq > best.seq {
			best = sc
		}
	}
	if best.cookie == nil {
		return models.Session{}, false
	}
	return models.SessionFromCookie(best.cookie), true
}

func (j *sessionJar) restore(s models.Session) {
	j.SetCookies(j.baseURL, []*http.Cookie{s.Cookie()})
}

func (j *sessionJar) clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reset()
}
