package client

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionJar_PicksBackendSidCookie(t *testing.T) {
	base, _ := url.Parse("https://alnpetdev.thomasdurand.fr")
	other, _ := url.Parse("https://elsewhere.example")
	j := newSessionJar(base)

	j.SetCookies(other, []*http.Cookie{{Name: "x.sid", Value: "foreign"}})
	j.SetCookies(base, []*http.Cookie{{Name: "lang", Value: "fr"}})
	_, ok := j.session()
	assert.False(t, ok)

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	j.SetCookies(base, []*http.Cookie{{Name: "aln.sid", Value: "v", Secure: true, Expires: exp}})

	s, ok := j.session()
	require.True(t, ok)
	assert.Equal(t, "alnpetdev.thomasdurand.fr", s.Domain)
	assert.Equal(t, "/", s.Path)
	assert.True(t, s.Secure)
	require.NotNil(t, s.Expires)
	assert.True(t, exp.Equal(*s.Expires))
}

func TestSessionJar_DeletionAndExpiry(t *testing.T) {
	base, _ := url.Parse("https://alnpetdev.thomasdurand.fr")
	j := newSessionJar(base)

	j.SetCookies(base, []*http.Cookie{{Name: "aln.sid", Value: "v"}})
	_, ok := j.session()
	require.True(t, ok)

	j.SetCookies(base, []*http.Cookie{{Name: "aln.sid", MaxAge: -1}})
	_, ok = j.session()
	assert.False(t, ok)

	j.SetCookies(base, []*http.Cookie{{Name: "aln.sid", Value: "old", Expires: time.Now().Add(-time.Minute)}})
	_, ok = j.session()
	assert.False(t, ok)
}

func TestSessionJar_RestoreAndClear(t *testing.T) {
	base, _ := url.Parse("https://alnpetdev.thomasdurand.fr")
	j := newSessionJar(base)

	j.SetCookies(base, []*http.Cookie{{Name: "aln.sid", Value: "v", Secure: true}})
	s, ok := j.session()
	require.True(t, ok)

	j.clear()
	assert.Empty(t, j.Cookies(base))

	j.restore(s)
	got, ok := j.session()
	require.True(t, ok)
	assert.Equal(t, "v", got.Value)
	require.Len(t, j.Cookies(base), 1)
	assert.Equal(t, "v", j.Cookies(base)[0].Value)
}

func TestSessionJar_NewestSidCookieWins(t *testing.T) {
	base, _ := url.Parse("https://alnpetdev.thomasdurand.fr")
	j := newSessionJar(base)

	j.SetCookies(base, []*http.Cookie{{Name: "a.sid", Value: "first"}})
	j.SetCookies(base, []*http.Cookie{{Name: "b.sid", Value: "second"}})
	j.SetCookies(base, []*http.Cookie{{Name: "c.sid", Value: "third", Path: "/api"}})

	for range 20 {
		s, ok := j.session()
		require.True(t, ok)
		assert.Equal(t, "third", s.Value)
	}

	j.SetCookies(base, []*http.Cookie{{Name: "a.sid", Value: "refreshed"}})
	s, ok := j.session()
	require.True(t, ok)
	assert.Equal(t, "refreshed", s.Value)
}
