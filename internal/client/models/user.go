// Package models defines the client-side domain model: accounts, feeders,
// bounded numeric values and scheduled feeding plans.
package models

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/aln/internal/timex"
)

// User is the remote account bound to the identity provider.
type User struct {
	ID           int64            `json:"id"`
	Email        *string          `json:"email,omitempty"`
	Feeders      []*Feeder        `json:"feeders"`
	RegisteredAt *timex.Timestamp `json:"register,omitempty"`
	LastLogin    *timex.Timestamp `json:"login,omitempty"`
}

// UnmarshalJSON requires the account id.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var w struct {
		plain
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.ID == nil {
		return errMissingField("id")
	}
	*u = User(w.plain)
	u.ID = *w.ID
	return nil
}

// Feeder returns the feeder with the given id.
func (u *User) Feeder(id int64) (*Feeder, bool) {
	for _, f := range u.Feeders {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// DisplayEmail returns the email or a placeholder.
func (u *User) DisplayEmail() string {
	if u.Email == nil || *u.Email == "" {
		return "no email"
	}
	return *u.Email
}

// Feeder is a physical feeder. It is shared by pointer between whoever shows
// it and whoever mutates it, so accessors are synchronized. ID never changes.
type Feeder struct {
	ID int64

	mu            sync.RWMutex
	name          *string
	defaultAmount *Amount
}

// NewFeeder builds a feeder. Empty name and nil amount mean "unset".
func NewFeeder(id int64, name string, defaultAmount *Amount) *Feeder {
	f := &Feeder{ID: id, defaultAmount: defaultAmount}
	if name != "" {
		f.name = &name
	}
	return f
}

// Name returns the display name and whether one is set.
func (f *Feeder) Name() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.name == nil {
		return "", false
	}
	return *f.name, true
}

// DisplayName returns the name or a placeholder.
func (f *Feeder) DisplayName() string {
	if n, ok := f.Name(); ok && n != "" {
		return n
	}
	return "the cat"
}

// DefaultAmount returns the amount given by the physical button.
func (f *Feeder) DefaultAmount() (Amount, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.defaultAmount == nil {
		return Amount{}, false
	}
	return *f.defaultAmount, true
}

func (f *Feeder) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name = &name
}

func (f *Feeder) SetDefaultAmount(a Amount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaultAmount = &a
}

type feederWire struct {
	ID            int64   `json:"id"`
	Name          *string `json:"name,omitempty"`
	DefaultAmount *Amount `json:"default_amount,omitempty"`
}

func (f *Feeder) MarshalJSON() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return json.Marshal(feederWire{ID: f.ID, Name: f.name, DefaultAmount: f.defaultAmount})
}

// UnmarshalJSON requires id and accepts default_amount in either casing.
func (f *Feeder) UnmarshalJSON(b []byte) error {
	var w struct {
		ID                 *int64  `json:"id"`
		Name               *string `json:"name"`
		DefaultAmount      *Amount `json:"default_amount"`
		DefaultAmountCamel *Amount `json:"defaultAmount"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.ID == nil {
		return errMissingField("id")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ID = *w.ID
	f.name = w.Name
	f.defaultAmount = firstSet(w.DefaultAmount, w.DefaultAmountCamel)
	return nil
}

// Session is the persisted form of the backend session cookie.
type Session struct {
	Domain  string     `json:"domain"`
	Expires *time.Time `json:"expires,omitempty"`
	Secure  bool       `json:"secure"`
	Name    string     `json:"name"`
	Path    string     `json:"path"`
	Value   string     `json:"value"`
	// Version is the RFC 2109 cookie version. net/http only handles RFC 6265
	// cookies, which have no version attribute, so captured cookies store 0
	// and a stored value is ignored when the cookie is rebuilt.
	Version int `json:"version"`
}

// SessionFromCookie captures the attributes of c.
func SessionFromCookie(c *http.Cookie) Session {
	s := Session{
		Domain: c.Domain,
		Secure: c.Secure,
		Name:   c.Name,
		Path:   c.Path,
		Value:  c.Value,
	}
	if !c.Expires.IsZero() {
		exp := c.Expires.UTC()
		s.Expires = &exp
	}
	return s
}

// Cookie rebuilds the transport cookie.
func (s Session) Cookie() *http.Cookie {
	c := &http.Cookie{
		Domain: s.Domain,
		Secure: s.Secure,
		Name:   s.Name,
		Path:   s.Path,
		Value:  s.Value,
	}
	if s.Expires != nil {
		c.Expires = *s.Expires
	}
	return c
}
