package models

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/aln/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_DecodeWire(t *testing.T) {
	doc := `{
		"id": 7,
		"email": "cat@example.com",
		"register": "2020-08-11T10:00:00.000+00:00",
		"login": "2020-08-12T10:00:00.250Z",
		"feeders": [
			{"id": 1, "name": "Newton", "default_amount": 12},
			{"id": 2}
		]
	}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(doc), &u))

	assert.EqualValues(t, 7, u.ID)
	assert.Equal(t, "cat@example.com", u.DisplayEmail())
	require.NotNil(t, u.RegisteredAt)
	assert.Equal(t, 2020, u.RegisteredAt.Year())
	require.Len(t, u.Feeders, 2)

	f, ok := u.Feeder(1)
	require.True(t, ok)
	name, ok := f.Name()
	assert.True(t, ok)
	assert.Equal(t, "Newton", name)
	amount, ok := f.DefaultAmount()
	assert.True(t, ok)
	assert.Equal(t, 12, amount.Value())

	bare, _ := u.Feeder(2)
	_, ok = bare.Name()
	assert.False(t, ok)
	assert.Equal(t, "the cat", bare.DisplayName())

	_, ok = u.Feeder(3)
	assert.False(t, ok)
}

func TestUser_DecodeRejectsBadDatesAndAmounts(t *testing.T) {
	var u User
	require.Error(t, json.Unmarshal([]byte(`{"id":1,"feeders":[],"register":"2020-08-11T10:00:00Z"}`), &u))
	require.ErrorIs(t, json.Unmarshal([]byte(`{"id":1,"feeders":[{"id":1,"default_amount":500}]}`), &u), common.ErrOutOfBounds)
	require.ErrorIs(t, json.Unmarshal([]byte(`{"id":1,"feeders":[{"id":1,"defaultAmount":4}]}`), &u), common.ErrOutOfBounds)

	err := json.Unmarshal([]byte(`{"feeders":[]}`), &u)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.ErrorContains(t, err, `missing field "id"`)

	err = json.Unmarshal([]byte(`{"id":1,"feeders":[{"name":"x"}]}`), &u)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.ErrorContains(t, err, `missing field "id"`)
}

func TestUser_DecodeAcceptsCamelCase(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"feeders":[{"id":2,"name":"Newton","defaultAmount":30}]}`), &u))
	assert.Equal(t, int64(7), u.ID)
	f, ok := u.Feeder(2)
	require.True(t, ok)
	got, ok := f.DefaultAmount()
	require.True(t, ok)
	assert.Equal(t, 30, got.Value())
}

func TestFeeder_SharedMutation(t *testing.T) {
	f := NewFeeder(1, "", nil)
	view := f

	f.SetName("Newton")
	a, _ := NewAmount(30)
	f.SetDefaultAmount(a)

	name, _ := view.Name()
	assert.Equal(t, "Newton", name)
	got, ok := view.DefaultAmount()
	require.True(t, ok)
	assert.Equal(t, 30, got.Value())

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Newton","default_amount":30}`, string(b))
}

func TestFeederState_Decode(t *testing.T) {
	var s FeederState
	require.NoError(t, json.Unmarshal([]byte(`{"is_available":true}`), &s))
	assert.True(t, s.IsReachable())
	assert.Equal(t, "available", s.String())

	require.NoError(t, json.Unmarshal([]byte(`{"is_available":false,"last_responded":"2020-08-11T10:00:00.000+00:00"}`), &s))
	assert.False(t, s.IsReachable())
	require.NotNil(t, s.LastReachDate)
	assert.Equal(t, 10, s.LastReachDate.Hour())

	require.Error(t, json.Unmarshal([]byte(`{"is_available":false,"last_responded":"yesterday"}`), &s))
	require.Error(t, json.Unmarshal([]byte(`{}`), &s))
	assert.Equal(t, "unknown", FeederState{}.String())
}

func TestFeederState_DecodeCamelCase(t *testing.T) {
	var s FeederState
	require.NoError(t, json.Unmarshal([]byte(`{"isAvailable":true}`), &s))
	assert.True(t, s.IsReachable())

	require.NoError(t, json.Unmarshal([]byte(`{"isAvailable":false,"lastResponded":"2020-08-11T10:00:00.000+00:00"}`), &s))
	assert.Equal(t, NotAvailable, s.Availability)
	require.NotNil(t, s.LastReachDate)
	assert.Equal(t, 10, s.LastReachDate.Hour())

	require.Error(t, json.Unmarshal([]byte(`{"isAvailable":false,"lastResponded":"yesterday"}`), &s))
}

func TestSession_VersionIsRFC6265(t *testing.T) {
	s := SessionFromCookie(&http.Cookie{Name: "aln.sid", Value: "v", Domain: "alnpetdev.thomasdurand.fr", Path: "/"})
	assert.Zero(t, s.Version)

	var stored Session
	require.NoError(t, json.Unmarshal([]byte(`{"domain":"alnpetdev.thomasdurand.fr","path":"/","name":"aln.sid","value":"v","secure":true,"version":1}`), &stored))
	assert.Equal(t, 1, stored.Version)
	c := stored.Cookie()
	assert.Equal(t, "v", c.Value)
	assert.True(t, c.Secure)
}

func TestSession_CookieRoundTrip(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &http.Cookie{Name: "aln.sid", Value: "abc", Domain: "alnpetdev.thomasdurand.fr", Path: "/", Secure: true, Expires: exp}

	s := SessionFromCookie(c)
	require.NotNil(t, s.Expires)
	assert.Equal(t, exp, *s.Expires)

	back := s.Cookie()
	assert.Equal(t, c.Name, back.Name)
	assert.Equal(t, c.Value, back.Value)
	assert.Equal(t, c.Domain, back.Domain)
	assert.Equal(t, c.Path, back.Path)
	assert.True(t, back.Secure)
	assert.True(t, exp.Equal(back.Expires))

	noExp := SessionFromCookie(&http.Cookie{Name: "x", Value: "y"})
	assert.Nil(t, noExp.Expires)
	assert.True(t, noExp.Cookie().Expires.IsZero())
}
