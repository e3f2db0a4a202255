package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveMasterKey(password, salt)
	key2 := DeriveMasterKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveMasterKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	if bytes.Equal(DeriveMasterKey(password, []byte("salt-1")), DeriveMasterKey(password, []byte("salt-2"))) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestMakeVerifier(t *testing.T) {
	k := DeriveMasterKey([]byte("p"), NewSalt())
	assert.Len(t, MakeVerifier(k), 32)
	assert.Equal(t, MakeVerifier(k), MakeVerifier(k))
	assert.NotEqual(t, k, MakeVerifier(k))
}

type session struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func TestSealOpen(t *testing.T) {
	key := DeriveMasterKey([]byte("p"), NewSalt())
	in := session{Name: "aln.sid", Value: "s-1"}

	sealed, err := Seal(in, key)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "s-1")

	again, err := Seal(in, key)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	var out session
	require.NoError(t, Open(sealed, key, &out))
	assert.Equal(t, in, out)
}

func TestOpen_Failures(t *testing.T) {
	key := DeriveMasterKey([]byte("p"), NewSalt())
	other := DeriveMasterKey([]byte("q"), NewSalt())

	sealed, err := Seal("apple-id", key)
	require.NoError(t, err)

	var s string
	require.Error(t, Open(sealed, other, &s), "wrong key")

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xFF
	require.Error(t, Open(tampered, key, &s), "tampered ciphertext")

	require.ErrorIs(t, Open([]byte{1, 2}, key, &s), ErrSealedTooShort)
	require.Error(t, Open(sealed, []byte("short"), &s), "bad key size")
}
