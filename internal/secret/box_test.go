package secret

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBox(t *testing.T, seed string) *Box {
	t.Helper()
	key, err := KeyFromString(seed)
	require.NoError(t, err)
	box, err := NewBox(key)
	require.NoError(t, err)
	return box
}

func TestSealOpen(t *testing.T) {
	box := newTestBox(t, "dashboard-secret")

	sealed, err := box.Seal("eyJhbGciOiJIUzI1NiJ9.payload.sig")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "payload")

	plain, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOiJIUzI1NiJ9.payload.sig", plain)

	again, err := box.Seal("eyJhbGciOiJIUzI1NiJ9.payload.sig")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonces must differ")
}

func TestOpenWithWrongKey(t *testing.T) {
	sealed, err := newTestBox(t, "one").Seal("token")
	require.NoError(t, err)

	_, err = newTestBox(t, "two").Open(sealed)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestOpenRejectsGarbage(t *testing.T) {
	box := newTestBox(t, "k")

	_, err := box.Open("%%%")
	assert.Error(t, err)

	_, err = box.Open(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestKeyFromString(t *testing.T) {
	raw := []byte(strings.Repeat("k", 32))
	key, err := KeyFromString(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, key)

	key, err = KeyFromString("passphrase")
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = KeyFromString("")
	assert.Error(t, err)

	_, err = NewBox([]byte("too short"))
	assert.Error(t, err)
}
