package prefs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestStore_TypedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.SetInt("launches", 3))
	require.NoError(t, s.SetLong("last_sync", 1_700_000_000_000))
	require.NoError(t, s.SetString("user", "marek"))
	require.NoError(t, s.SetBool("onboarded", true))

	reopened, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, int32(3), reopened.GetInt("launches"))
	assert.Equal(t, int64(1_700_000_000_000), reopened.GetLong("last_sync"))
	assert.Equal(t, "marek", reopened.GetString("user"))
	assert.True(t, reopened.GetBool("onboarded"))
	assert.Equal(t, []string{"last_sync", "launches", "onboarded", "user"}, reopened.Keys())
	assert.Equal(t, map[string]any{
		"launches":  int32(3),
		"last_sync": int64(1_700_000_000_000),
		"user":      "marek",
		"onboarded": true,
	}, reopened.All())
}

func TestStore_Defaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)
	require.NoError(t, s.SetString("name", "x"))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Missing int", s.GetInt("missing"), int32(0)},
		{"Missing long", s.GetLong("missing"), int64(0)},
		{"Missing string", s.GetString("missing"), ""},
		{"Missing bool", s.GetBool("missing"), false},
		{"Type mismatch", s.GetInt("name"), int32(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	_, ok := s.LookupString("missing")
	assert.False(t, ok)
	v, ok := s.LookupString("name")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestStore_BatchedCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := Open(path, WithAutoCommit(false))
	require.NoError(t, err)

	require.NoError(t, s.SetString("a", "1"))
	require.NoError(t, s.SetString("b", "2"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing is written before Commit")

	require.NoError(t, s.Commit())
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "2", reopened.GetString("b"))

	require.NoError(t, s.Remove("a"))
	require.NoError(t, s.SetAutoCommit(true))
	reopened, err = Open(path)
	require.NoError(t, err)
	assert.False(t, reopened.Has("a"))
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetBool("x", true))
	require.NoError(t, s.Clear())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, reopened.Keys())
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestKeyringCipher(t *testing.T) {
	keyring.MockInit()

	path := filepath.Join(t.TempDir(), "secure.json")
	c, err := NewKeyringCipher("appkit-test", "prefs")
	require.NoError(t, err)

	s, err := Open(path, WithCipher(c))
	require.NoError(t, err)
	require.NoError(t, s.SetString("token", "s3cret"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte("s3cret")))

	// The second cipher reuses the key stored on first use.
	c2, err := NewKeyringCipher("appkit-test", "prefs")
	require.NoError(t, err)
	reopened, err := Open(path, WithCipher(c2))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", reopened.GetString("token"))
}

func TestPassphraseCipher(t *testing.T) {
	c, err := NewPassphraseCipher("correct horse")
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("hello"))
	require.NoError(t, err)

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(opened))

	wrong, err := NewPassphraseCipher("wrong horse")
	require.NoError(t, err)
	_, err = wrong.Open(sealed)
	assert.Error(t, err)

	_, err = c.Open([]byte("short"))
	assert.ErrorIs(t, err, ErrCiphertextShort)

	_, err = NewPassphraseCipher("")
	assert.Error(t, err)
}
