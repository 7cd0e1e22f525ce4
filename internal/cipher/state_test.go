package cipher

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/shared"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f"

func newTestCipher(t *testing.T) *StateCipher {
	t.Helper()
	c, err := NewFromHex(testKeyHex)
	require.NoError(t, err)
	return c
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNew(t *testing.T) {
	t.Run("accepts a 16 byte key", func(t *testing.T) {
		_, err := New(bytes.Repeat([]byte{1}, KeySize))
		assert.NoError(t, err)
	})

	t.Run("rejects other key sizes", func(t *testing.T) {
		for _, n := range []int{0, 15, 17, 32} {
			_, err := New(make([]byte, n))
			assert.ErrorIs(t, err, shared.ErrInvalidConfig, "size %d", n)
		}
	})

	t.Run("rejects malformed hex", func(t *testing.T) {
		_, err := NewFromHex("not-hex")
		assert.ErrorIs(t, err, shared.ErrInvalidConfig)
	})
}

func TestRoundTrip(t *testing.T) {
	c := newTestCipher(t)

	inputs := []string{
		"",
		"a",
		"exactly16bytes!!",
		strings.Repeat("x", 100),
		`{"username":"octocat","access_token":"ghp_abc"}`,
		"emoji 🎵 and accents éè",
	}

	for _, in := range inputs {
		state, err := c.Encrypt(in)
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(state)
		require.NoError(t, err)
		assert.Zero(t, (len(raw)-IVSize)%KeySize)
		assert.Greater(t, len(raw), len(in)+IVSize-1)

		out, err := c.Decrypt(state)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	c := newTestCipher(t)

	seen := make(map[string]bool)
	for range 32 {
		state, err := c.Encrypt("same plaintext")
		require.NoError(t, err)

		raw, _ := base64.StdEncoding.DecodeString(state)
		iv := string(raw[:IVSize])
		assert.False(t, seen[iv], "IV reused")
		seen[iv] = true
	}
}

func TestEncryptIVFailure(t *testing.T) {
	c := newTestCipher(t)
	c.rand = failingReader{}

	_, err := c.Encrypt("hello")
	assert.Error(t, err)
}

func TestDecryptRejectsTampering(t *testing.T) {
	c := newTestCipher(t)
	plaintext := `{"username":"octocat","access_token":"ghp_abc"}`

	state, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(state)
	require.NoError(t, err)

	for i := range raw {
		tampered := bytes.Clone(raw)
		tampered[i] ^= 0x01

		out, err := c.Decrypt(base64.StdEncoding.EncodeToString(tampered))
		if err == nil {
			assert.NotEqual(t, plaintext, out, "byte %d", i)
		}
	}
}

func TestDecryptInvalidInput(t *testing.T) {
	c := newTestCipher(t)

	short := base64.StdEncoding.EncodeToString(make([]byte, IVSize-1))
	ivOnly := base64.StdEncoding.EncodeToString(make([]byte, IVSize))
	misaligned := base64.StdEncoding.EncodeToString(make([]byte, IVSize+10))

	other, err := New(bytes.Repeat([]byte{0xff}, KeySize))
	require.NoError(t, err)
	foreign, err := other.Encrypt("hello")
	require.NoError(t, err)

	tests := []struct {
		name  string
		state string
	}{
		{"empty", ""},
		{"bad base64", "%%%not base64%%%"},
		{"shorter than IV", short},
		{"IV only", ivOnly},
		{"misaligned ciphertext", misaligned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := c.Decrypt(tt.state)
				assert.ErrorIs(t, err, shared.ErrInvalidState)
			})
		})
	}

	t.Run("different key", func(t *testing.T) {
		out, err := c.Decrypt(foreign)
		if err == nil {
			assert.NotEqual(t, "hello", out)
		} else {
			assert.ErrorIs(t, err, shared.ErrInvalidState)
		}
	})
}

func TestUnpad(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []byte
		ok    bool
	}{
		{"single byte pad", append(bytes.Repeat([]byte{'a'}, 15), 1), bytes.Repeat([]byte{'a'}, 15), true},
		{"full block pad", bytes.Repeat([]byte{16}, 16), []byte{}, true},
		{"zero pad", append(bytes.Repeat([]byte{'a'}, 15), 0), nil, false},
		{"pad too large", append(bytes.Repeat([]byte{'a'}, 15), 17), nil, false},
		{"inconsistent pad", append(bytes.Repeat([]byte{'a'}, 14), 3, 2), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unpad(tt.input)
			if !tt.ok {
				assert.ErrorIs(t, err, shared.ErrInvalidState)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentity(t *testing.T) {
	c := newTestCipher(t)

	t.Run("round trip", func(t *testing.T) {
		id := models.GithubIdentity{Username: "octocat", AccessToken: "ghp_abc"}

		state, err := c.EncryptIdentity(id)
		require.NoError(t, err)

		got, err := c.DecryptIdentity(state)
		require.NoError(t, err)
		assert.Equal(t, id, *got)
	})

	t.Run("non JSON payload", func(t *testing.T) {
		state, err := c.Encrypt("just text")
		require.NoError(t, err)

		_, err = c.DecryptIdentity(state)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("missing fields", func(t *testing.T) {
		state, err := c.Encrypt(`{"username":"octocat"}`)
		require.NoError(t, err)

		_, err = c.DecryptIdentity(state)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}
