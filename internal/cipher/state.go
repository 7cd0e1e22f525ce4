package cipher

import (
	"bytes"
	"crypto/aes"
	blockmode "crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/shared"
)

const (
	// KeySize is the AES-128 key length in bytes.
	KeySize = 16
	// IVSize is the length of the IV prefix in a state string.
	IVSize = aes.BlockSize
)

// StateCipher encrypts and decrypts OAuth state parameters with a single process-wide key.
// It is safe for concurrent use.
type StateCipher struct {
	block blockmode.Block
	rand  io.Reader
}

// New creates a [StateCipher] from a raw 16 byte key.
func New(key []byte) (*StateCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: AES key must be %d bytes, got %d", shared.ErrInvalidConfig, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	return &StateCipher{block: block, rand: rand.Reader}, nil
}

// NewFromHex creates a [StateCipher] from a hex encoded key, as stored in configuration.
func NewFromHex(hexKey string) (*StateCipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode AES key: %v", shared.ErrInvalidConfig, err)
	}
	return New(key)
}

// Encrypt returns base64(IV || ciphertext) for plaintext using a newly generated IV.
func (c *StateCipher) Encrypt(plaintext string) (string, error) {
	padded := pad([]byte(plaintext))

	raw := make([]byte, IVSize+len(padded))
	iv := raw[:IVSize]
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	blockmode.NewCBCEncrypter(c.block, iv).CryptBlocks(raw[IVSize:], padded)

	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt reverses [StateCipher.Encrypt].
func (c *StateCipher) Decrypt(state string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidState, err)
	}

	if len(raw) < IVSize {
		return "", fmt.Errorf("%w: %d bytes is shorter than the IV", shared.ErrInvalidState, len(raw))
	}

	iv, ciphertext := raw[:IVSize], raw[IVSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d is not a positive multiple of %d", shared.ErrInvalidState, len(ciphertext), aes.BlockSize)
	}

	out := make([]byte, len(ciphertext))
	blockmode.NewCBCDecrypter(c.block, iv).CryptBlocks(out, ciphertext)

	out, err = unpad(out)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", shared.ErrInvalidState)
	}

	return string(out), nil
}

// EncryptIdentity encodes id as JSON and encrypts it.
func (c *StateCipher) EncryptIdentity(id models.GithubIdentity) (string, error) {
	data, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("failed to marshal identity: %w", err)
	}
	return c.Encrypt(string(data))
}

// DecryptIdentity decrypts state and decodes the GitHub identity inside it.
func (c *StateCipher) DecryptIdentity(state string) (*models.GithubIdentity, error) {
	plaintext, err := c.Decrypt(state)
	if err != nil {
		return nil, err
	}

	var id models.GithubIdentity
	if err := json.Unmarshal([]byte(plaintext), &id); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidState, err)
	}

	if err := id.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidState, err)
	}

	return &id, nil
}

// pad applies PKCS#7 padding. A full block is added when data is already aligned.
func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", shared.ErrInvalidState)
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", shared.ErrInvalidState)
		}
	}

	return data[:len(data)-n], nil
}
