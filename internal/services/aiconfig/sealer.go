package aiconfig

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
)

// KeySize is the length of the content encryption key in bytes.
const KeySize = 32

// ErrUnseal is returned when a sealed value cannot be opened with the configured key.
var ErrUnseal = errors.New("cannot unseal api key")

// Sealer encrypts provider API keys as compact JWE (dir, A256GCM).
type Sealer struct {
	key []byte
	enc jose.Encrypter
}

// NewSealer builds a sealer from a 32 byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	enc, err := jose.NewEncrypter(jose.A256GCM, jose.Recipient{Algorithm: jose.DIRECT, Key: key}, nil)
	if err != nil {
		return nil, fmt.Errorf("create encrypter: %w", err)
	}
	return &Sealer{key: key, enc: enc}, nil
}

// NewSealerFromConfig decodes a base64 key. An empty value yields a random
// key; values sealed with it cannot be opened after a restart.
func NewSealerFromConfig(encoded string) (*Sealer, bool, error) {
	if encoded == "" {
		key := make([]byte, KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, false, fmt.Errorf("generate encryption key: %w", err)
		}
		s, err := NewSealer(key)
		return s, true, err
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("decode encryption key: %w", err)
	}
	s, err := NewSealer(key)
	return s, false, err
}

// Seal encrypts plaintext.
func (s *Sealer) Seal(plaintext string) (string, error) {
	obj, err := s.enc.Encrypt([]byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("encrypt api key: %w", err)
	}
	return obj.CompactSerialize()
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	obj, err := jose.ParseEncrypted(sealed, []jose.KeyAlgorithm{jose.DIRECT}, []jose.ContentEncryption{jose.A256GCM})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnseal, err)
	}
	plaintext, err := obj.Decrypt(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnseal, err)
	}
	return string(plaintext), nil
}
