package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// EnvelopeKey is the addon under which an encrypted page keeps its
// ciphertext.
const EnvelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.PageStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that stores pages as AES-GCM
// envelopes. It panics if the active key is not 32 bytes.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.PageStore) ports.PageStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, page *schema.PageData) error {
	plainText, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal page: %w", err)
	}

	ciphertext, err := seal(plainText, m.config.ActiveKey, page.ID)
	if err != nil {
		return fmt.Errorf("failed to encrypt page: %w", err)
	}

	// Only the id stays readable so stores can still index the page.
	envelope := &schema.PageData{
		ID:     page.ID,
		Params: map[string]any{},
		Addons: map[string]any{
			EnvelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
		},
	}
	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (*schema.PageData, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	sealed, ok := envelope.Addons[EnvelopeKey].(string)
	if !ok {
		// Plain pages are refused rather than passed through.
		return nil, errors.New("page is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	keys := append([][]byte{m.config.ActiveKey}, m.config.FallbackKeys...)
	plainText, err := open(ciphertext, id, keys...)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt page: %w", err)
	}

	var page schema.PageData
	if err := json.Unmarshal(plainText, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted page: %w", err)
	}
	return &page, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// seal encrypts plaintext bound to the page id, so an envelope copied under
// another id does not open.
func seal(plaintext []byte, key []byte, id string) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize(), gcm.NonceSize()+len(plaintext)+gcm.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, []byte(id)), nil
}

// open tries the active key first, then each fallback key in order.
func open(ciphertext []byte, id string, keys ...[]byte) ([]byte, error) {
	for _, key := range keys {
		gcm, err := newGCM(key)
		if err != nil {
			continue
		}
		n := gcm.NonceSize()
		if len(ciphertext) < n {
			return nil, errors.New("ciphertext too short")
		}
		if plain, err := gcm.Open(nil, ciphertext[:n], ciphertext[n:], []byte(id)); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
