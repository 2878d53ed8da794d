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

	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// envelopeFormat marks a stored story as an encrypted envelope.
const envelopeFormat = "quire-encrypted"

type encryptionMiddleware struct {
	next   ports.StoryStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts stories using AES-GCM (Envelope Encryption).
// The stored story is an opaque envelope: only its id is visible to the backend.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.StoryStore) ports.StoryStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) SaveStory(ctx context.Context, story *domain.Story) error {
	plainText, err := json.Marshal(story)
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt story: %w", err)
	}

	envelope := domain.NewStory()
	envelope.ID = story.ID
	envelope.Name = story.ID
	envelope.StoryFormat = envelopeFormat
	envelope.Script = base64.StdEncoding.EncodeToString(ciphertext)
	envelope.LastUpdate = story.LastUpdate

	return m.next.SaveStory(ctx, envelope)
}

func (m *encryptionMiddleware) LoadStory(ctx context.Context, id string) (*domain.Story, error) {
	envelope, err := m.next.LoadStory(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.open(envelope)
}

func (m *encryptionMiddleware) open(envelope *domain.Story) (*domain.Story, error) {
	// Fail secure: with encryption configured, plain stories are not accepted.
	if envelope.StoryFormat != envelopeFormat {
		return nil, fmt.Errorf("story %s is missing encrypted data envelope", envelope.ID)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Script)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt story %s: %w", envelope.ID, err)
	}

	var story domain.Story
	if err := json.Unmarshal(plainText, &story); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted story: %w", err)
	}
	return &story, nil
}

func (m *encryptionMiddleware) DeleteStory(ctx context.Context, id string) error {
	return m.next.DeleteStory(ctx, id)
}

func (m *encryptionMiddleware) ListStories(ctx context.Context) ([]*domain.Story, error) {
	envelopes, err := m.next.ListStories(ctx)
	if err != nil {
		return nil, err
	}
	stories := make([]*domain.Story, 0, len(envelopes))
	for _, envelope := range envelopes {
		story, err := m.open(envelope)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
