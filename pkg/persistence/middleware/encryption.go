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

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
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

type encryptionMiddleware struct {
	next   ports.RunStore
	config EncryptionConfig
}

// envelopeKey marks an audit step whose state payload is ciphertext.
const envelopeKey = "__encrypted__"

// stepPayload is the plaintext sealed per step. Step number, node label
// and outcome stay visible for monitoring; the state does not.
type stepPayload struct {
	StateBefore map[string]any   `json:"state_before"`
	StateDiff   domain.StateDiff `json:"state_diff"`
	RunMetadata map[string]any   `json:"run_metadata,omitempty"`
}

// NewEncryptionMiddleware creates a middleware that seals each audit
// step's state with AES-GCM before persistence and unseals on load.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.RunStore) ports.RunStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) SaveRun(ctx context.Context, log *domain.RunLog) error {
	cloned := *log
	cloned.Steps = make([]domain.AuditStep, len(log.Steps))

	for i, step := range log.Steps {
		plainText, err := json.Marshal(stepPayload{
			StateBefore: step.StateBefore,
			StateDiff:   step.StateDiff,
			RunMetadata: step.RunMetadata,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal step %d: %w", step.Step, err)
		}

		ciphertext, err := encrypt(plainText, m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt step %d: %w", step.Step, err)
		}

		step.StateBefore = map[string]any{
			envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
		}
		step.StateDiff = domain.StateDiff{}
		step.RunMetadata = nil
		cloned.Steps[i] = step
	}

	return m.next.SaveRun(ctx, &cloned)
}

func (m *encryptionMiddleware) ListRuns(ctx context.Context) ([]string, error) {
	return listRuns(ctx, m.next)
}

func (m *encryptionMiddleware) LoadRun(ctx context.Context, runID string) (*domain.RunLog, error) {
	log, err := loadRun(ctx, m.next, runID)
	if err != nil {
		return nil, err
	}

	for i, step := range log.Steps {
		encryptedStr, ok := step.StateBefore[envelopeKey].(string)
		if !ok {
			// Fail secure: with encryption configured, a plain step is
			// either corruption or a log saved without the middleware.
			return nil, fmt.Errorf("step %d is missing the encrypted envelope", step.Step)
		}

		ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
		if err != nil {
			return nil, fmt.Errorf("failed to decode step %d ciphertext: %w", step.Step, err)
		}

		plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt step %d: %w", step.Step, err)
		}

		var payload stepPayload
		if err := json.Unmarshal(plainText, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal step %d payload: %w", step.Step, err)
		}

		step.StateBefore = payload.StateBefore
		step.StateDiff = payload.StateDiff
		step.RunMetadata = payload.RunMetadata
		log.Steps[i] = step
	}

	return log, nil
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
