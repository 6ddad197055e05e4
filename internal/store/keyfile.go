package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/prismhq/prism/internal/core"
)

// Credential companions are sealed with AES-GCM under an identity-derived
// key. This is at-rest obfuscation, not a substitute for OS-level secret
// storage: anyone who can read the store directory and knows the identity
// can recover the secret.

const (
	sealSalt       = "prism.credential.v1"
	sealIterations = 4096
)

func sealKey(identity string) []byte {
	return pbkdf2.Key([]byte(identity), []byte(sealSalt), sealIterations, 32, sha256.New)
}

func seal(identity string, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(sealKey(identity))
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func unseal(identity string, sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(sealKey(identity))
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("sealed credential too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("opening sealed credential: %w", err)
	}
	return plaintext, nil
}

// WriteCredential seals and persists the raw credential alongside the
// provider's record.
func (s *Store) WriteCredential(identity string, p core.ProviderID, cred core.Credential) error {
	if identity == "" {
		return fmt.Errorf("store: identity is required")
	}
	plaintext, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("store: marshaling credential: %w", err)
	}
	sealed, err := seal(identity, plaintext)
	if err != nil {
		return fmt.Errorf("store: sealing credential: %w", err)
	}
	return s.writeFile(keyFile(identity, p), sealed)
}

// ReadCredential recovers a previously written credential. Absence is an
// error; callers that treat it as optional should check os.IsNotExist.
func (s *Store) ReadCredential(identity string, p core.ProviderID) (core.Credential, error) {
	sealed, err := os.ReadFile(filepath.Join(s.root, keyFile(identity, p)))
	if err != nil {
		return core.Credential{}, err
	}
	plaintext, err := unseal(identity, sealed)
	if err != nil {
		return core.Credential{}, fmt.Errorf("store: %w", err)
	}
	var cred core.Credential
	if err := json.Unmarshal(plaintext, &cred); err != nil {
		return core.Credential{}, fmt.Errorf("store: parsing credential: %w", err)
	}
	return cred, nil
}
