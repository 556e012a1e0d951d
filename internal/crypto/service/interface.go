// Package service provides the cryptographic primitives and the envelope cipher used
// to protect asset content.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
)

// AEAD is an authenticated cipher bound to a single key.
//
// Encrypt generates a fresh random nonce per call and returns the ciphertext with
// the authentication tag appended. Decrypt fails when the tag does not verify, in
// which case no plaintext is returned.
type AEAD interface {
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager creates AEAD instances for a key and algorithm.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// EnvelopeCipher encrypts whole asset buffers under fresh data keys wrapped by the
// active master key, and reverses the process given the stored envelope.
//
// The aad argument binds the ciphertext to its owner record (the asset id) so a
// ciphertext copied onto another record fails to decrypt.
type EnvelopeCipher interface {
	Encrypt(plaintext, aad []byte) (*cryptoDomain.EncryptedPayload, error)

	Decrypt(ciphertext []byte, envelope cryptoDomain.EncryptionEnvelope, aad []byte) ([]byte, error)
}

// KMSService opens KMS keepers from gocloud.dev key URIs.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
