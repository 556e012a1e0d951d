// Package mocks provides mock implementations of the crypto services for testing.
package mocks

import (
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
)

// MockEnvelopeCipher is a mock implementation of EnvelopeCipher for testing.
type MockEnvelopeCipher struct {
	mock.Mock
}

// Encrypt mocks the Encrypt method of EnvelopeCipher.
func (m *MockEnvelopeCipher) Encrypt(plaintext, aad []byte) (*cryptoDomain.EncryptedPayload, error) {
	args := m.Called(plaintext, aad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EncryptedPayload), args.Error(1)
}

// Decrypt mocks the Decrypt method of EnvelopeCipher.
func (m *MockEnvelopeCipher) Decrypt(
	ciphertext []byte,
	envelope cryptoDomain.EncryptionEnvelope,
	aad []byte,
) ([]byte, error) {
	args := m.Called(ciphertext, envelope, aad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
