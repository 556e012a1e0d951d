package domain

import "context"

// KMSKeeper encrypts and decrypts small secrets through an external key management
// service. It is satisfied by *secrets.Keeper from gocloud.dev.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
