package domain

import (
	"github.com/allisson/assetvault/internal/errors"
)

// Cryptographic error definitions.
//
// These errors wrap the standard errors from internal/errors so the HTTP layer can
// map them to status codes without knowing about cryptography.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a low-level AEAD open failed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrIntegrity indicates an envelope or ciphertext failed authentication.
	//
	// Causes are deliberately collapsed: a tampered ciphertext, a wrong IV, a corrupted
	// wrapped key and a tag mismatch all look the same to the caller. No plaintext is
	// ever returned alongside this error.
	//
	// HTTP Status: 502 Bad Gateway
	ErrIntegrity = errors.Wrap(errors.ErrBadGateway, "integrity check failed")

	// ErrUnsupportedKeyVersion indicates an envelope references a wrapping scheme or
	// master key that this process does not hold.
	//
	// HTTP Status: 500 Internal Server Error
	ErrUnsupportedKeyVersion = errors.New("unsupported key version")

	// ErrPlaintextTooLarge indicates the input exceeds the configured maximum asset size.
	//
	// HTTP Status: 413 Payload Too Large
	ErrPlaintextTooLarge = errors.Wrap(errors.ErrTooLarge, "plaintext exceeds maximum size")

	// ErrMasterKeysNotSet indicates no master keys were configured.
	ErrMasterKeysNotSet = errors.New("MASTER_KEYS is not set")

	// ErrActiveMasterKeyIDNotSet indicates no active master key id was configured.
	ErrActiveMasterKeyIDNotSet = errors.New("ACTIVE_MASTER_KEY_ID is not set")

	// ErrInvalidMasterKeysFormat indicates a MASTER_KEYS entry is not "id:base64key".
	ErrInvalidMasterKeysFormat = errors.New("invalid MASTER_KEYS format")

	// ErrInvalidMasterKeyBase64 indicates a master key is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.New("invalid master key base64")

	// ErrActiveMasterKeyNotFound indicates the active id does not match any loaded key.
	ErrActiveMasterKeyNotFound = errors.New("active master key not found")
)
