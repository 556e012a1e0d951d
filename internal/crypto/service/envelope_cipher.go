package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
)

// wrappedKeySize is nonce || sealed data key || tag for the v1 wrapping scheme.
const wrappedKeySize = cryptoDomain.GCMIVSize + cryptoDomain.KeySize + cryptoDomain.AuthTagSize

// EnvelopeCipherService implements EnvelopeCipher.
//
// Each Encrypt generates a new 32-byte data key and IV, encrypts the content with the
// configured algorithm, then wraps the data key with AES-256-GCM under the active
// master key. The data key only exists unwrapped for the duration of one call and is
// zeroed before the call returns.
type EnvelopeCipherService struct {
	masterKeys       *cryptoDomain.MasterKeyChain
	aeadManager      AEADManager
	algorithm        cryptoDomain.Algorithm
	maxPlaintextSize int64
}

// NewEnvelopeCipher creates an EnvelopeCipherService. maxPlaintextSize <= 0 disables
// the size check.
func NewEnvelopeCipher(
	masterKeys *cryptoDomain.MasterKeyChain,
	aeadManager AEADManager,
	algorithm cryptoDomain.Algorithm,
	maxPlaintextSize int64,
) (*EnvelopeCipherService, error) {
	if algorithm.IVSize() == 0 {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedAlgorithm, algorithm)
	}
	if _, ok := masterKeys.Active(); !ok {
		return nil, cryptoDomain.ErrActiveMasterKeyNotFound
	}

	return &EnvelopeCipherService{
		masterKeys:       masterKeys,
		aeadManager:      aeadManager,
		algorithm:        algorithm,
		maxPlaintextSize: maxPlaintextSize,
	}, nil
}

// Encrypt encrypts plaintext under a fresh data key. The returned ciphertext excludes
// the authentication tag, which is carried in the envelope.
func (e *EnvelopeCipherService) Encrypt(plaintext, aad []byte) (*cryptoDomain.EncryptedPayload, error) {
	if e.maxPlaintextSize > 0 && int64(len(plaintext)) > e.maxPlaintextSize {
		return nil, fmt.Errorf(
			"%w: %d bytes, limit %d",
			cryptoDomain.ErrPlaintextTooLarge,
			len(plaintext),
			e.maxPlaintextSize,
		)
	}

	masterKey, ok := e.masterKeys.Active()
	if !ok {
		return nil, cryptoDomain.ErrActiveMasterKeyNotFound
	}

	var payload *cryptoDomain.EncryptedPayload
	err := cryptoDomain.WithSecret(cryptoDomain.KeySize, func(dataKey []byte) error {
		if _, err := rand.Read(dataKey); err != nil {
			return fmt.Errorf("failed to generate data key: %w", err)
		}

		dataCipher, err := e.aeadManager.CreateCipher(dataKey, e.algorithm)
		if err != nil {
			return fmt.Errorf("failed to create data cipher: %w", err)
		}

		sealed, iv, err := dataCipher.Encrypt(plaintext, aad)
		if err != nil {
			return fmt.Errorf("failed to encrypt content: %w", err)
		}

		keyVersion := cryptoDomain.FormatKeyVersion(masterKey.ID)
		wrappedKey, err := e.wrapKey(dataKey, masterKey, keyVersion)
		if err != nil {
			return err
		}

		tagStart := len(sealed) - cryptoDomain.AuthTagSize
		payload = &cryptoDomain.EncryptedPayload{
			Envelope: cryptoDomain.EncryptionEnvelope{
				Algorithm:  e.algorithm,
				WrappedKey: wrappedKey,
				IV:         base64.StdEncoding.EncodeToString(iv),
				AuthTag:    base64.StdEncoding.EncodeToString(sealed[tagStart:]),
				KeyVersion: keyVersion,
			},
			Ciphertext: sealed[:tagStart:tagStart],
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return payload, nil
}

// Decrypt reverses Encrypt.
//
// An envelope naming an unknown wrapping scheme, master key or algorithm yields
// ErrUnsupportedKeyVersion. Every other failure (bad encoding, wrong lengths, unwrap
// failure, tag mismatch) yields ErrIntegrity and no plaintext.
func (e *EnvelopeCipherService) Decrypt(
	ciphertext []byte,
	envelope cryptoDomain.EncryptionEnvelope,
	aad []byte,
) ([]byte, error) {
	masterKeyID, err := cryptoDomain.ParseKeyVersion(envelope.KeyVersion)
	if err != nil {
		return nil, err
	}
	masterKey, ok := e.masterKeys.Get(masterKeyID)
	if !ok {
		return nil, fmt.Errorf("%w: master key %q not loaded", cryptoDomain.ErrUnsupportedKeyVersion, masterKeyID)
	}

	ivSize := envelope.Algorithm.IVSize()
	if ivSize == 0 {
		return nil, fmt.Errorf(
			"%w: algorithm %q",
			cryptoDomain.ErrUnsupportedKeyVersion,
			envelope.Algorithm,
		)
	}

	iv, err := base64.StdEncoding.DecodeString(envelope.IV)
	if err != nil || len(iv) != ivSize {
		return nil, fmt.Errorf("%w: invalid iv", cryptoDomain.ErrIntegrity)
	}
	tag, err := base64.StdEncoding.DecodeString(envelope.AuthTag)
	if err != nil || len(tag) != cryptoDomain.AuthTagSize {
		return nil, fmt.Errorf("%w: invalid auth tag", cryptoDomain.ErrIntegrity)
	}

	dataKey, err := e.unwrapKey(envelope.WrappedKey, masterKey, envelope.KeyVersion)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dataKey)

	dataCipher, err := e.aeadManager.CreateCipher(dataKey, envelope.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to create data cipher: %w", err)
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := dataCipher.Decrypt(sealed, iv, aad)
	if err != nil {
		return nil, cryptoDomain.ErrIntegrity
	}
	if plaintext == nil {
		// Empty assets decrypt to an empty, non-nil body.
		plaintext = []byte{}
	}

	return plaintext, nil
}

func (e *EnvelopeCipherService) wrapKey(
	dataKey []byte,
	masterKey *cryptoDomain.MasterKey,
	keyVersion string,
) (string, error) {
	kekCipher, err := e.aeadManager.CreateCipher(masterKey.Key, cryptoDomain.AESGCM)
	if err != nil {
		return "", fmt.Errorf("failed to create key wrapping cipher: %w", err)
	}

	sealed, nonce, err := kekCipher.Encrypt(dataKey, []byte(keyVersion))
	if err != nil {
		return "", fmt.Errorf("failed to wrap data key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(append(nonce, sealed...)), nil
}

func (e *EnvelopeCipherService) unwrapKey(
	wrappedKey string,
	masterKey *cryptoDomain.MasterKey,
	keyVersion string,
) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(wrappedKey)
	if err != nil || len(raw) != wrappedKeySize {
		return nil, fmt.Errorf("%w: invalid wrapped key", cryptoDomain.ErrIntegrity)
	}

	kekCipher, err := e.aeadManager.CreateCipher(masterKey.Key, cryptoDomain.AESGCM)
	if err != nil {
		return nil, fmt.Errorf("failed to create key wrapping cipher: %w", err)
	}

	dataKey, err := kekCipher.Decrypt(
		raw[cryptoDomain.GCMIVSize:],
		raw[:cryptoDomain.GCMIVSize],
		[]byte(keyVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: data key unwrap failed", cryptoDomain.ErrIntegrity)
	}

	return dataKey, nil
}
