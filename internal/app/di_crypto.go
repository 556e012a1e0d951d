package app

import (
	"context"
	"fmt"
	"strings"

	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
	cryptoService "github.com/allisson/assetvault/internal/crypto/service"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// MasterKeyChain returns the master key chain loaded from environment variables.
func (c *Container) MasterKeyChain() (*cryptoDomain.MasterKeyChain, error) {
	return resolve(c, &c.masterKeyChainInit, "masterKeyChain", &c.masterKeyChain, c.initMasterKeyChain)
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// EnvelopeCipher returns the envelope cipher used by the asset pipeline.
func (c *Container) EnvelopeCipher() (cryptoService.EnvelopeCipher, error) {
	return resolve(c, &c.envelopeCipherInit, "envelopeCipher", &c.envelopeCipher, c.initEnvelopeCipher)
}

// initMasterKeyChain loads MASTER_KEYS. When KMS_KEY_URI is set the values are
// KMS ciphertexts and are decrypted through the keeper, which is closed afterwards.
func (c *Container) initMasterKeyChain() (*cryptoDomain.MasterKeyChain, error) {
	ctx := context.Background()

	var keeper cryptoDomain.KMSKeeper
	if c.config.KMSKeyURI != "" {
		k, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open kms keeper: %w", err)
		}
		defer func() {
			if closeErr := k.Close(); closeErr != nil {
				c.Logger().Warn("failed to close kms keeper", "error", closeErr)
			}
		}()
		keeper = k
	}

	chain, err := cryptoDomain.LoadMasterKeyChain(ctx, c.config.MasterKeys, c.config.ActiveMasterKeyID, keeper)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key chain: %w", err)
	}
	return chain, nil
}

func (c *Container) initEnvelopeCipher() (cryptoService.EnvelopeCipher, error) {
	chain, err := c.MasterKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key chain for envelope cipher: %w", err)
	}

	alg, err := parseAlgorithm(c.config.AssetAlgorithm)
	if err != nil {
		return nil, err
	}

	return cryptoService.NewEnvelopeCipher(chain, c.AEADManager(), alg, c.config.AssetMaxSizeBytes)
}

// parseAlgorithm accepts the short config names as well as the persisted envelope names.
func parseAlgorithm(name string) (cryptoDomain.Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "aes-gcm", "aes-256-gcm":
		return cryptoDomain.AESGCM, nil
	case "chacha20-poly1305", "chacha20":
		return cryptoDomain.ChaCha20, nil
	default:
		return "", fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedAlgorithm, name)
	}
}
