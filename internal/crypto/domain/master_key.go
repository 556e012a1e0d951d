package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
)

// MasterKey is a 32-byte key used only to wrap and unwrap per-asset data keys.
//
// Master keys never touch asset content directly. They are loaded once at startup,
// held in memory for the life of the process and zeroed by MasterKeyChain.Close.
type MasterKey struct {
	ID  string
	Key []byte
}

// MasterKeyChain holds every master key this process can unwrap with and the id of
// the key used for new encryptions.
//
// The chain is populated during load and only read afterwards, which makes it safe
// to share across request goroutines without a lock.
type MasterKeyChain struct {
	activeID string
	keys     sync.Map
}

// NewMasterKeyChain builds a chain from already decoded keys. Key bytes are copied.
func NewMasterKeyChain(activeID string, keys ...*MasterKey) (*MasterKeyChain, error) {
	if activeID == "" {
		return nil, ErrActiveMasterKeyIDNotSet
	}

	mkc := &MasterKeyChain{activeID: activeID}
	for _, k := range keys {
		if len(k.Key) != KeySize {
			mkc.Close()
			return nil, fmt.Errorf(
				"%w: master key %s must be %d bytes, got %d",
				ErrInvalidKeySize,
				k.ID,
				KeySize,
				len(k.Key),
			)
		}
		mkc.keys.Store(k.ID, &MasterKey{ID: k.ID, Key: append([]byte(nil), k.Key...)})
	}

	if _, ok := mkc.Get(activeID); !ok {
		mkc.Close()
		return nil, fmt.Errorf("%w: ACTIVE_MASTER_KEY_ID=%s", ErrActiveMasterKeyNotFound, activeID)
	}

	return mkc, nil
}

// ActiveMasterKeyID returns the id of the key used to wrap new data keys.
func (m *MasterKeyChain) ActiveMasterKeyID() string {
	return m.activeID
}

// Active returns the active master key.
func (m *MasterKeyChain) Active() (*MasterKey, bool) {
	return m.Get(m.activeID)
}

// Get returns the master key with the given id.
func (m *MasterKeyChain) Get(id string) (*MasterKey, bool) {
	if masterKey, ok := m.keys.Load(id); ok {
		return masterKey.(*MasterKey), ok
	}

	return nil, false
}

// Close zeroes every key and empties the chain.
func (m *MasterKeyChain) Close() {
	m.keys.Range(func(_, value any) bool {
		Zero(value.(*MasterKey).Key)
		return true
	})
	m.activeID = ""
	m.keys.Clear()
}

// LoadMasterKeyChain parses a MASTER_KEYS value ("id1:base64,id2:base64").
//
// When keeper is non-nil each decoded value is treated as KMS ciphertext and
// decrypted through it, so the plaintext keys never appear in the environment.
// Intermediate buffers are zeroed and the chain is closed on any error.
func LoadMasterKeyChain(
	ctx context.Context,
	raw string,
	activeID string,
	keeper KMSKeeper,
) (*MasterKeyChain, error) {
	if raw == "" {
		return nil, ErrMasterKeysNotSet
	}
	if activeID == "" {
		return nil, ErrActiveMasterKeyIDNotSet
	}

	var keys []*MasterKey
	defer func() {
		for _, k := range keys {
			Zero(k.Key)
		}
	}()

	for part := range strings.SplitSeq(raw, ",") {
		id, encoded, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || id == "" || encoded == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMasterKeysFormat, part)
		}

		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidMasterKeyBase64, id, err)
		}

		if keeper != nil {
			plain, err := keeper.Decrypt(ctx, key)
			Zero(key)
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt master key %s with KMS: %w", id, err)
			}
			key = plain
		}

		keys = append(keys, &MasterKey{ID: id, Key: key})
	}

	return NewMasterKeyChain(activeID, keys...)
}
