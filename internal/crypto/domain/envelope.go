package domain

import (
	"fmt"
	"strings"
)

// KeyWrapV1 identifies data keys wrapped with AES-256-GCM under a master key,
// using the full key version string as additional authenticated data.
const KeyWrapV1 = "v1"

// EncryptionEnvelope is the metadata needed to decrypt one asset.
//
// Every binary field is standard base64 so the envelope can be stored in plain text
// columns. The envelope alone reveals nothing about the data key: WrappedKey is only
// useful together with the master key named by KeyVersion.
type EncryptionEnvelope struct {
	Algorithm  Algorithm `json:"algorithm"`
	WrappedKey string    `json:"wrapped_key"`
	IV         string    `json:"iv"`
	AuthTag    string    `json:"auth_tag"`
	KeyVersion string    `json:"key_version"`
}

// EncryptedPayload is the output of an envelope encryption: the ciphertext without
// its tag plus the envelope that describes it.
type EncryptedPayload struct {
	Envelope   EncryptionEnvelope
	Ciphertext []byte
}

// FormatKeyVersion returns the key version for a data key wrapped under masterKeyID.
func FormatKeyVersion(masterKeyID string) string {
	return KeyWrapV1 + ":" + masterKeyID
}

// ParseKeyVersion extracts the master key id from a key version.
// Unknown schemes and empty ids yield ErrUnsupportedKeyVersion.
func ParseKeyVersion(keyVersion string) (string, error) {
	scheme, masterKeyID, ok := strings.Cut(keyVersion, ":")
	if !ok || scheme != KeyWrapV1 || masterKeyID == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKeyVersion, keyVersion)
	}
	return masterKeyID, nil
}
