package domain

// Algorithm is the authenticated cipher recorded in an asset's encryption envelope.
//
// Both algorithms use 256-bit keys and a 16-byte authentication tag. The envelope
// stores the algorithm by name, so the values below are part of the persisted format
// and must never change.
type Algorithm string

const (
	// AESGCM is AES-256 in Galois/Counter Mode with a 16-byte (128-bit) IV.
	AESGCM Algorithm = "AES-256-GCM"

	// ChaCha20 is ChaCha20-Poly1305 with its standard 12-byte nonce.
	ChaCha20 Algorithm = "CHACHA20-POLY1305"
)

const (
	// KeySize is the size in bytes of master keys and data keys.
	KeySize = 32

	// AuthTagSize is the size in bytes of the AEAD authentication tag.
	AuthTagSize = 16

	// GCMIVSize is the IV size used for AES-256-GCM data encryption and key wrapping.
	GCMIVSize = 16
)

// IVSize returns the IV length the algorithm expects, or 0 when it is unknown.
func (a Algorithm) IVSize() int {
	switch a {
	case AESGCM:
		return GCMIVSize
	case ChaCha20:
		return 12
	default:
		return 0
	}
}
