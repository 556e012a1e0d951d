package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
	cryptoService "github.com/allisson/assetvault/internal/crypto/service"
)

// RunCreateMasterKey generates a 32-byte master key and prints the environment
// variables that load it. If keyID is empty a "master-key-YYYY-MM-DD" id is used.
//
// With kmsKeyURI set the key is encrypted by the KMS keeper before output and
// KMS_KEY_URI is printed so the server decrypts it at startup. Without it the raw
// key is printed, which is only suitable for local development.
//
// Key material is zeroed from memory after encoding.
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyID, kmsProvider, kmsKeyURI string,
) error {
	if kmsKeyURI != "" && kmsProvider == "" {
		return fmt.Errorf("--kms-provider is required when --kms-key-uri is set")
	}

	if keyID == "" {
		keyID = fmt.Sprintf("master-key-%s", time.Now().Format("2006-01-02"))
	}

	encodedKey, err := newEncodedMasterKey(ctx, kmsService, writer, kmsKeyURI)
	if err != nil {
		return err
	}

	logger.Info("master key generated",
		slog.String("key_id", keyID),
		slog.Bool("kms", kmsKeyURI != ""),
	)

	_, _ = fmt.Fprintln(writer, "# Master Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	printKMSVariables(writer, kmsProvider, kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "MASTER_KEYS=\"%s:%s\"\n", keyID, encodedKey)
	_, _ = fmt.Fprintf(writer, "ACTIVE_MASTER_KEY_ID=\"%s\"\n", keyID)

	return nil
}

// newEncodedMasterKey returns a fresh master key in its MASTER_KEYS encoding, KMS
// ciphertext when kmsKeyURI is set and plaintext otherwise.
func newEncodedMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	writer io.Writer,
	kmsKeyURI string,
) (string, error) {
	masterKey := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(masterKey)

	if _, err := rand.Read(masterKey); err != nil {
		return "", fmt.Errorf("failed to generate master key: %w", err)
	}

	if kmsKeyURI == "" {
		return base64.StdEncoding.EncodeToString(masterKey), nil
	}

	ciphertext, err := encryptWithKMS(ctx, kmsService, writer, kmsKeyURI, masterKey)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func printKMSVariables(writer io.Writer, kmsProvider, kmsKeyURI string) {
	if kmsKeyURI == "" {
		_, _ = fmt.Fprintln(writer, "# WARNING: plaintext master key, use a KMS outside local development")
		return
	}
	_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
}
