package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoService "github.com/allisson/assetvault/internal/crypto/service"
)

// RunRotateMasterKey generates a new master key and prints a MASTER_KEYS value that
// keeps every existing key and activates the new one.
//
// Existing envelopes record the id of the key that wrapped their data key, so old
// keys must stay in MASTER_KEYS for as long as assets wrapped under them exist.
func RunRotateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyID, kmsProvider, kmsKeyURI, existingMasterKeys, existingActiveKeyID string,
) error {
	if kmsKeyURI != "" && kmsProvider == "" {
		return fmt.Errorf("KMS_PROVIDER is required when KMS_KEY_URI is set")
	}
	if existingMasterKeys == "" {
		return fmt.Errorf("MASTER_KEYS is not set - cannot rotate without existing keys")
	}
	if existingActiveKeyID == "" {
		return fmt.Errorf("ACTIVE_MASTER_KEY_ID is not set")
	}

	if keyID == "" {
		keyID = fmt.Sprintf("master-key-%s", time.Now().Format("2006-01-02"))
	}
	if keyID == existingActiveKeyID {
		return fmt.Errorf("new key id %q matches the active master key id", keyID)
	}

	encodedKey, err := newEncodedMasterKey(ctx, kmsService, writer, kmsKeyURI)
	if err != nil {
		return err
	}

	// New key last; it becomes active.
	newMasterKeys := fmt.Sprintf("%s,%s:%s", existingMasterKeys, keyID, encodedKey)

	logger.Info("master key rotated",
		slog.String("previous_key_id", existingActiveKeyID),
		slog.String("key_id", keyID),
	)

	_, _ = fmt.Fprintln(writer, "# Master Key Rotation")
	_, _ = fmt.Fprintln(writer, "# Update these environment variables in your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	printKMSVariables(writer, kmsProvider, kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "MASTER_KEYS=\"%s\"\n", newMasterKeys)
	_, _ = fmt.Fprintf(writer, "ACTIVE_MASTER_KEY_ID=\"%s\"\n", keyID)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# New assets are wrapped under the new key after a restart.")
	_, _ = fmt.Fprintf(writer, "# Keep %q in MASTER_KEYS while assets wrapped under it remain.\n", existingActiveKeyID)

	return nil
}
