package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// AssetDeleter removes an asset by content identifier.
type AssetDeleter interface {
	Delete(ctx context.Context, contentID string) error
}

// RunDeleteAsset deletes the asset record and then its blob. A blob that cannot be
// removed is logged by the pipeline and does not fail the command.
func RunDeleteAsset(
	ctx context.Context,
	deleter AssetDeleter,
	logger *slog.Logger,
	writer io.Writer,
	contentID, format string,
) error {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return fmt.Errorf("--content-id is required")
	}

	logger.Info("deleting asset", slog.String("content_id", contentID))

	if err := deleter.Delete(ctx, contentID); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"content_id": contentID,
			"deleted":    true,
		})
	}

	_, err := fmt.Fprintf(writer, "Successfully deleted asset %s\n", contentID)
	return err
}
