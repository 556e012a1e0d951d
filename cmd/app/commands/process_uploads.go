package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	outboxUsecase "github.com/allisson/assetvault/internal/outbox/usecase"
)

// UploadProcessor runs one pass over pending upload retries.
type UploadProcessor interface {
	ProcessEvents(ctx context.Context) (outboxUsecase.BatchResult, error)
}

// RunProcessUploads processes one batch of pending blob upload retries and exits.
// It is the one-shot counterpart of the worker started by the server command.
func RunProcessUploads(ctx context.Context, processor UploadProcessor, logger *slog.Logger, writer io.Writer) error {
	logger.Info("processing pending uploads")

	result, err := processor.ProcessEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to process pending uploads: %w", err)
	}

	logger.Info("pending uploads processed",
		slog.Int("claimed", result.Claimed),
		slog.Int("failed", result.Failed),
	)
	_, err = fmt.Fprintf(writer, "Processed %d pending uploads: %d uploaded, %d retrying, %d failed\n",
		result.Claimed, result.Processed, result.Retried, result.Failed)
	return err
}
