// Package service provides the access decision for asset decryption.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	apperrors "github.com/allisson/assetvault/internal/errors"
)

// placeholderProductID marks an asset whose product was never registered on the ledger.
const placeholderProductID = "temp"

// Ledger answers whether an address has paid for a product.
type Ledger interface {
	HasPaid(ctx context.Context, address, productID string) (bool, error)
}

// PurchaseGate authorizes decryption: the owner always may, anyone else only with a
// ledger-confirmed purchase.
type PurchaseGate struct {
	ledger  Ledger
	timeout time.Duration
	logger  *slog.Logger
}

// NewPurchaseGate creates a PurchaseGate. A non-positive timeout leaves the ledger
// call bounded only by the caller's context.
func NewPurchaseGate(ledger Ledger, timeout time.Duration, logger *slog.Logger) *PurchaseGate {
	return &PurchaseGate{
		ledger:  ledger,
		timeout: timeout,
		logger:  logger,
	}
}

// ResolveTarget returns the product id the purchase is checked against: the override
// when given, otherwise the asset's own product id.
func (g *PurchaseGate) ResolveTarget(asset *assetsDomain.Asset, productOverride string) (string, error) {
	target := strings.TrimSpace(productOverride)
	if target == "" {
		target = asset.ProductID
	}
	if target == "" || target == placeholderProductID {
		return "", assetsDomain.ErrInvalidVerificationTarget
	}
	return target, nil
}

// IsAuthorized reports whether requester may decrypt asset.
//
// The owner check is case-insensitive and never consults the ledger. A requester
// or product id the ledger rejects as malformed is ErrInvalidVerificationTarget.
// Any other ledger failure, including a timeout, is returned as
// ErrVerificationUnavailable and never as a plain denial.
func (g *PurchaseGate) IsAuthorized(
	ctx context.Context,
	requester string,
	asset *assetsDomain.Asset,
	productOverride string,
) (bool, error) {
	if requester != "" && strings.EqualFold(requester, asset.Owner) {
		return true, nil
	}

	target, err := g.ResolveTarget(asset, productOverride)
	if err != nil {
		return false, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	paid, err := g.ledger.HasPaid(ctx, requester, target)
	if apperrors.Is(err, apperrors.ErrInvalidInput) {
		return false, fmt.Errorf("%w: %v", assetsDomain.ErrInvalidVerificationTarget, err)
	}
	if err != nil {
		g.logger.Warn("payment verification failed",
			slog.String("asset_id", asset.ID.String()),
			slog.String("product_id", target),
			slog.Any("error", err),
		)
		return false, fmt.Errorf("%w: %v", assetsDomain.ErrVerificationUnavailable, err)
	}

	return paid, nil
}
