// Package validation holds the request rules shared by the asset DTOs.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/assetvault/internal/errors"
)

// PlaceholderProductID marks an asset whose on-chain product does not exist yet.
const PlaceholderProductID = "temp"

var (
	addressRegex   = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	productIDRegex = regexp.MustCompile(`^[0-9]{1,78}$`)
)

// WrapValidationError turns a rule failure into an ErrInvalidInput, rendered as 422.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Address validates a hex-encoded 20-byte account address with 0x prefix.
var Address = validation.NewStringRuleWithError(
	func(s string) bool {
		return addressRegex.MatchString(s)
	},
	validation.NewError("validation_address_format", "must be a 0x-prefixed 40 character hex address"),
)

// ProductID accepts a decimal on-chain product id or the placeholder.
var ProductID = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == PlaceholderProductID || productIDRegex.MatchString(s)
	},
	validation.NewError("validation_product_id", "must be a decimal product id or \"temp\""),
)

// NotBlank rejects strings that are empty after trimming, such as a chat message of spaces.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
