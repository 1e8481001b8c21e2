// Package providers implements the OCR extraction capability: clients
// that turn a document image into structured passport fields.
package providers

import (
	"context"
)

// PassportFields is the structured record extracted from one image.
type PassportFields struct {
	LastName       string `json:"last_name"`
	FirstName      string `json:"first_name"`
	PassportNumber string `json:"passport_number"`
	Nationality    string `json:"nationality"`
}

// Extractor extracts passport fields from a document image.
// Implementations classify failures via ExtractError so callers can
// decide retry eligibility; see ErrorKind.
type Extractor interface {
	// Name returns the provider identifier (e.g., "gemini").
	Name() string

	// Extract runs OCR on the image at imagePath and returns the
	// structured fields. Errors are classified; see KindOf.
	Extract(ctx context.Context, imagePath string) (*PassportFields, error)
}
