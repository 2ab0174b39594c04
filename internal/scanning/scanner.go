package scanning

import (
	"context"
	"errors"
)

var (
	// ErrNoTextDetected is returned when a recognizer finds no text in the image
	ErrNoTextDetected = errors.New("no text detected in image")

	// ErrCredentials is returned when the recognizer cannot authenticate,
	// either because the key material is malformed or the token exchange failed
	ErrCredentials = errors.New("service account authentication failed")
)

// Scanner defines the interface for receipt text recognition
type Scanner interface {
	// RecognizeText returns the text printed on a receipt image/PDF as a single
	// blob, with line breaks preserved
	RecognizeText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
