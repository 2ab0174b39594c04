package receipt

import "errors"

// Error codes returned in the error envelope
const (
	CodeInvalidRequest  = "invalid_request"
	CodeConfigError     = "config_error"
	CodeNoTextDetected  = "no_text_detected"
	CodeAuthError       = "auth_error"
	CodeProcessingError = "processing_error"
	CodeUnauthorized    = "unauthorized"
)

var (
	// ErrMissingImage is returned when a scan request carries no image
	ErrMissingImage = errors.New("no image provided")

	// ErrInvalidImage is returned when the image payload is not valid base64
	ErrInvalidImage = errors.New("image is not valid base64")

	// ErrScannerNotConfigured is returned when no text recognizer is available
	ErrScannerNotConfigured = errors.New("text recognizer not configured")
)

// ScanRequest is the body of a scan request. Image is base64 encoded and may
// carry a data URL prefix such as "data:image/jpeg;base64,".
type ScanRequest struct {
	Image string `json:"image"`
}

// ErrorResponse is the envelope for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
