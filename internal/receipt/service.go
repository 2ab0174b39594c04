package receipt

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/zombor/scan-receipt/internal/extraction"
	"github.com/zombor/scan-receipt/internal/scanning"
)

var dataURLPrefix = regexp.MustCompile(`^data:([\w.+\-]+/[\w.+\-]+);base64,`)

// Service recognizes receipt text and extracts its fields
type Service struct {
	scanner scanning.Scanner
}

// NewService creates a new Service. A nil scanner makes every scan fail with
// ErrScannerNotConfigured.
func NewService(scanner scanning.Scanner) *Service {
	return &Service{scanner: scanner}
}

// Configured reports whether a text recognizer is available
func (s *Service) Configured() bool {
	return s.scanner != nil
}

// Scan decodes a base64 image, recognizes its text and extracts the receipt fields
func (s *Service) Scan(ctx context.Context, image string) (*extraction.ScanResult, error) {
	if !s.Configured() {
		return nil, ErrScannerNotConfigured
	}

	data, contentType, err := decodeImage(image)
	if err != nil {
		return nil, err
	}

	text, err := s.scanner.RecognizeText(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to recognize receipt text",
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	result := extraction.Extract(text)
	slog.Info("Receipt scanned",
		"amount_found", result.Amount.Valid,
		"date_found", result.Date != "",
		"merchant_found", result.Merchant != "",
		"confidence", result.Confidence,
		"text_length", len(text),
	)
	return result, nil
}

// decodeImage strips an optional data URL prefix and decodes the base64
// payload. The content type comes from the data URL when present.
func decodeImage(image string) ([]byte, string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, "", ErrMissingImage
	}

	var contentType string
	if m := dataURLPrefix.FindStringSubmatch(image); m != nil {
		contentType = strings.ToLower(m[1])
		image = image[len(m[0]):]
	}

	// Clients sometimes wrap long base64 payloads
	image = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, image)

	data, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		// Tolerate missing padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(image, "="))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(data) == 0 {
		return nil, "", ErrMissingImage
	}

	return data, contentType, nil
}
