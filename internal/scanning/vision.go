package scanning

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/vision/v1"
)

const (
	defaultLanguageHint = "it"
	visionTimeout       = 30 * time.Second
)

// Vision implements the Scanner interface using Google Cloud Vision text detection
type Vision struct {
	service      *vision.Service
	languageHint string
}

// NewVision creates a Vision scanner authenticated with a service account key
func NewVision(ctx context.Context, serviceAccountJSON []byte, languageHint string) (*Vision, error) {
	ts, err := NewServiceAccountTokenSource(ctx, serviceAccountJSON)
	if err != nil {
		return nil, err
	}
	return NewVisionWithOptions(ctx, languageHint, option.WithTokenSource(ts))
}

// NewVisionWithOptions creates a Vision scanner with custom client options,
// e.g. a different endpoint for testing
func NewVisionWithOptions(ctx context.Context, languageHint string, opts ...option.ClientOption) (*Vision, error) {
	if languageHint == "" {
		languageHint = defaultLanguageHint
	}

	service, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}

	return &Vision{
		service:      service,
		languageHint: languageHint,
	}, nil
}

// RecognizeText runs TEXT_DETECTION on the image and returns the full text annotation
func (v *Vision) RecognizeText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, visionTimeout)
	defer cancel()

	finalImageData, mimeType, converted, err := prepareForVision(imageData, contentType)
	if err != nil {
		return "", err
	}
	if converted {
		slog.Debug("Converted image for vision", "from", contentType, "to", mimeType)
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image: &vision.Image{
					Content: base64.StdEncoding.EncodeToString(finalImageData),
				},
				Features: []*vision.Feature{
					{Type: "TEXT_DETECTION", MaxResults: 1},
				},
				ImageContext: &vision.ImageContext{
					LanguageHints: []string{v.languageHint},
				},
			},
		},
	}

	resp, err := v.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calling vision API: %w", err)
	}

	if len(resp.Responses) == 0 {
		return "", ErrNoTextDetected
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil && annotated.Error.Message != "" {
		return "", fmt.Errorf("vision API error (code %d): %s", annotated.Error.Code, annotated.Error.Message)
	}
	if len(annotated.TextAnnotations) == 0 {
		return "", ErrNoTextDetected
	}

	return annotated.TextAnnotations[0].Description, nil
}

// Close is a no-op; the underlying HTTP client needs no cleanup
func (v *Vision) Close() error {
	return nil
}
