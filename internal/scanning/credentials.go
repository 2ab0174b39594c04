package scanning

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/vision/v1"
)

// NewServiceAccountTokenSource builds a token source that exchanges a signed
// JWT assertion for a Cloud Vision bearer token. The token endpoint is taken
// from the key file's token_uri, defaulting to Google's.
//
// Tokens are cached until they expire. ctx must outlive the token source since
// it is used for every refresh.
func NewServiceAccountTokenSource(ctx context.Context, serviceAccountJSON []byte) (oauth2.TokenSource, error) {
	var key struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(serviceAccountJSON, &key); err != nil {
		return nil, fmt.Errorf("%w: parsing service account JSON: %v", ErrCredentials, err)
	}
	if key.ClientEmail == "" {
		return nil, fmt.Errorf("%w: client_email missing from service account", ErrCredentials)
	}

	conf, err := google.JWTConfigFromJSON(serviceAccountJSON, vision.CloudVisionScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentials, err)
	}
	if err := validatePrivateKey(conf.PrivateKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentials, err)
	}

	return oauth2.ReuseTokenSource(nil, credentialSource{src: conf.TokenSource(ctx)}), nil
}

// validatePrivateKey fails early on key material the token exchange would
// reject anyway.
func validatePrivateKey(pemData []byte) error {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return fmt.Errorf("private key is not PEM encoded")
	}
	if _, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return nil
	}
	if _, err := x509.ParsePKCS1PrivateKey(block.Bytes); err != nil {
		return fmt.Errorf("parsing private key: %w", err)
	}
	return nil
}

// credentialSource tags token failures with ErrCredentials so callers can
// tell them apart from recognition failures.
type credentialSource struct {
	src oauth2.TokenSource
}

func (c credentialSource) Token() (*oauth2.Token, error) {
	tok, err := c.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentials, err)
	}
	return tok, nil
}
