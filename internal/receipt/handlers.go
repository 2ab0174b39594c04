package receipt

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/zombor/scan-receipt/internal/scanning"
)

// Base64 inflates images by a third; this leaves room for ~50MB phone photos
const maxRequestSize = int64(70 << 20)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

// writeError writes the JSON error envelope
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// errorStatus maps a scan error to its HTTP status and error code
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingImage), errors.Is(err, ErrInvalidImage):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, ErrScannerNotConfigured):
		return http.StatusInternalServerError, CodeConfigError
	case errors.Is(err, scanning.ErrNoTextDetected):
		return http.StatusUnprocessableEntity, CodeNoTextDetected
	case errors.Is(err, scanning.ErrCredentials):
		return http.StatusBadGateway, CodeAuthError
	default:
		return http.StatusInternalServerError, CodeProcessingError
	}
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

// handleScan recognizes a receipt image and returns the extracted fields
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)
	logger := slog.With("request_id", requestID)

	// Configuration problems take precedence over anything wrong with the request
	if !s.service.Configured() {
		logger.Error("Error processing receipt", "code", CodeConfigError, "error", ErrScannerNotConfigured)
		writeError(w, http.StatusInternalServerError, ErrScannerNotConfigured.Error(), CodeConfigError)
		return
	}

	var req ScanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize)).Decode(&req); err != nil {
		logger.Warn("Invalid scan request body", "error", err)
		message := "Invalid request body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "Image is too large. Please compress or resize it."
		}
		writeError(w, http.StatusBadRequest, message, CodeInvalidRequest)
		return
	}

	result, err := s.service.Scan(r.Context(), req.Image)
	if err != nil {
		status, code := errorStatus(err)
		logger.Error("Error processing receipt", "code", code, "error", err)
		message := err.Error()
		if code == CodeProcessingError {
			message = "Failed to process receipt: " + message
		}
		writeError(w, status, message, code)
		return
	}

	logger.Info("Scan complete", "confidence", result.Confidence)
	writeJSON(w, http.StatusOK, result)
}
