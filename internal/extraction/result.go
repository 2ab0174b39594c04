package extraction

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ScanResult contains the fields extracted from a receipt's OCR text
type ScanResult struct {
	Amount     decimal.NullDecimal // Detected total, two fraction digits
	Date       string              // YYYY-MM-DD, empty when absent
	Merchant   string              // Empty when absent
	Confidence int                 // 0-100
	RawText    string              // Untouched OCR text
}

type scanResultJSON struct {
	Amount     json.RawMessage `json:"amount"`
	Date       *string         `json:"date"`
	Merchant   *string         `json:"merchant"`
	Confidence int             `json:"confidence"`
	RawText    string          `json:"rawText"`
}

// MarshalJSON renders absent fields as null and the amount as a plain
// number with two fraction digits (e.g. 12.50).
func (r ScanResult) MarshalJSON() ([]byte, error) {
	out := scanResultJSON{
		Amount:     json.RawMessage("null"),
		Confidence: r.Confidence,
		RawText:    r.RawText,
	}
	if r.Amount.Valid {
		out.Amount = json.RawMessage(r.Amount.Decimal.StringFixed(2))
	}
	if r.Date != "" {
		out.Date = &r.Date
	}
	if r.Merchant != "" {
		out.Merchant = &r.Merchant
	}
	return json.Marshal(out)
}
