// Package extraction turns the OCR text of an Italian receipt into a total
// amount, a transaction date and a merchant name.
package extraction

// Extract runs every field extractor over text and scores the result.
// It never fails: text without recognizable fields yields an empty result
// with zero confidence.
func Extract(text string) *ScanResult {
	result := &ScanResult{
		Amount:   ExtractAmount(text),
		Date:     ExtractDate(text),
		Merchant: ExtractMerchant(text),
		RawText:  text,
	}
	result.Confidence = Confidence(result.Amount.Valid, result.Date != "", result.Merchant != "")
	return result
}
