package scanning

import "strings"

// transcriptionPrompt is the shared prompt used by all LLM providers. The
// extraction engine expects raw receipt text, so the model must not summarize.
const transcriptionPrompt = `You are an OCR engine reading a photo of a printed Italian receipt (scontrino).

Transcribe ALL text exactly as printed, from top to bottom:
- Keep one printed line per output line, in the original order
- Keep numbers, decimal commas, currency symbols (€, EUR) and punctuation exactly as printed
- Keep Italian words and abbreviations unchanged (e.g. "TOTALE", "P.IVA", "CONTANTI")
- Do not translate, summarize, correct, or add any commentary
- Do not use markdown code blocks

If the image contains no readable text, respond with an empty message.`

// cleanTranscript strips markdown code fences and surrounding whitespace that
// LLMs add despite being told not to
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		// Drop the opening fence line, which may carry a language tag
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		} else {
			text = ""
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
