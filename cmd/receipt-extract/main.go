package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/scan-receipt/internal/extraction"
)

// receipt-extract runs the field extractor over OCR text that was recognized
// elsewhere, e.g. to replay a rawText captured from the server logs.
func main() {
	fs := ff.NewFlagSet("receipt-extract")
	var (
		input  = fs.StringLong("input", "-", "File with OCR text, or - for stdin")
		pretty = fs.BoolLong("pretty", "Indent the JSON output")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_EXTRACT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	text, err := readInput(*input)
	if err != nil {
		slog.Error("Failed to read OCR text", "input", *input, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(extraction.Extract(text)); err != nil {
		slog.Error("Failed to encode result", "error", err)
		os.Exit(1)
	}
}

func readInput(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
