package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/scan-receipt/internal/receipt"
	"github.com/zombor/scan-receipt/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("scan-receipt")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		recognizer     = fs.StringLong("recognizer", "vision", "Text recognizer: 'vision', 'gemini' or 'ollama'")
		serviceAccount = fs.StringLong("service-account", "", "Path to a Google service account key (or set GOOGLE_SERVICE_ACCOUNT_JSON to its contents)")
		languageHint   = fs.StringLong("language-hint", "it", "Language hint passed to Cloud Vision")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		cacheDB        = fs.StringLong("cache-db", "", "BoltDB file caching recognized text per image (disabled when empty)")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		debug          = fs.BoolLong("debug", "Enable debug logging")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SCAN_RECEIPT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if *debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx := context.Background()

	// Initialize scanner based on type. A missing credential is not fatal:
	// the server still starts and answers every scan with config_error.
	var scanner scanning.Scanner
	var err error
	switch *recognizer {
	case "vision":
		keyJSON, keyErr := loadServiceAccount(*serviceAccount)
		if keyErr != nil {
			slog.Error("Failed to read service account", "error", keyErr)
			os.Exit(1)
		}
		if len(keyJSON) == 0 {
			slog.Warn("Google service account not configured. Set --service-account or GOOGLE_SERVICE_ACCOUNT_JSON")
			break
		}
		slog.Info("Initializing Cloud Vision scanner...", "language_hint", *languageHint)
		scanner, err = scanning.NewVision(ctx, keyJSON, *languageHint)
		if err != nil {
			slog.Error("Failed to initialize Cloud Vision", "error", err)
			os.Exit(1)
		}
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaModel)
		scanner, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid recognizer", "recognizer", *recognizer, "valid", "vision, gemini or ollama")
		os.Exit(1)
	}

	if scanner != nil && *cacheDB != "" {
		slog.Info("Enabling text cache...", "path", *cacheDB)
		scanner, err = scanning.NewCachedScanner(scanner, *cacheDB)
		if err != nil {
			slog.Error("Failed to open text cache", "error", err)
			os.Exit(1)
		}
	}
	if scanner != nil {
		defer scanner.Close()
	}

	basicAuth := receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := receipt.NewServer(receipt.NewService(scanner), basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
}

// loadServiceAccount reads the key from path, falling back to the
// GOOGLE_SERVICE_ACCOUNT_JSON environment variable
func loadServiceAccount(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return data, nil
	}
	return []byte(strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))), nil
}
