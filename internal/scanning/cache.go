package scanning

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

const textCacheBucket = "recognized_text"

// CachedScanner remembers the text recognized for each image so a retried
// upload does not pay for a second OCR call. Images are keyed by their
// SHA-256 digest; only the recognized text is stored.
type CachedScanner struct {
	next Scanner
	db   *bbolt.DB
}

// NewCachedScanner wraps next with a BoltDB-backed text cache at path
func NewCachedScanner(next Scanner, path string) (*CachedScanner, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening text cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(textCacheBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache bucket: %w", err)
	}

	return &CachedScanner{next: next, db: db}, nil
}

// RecognizeText returns cached text when the same image was seen before
func (c *CachedScanner) RecognizeText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	key := imageKey(imageData)

	var cached []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(textCacheBucket)).Get(key); v != nil {
			// v is only valid inside the transaction
			cached = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		slog.Warn("Failed to read text cache", "error", err)
	}
	if cached != nil {
		slog.Debug("Text cache hit", "key", string(key))
		return string(cached), nil
	}

	text, err := c.next.RecognizeText(ctx, imageData, contentType)
	if err != nil {
		return "", err
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(textCacheBucket)).Put(key, []byte(text))
	})
	if err != nil {
		// The text is still good; the next upload of this image just misses
		slog.Warn("Failed to write text cache", "error", err)
	}
	return text, nil
}

// Close closes the cache and the wrapped scanner
func (c *CachedScanner) Close() error {
	dbErr := c.db.Close()
	if err := c.next.Close(); err != nil {
		return err
	}
	return dbErr
}

func imageKey(imageData []byte) []byte {
	sum := sha256.Sum256(imageData)
	return []byte(hex.EncodeToString(sum[:]))
}
