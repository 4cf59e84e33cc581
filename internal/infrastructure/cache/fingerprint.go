package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Fingerprint derives the content identifier of the file at path.
//
// The fingerprint is the file's base name joined with the hex SHA-256 of its
// bytes, so a rename forces recomputation while identical names with
// different content never collide. If the content cannot be read, it falls
// back to name, modification time and size. That fallback is insensitive to
// content changes that do not touch mtime or size. When the file cannot even
// be stat'ed there is no identity to key on and Fingerprint returns "".
func Fingerprint(path string) string {
	name := filepath.Base(path)

	sum, err := hashFile(path)
	if err == nil {
		return name + "_" + sum
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		return ""
	}
	return fmt.Sprintf("%s_%d_%d", name, info.ModTime().UnixNano(), info.Size())
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
