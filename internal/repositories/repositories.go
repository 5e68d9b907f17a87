package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenKey is the key the bearer token is stored under in every backend.
const TokenKey = "spotify_token"

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	return nil
}

// normalize trims surrounding whitespace so pasted tokens round-trip cleanly.
func normalize(token string) string {
	return strings.TrimSpace(token)
}
