// Package client is the Go consumer of the board API. It persists an
// anonymous client key, talks to the HTTP surface and keeps a local feed
// that applies vote transitions optimistically, rolling them back when the
// server rejects them.
package client

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// GetOrCreateClientKey returns the key stored at path, minting and
// persisting a fresh one on first use. The key is the only identity the
// board knows about, losing the file means losing vote and ownership state.
func GetOrCreateClientKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key := strings.TrimSpace(string(data))
		if key != "" {
			return key, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read client key: %w", err)
	}

	key := "user_" + uuid.NewString()
	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persist client key: %w", err)
	}

	return key, nil
}
