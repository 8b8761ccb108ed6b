// package env contains simple getters for the environment variables the
// service reads. Configuration is resolved here once and handed to the
// components as plain values, never read from ambient state deeper down.
package env

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manzanit0/whereabouts/pkg/claude"
)

const defaultMaxUploadBytes = 10 << 20 // 10 MiB

// ClaudeConfig assembles the inference-service settings. A missing API key
// is deliberately not an error here: the service boots without it and
// answers uploads with a configuration-error result instead.
func ClaudeConfig() claude.Config {
	return claude.Config{
		APIKey: os.Getenv("CLAUDE_API_KEY"),
		APIURL: os.Getenv("CLAUDE_API_URL"),
		Model:  os.Getenv("CLAUDE_MODEL"),
	}
}

// MaxUploadBytes returns the upload size cap from MAX_UPLOAD_BYTES,
// defaulting to 10 MiB when unset.
func MaxUploadBytes() (int64, error) {
	v := os.Getenv("MAX_UPLOAD_BYTES")
	if v == "" {
		return defaultMaxUploadBytes, nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse MAX_UPLOAD_BYTES as integer: %s", err.Error())
	}

	if n <= 0 {
		return 0, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive number of bytes, got %d", n)
	}

	return n, nil
}
