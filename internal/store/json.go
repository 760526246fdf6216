package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// LoadJSON decodes the value under key into v. It reports false when the key
// is absent, unreadable or holds data that does not decode; the cause is
// logged and v is left untouched so the caller keeps its default.
func LoadJSON(ctx context.Context, kv KV, key string, v any, logger *log.Logger) bool {
	data, ok, err := kv.Get(ctx, key)
	if err != nil {
		logf(logger, "failed to read %s: %v", key, err)
		return false
	}
	if !ok || len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logf(logger, "ignoring malformed %s: %v", key, err)
		return false
	}
	return true
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, args...)
}
