package cache

import (
	"context"
	"fmt"
	"regexp"
)

// Store is a persistent key -> JSON document map. Missing keys are not errors.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
	Close() error
}

var reKey = regexp.MustCompile(`^[a-f0-9]{16,128}$`)

func validKey(key string) error {
	if !reKey.MatchString(key) {
		return fmt.Errorf("invalid cache key %q", key)
	}
	return nil
}
