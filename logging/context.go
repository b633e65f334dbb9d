package logging

import (
	"context"

	"go.viam.com/utils"
)

type debugModeKey struct{}

// EnableDebugMode returns a context whose C* log calls ignore the logger's level. An empty key
// is replaced with a random one.
func EnableDebugMode(ctx context.Context, key string) context.Context {
	if key == "" {
		key = utils.RandomAlphaString(6)
	}
	return context.WithValue(ctx, debugModeKey{}, key)
}

// IsDebugMode reports whether ctx was created with EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	return DebugKey(ctx) != ""
}

// DebugKey returns the key passed to EnableDebugMode, or "".
func DebugKey(ctx context.Context) string {
	key, _ := ctx.Value(debugModeKey{}).(string)
	return key
}
