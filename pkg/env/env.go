// Package env reads raw environment variables for the few knobs that bypass
// the KUMIKO_-prefixed config struct, such as log formatting.
package env

import "os"

// Get looks up key and falls back when it is unset or empty.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
