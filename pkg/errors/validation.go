package errors

import (
	"strings"
	"unicode"
)

// ValidateVersionID validates a version identifier taken from a request
// path or an upstream listing before it is used inside a storage key.
//
// The rules are conservative:
//   - No empty identifiers
//   - Maximum length of 128 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
func ValidateVersionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidVersion, "version id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidVersion, "version id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidVersion, "version id contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidVersion, "version id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateKey validates a storage key for safety.
// Keys are slash-separated relative paths.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute keys (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidPath, "key cannot be empty")
	}

	const maxKeyLength = 500
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidPath, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "key contains invalid characters")
		}
	}

	if strings.HasPrefix(key, "/") {
		return New(ErrCodeInvalidPath, "key must be relative (cannot start with /)")
	}

	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "key cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(key, "\\") {
		return New(ErrCodeInvalidPath, "key cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
