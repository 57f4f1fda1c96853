package domain

import "time"

const (
	// AuthTokenKey is the credential key holding the backend access token.
	AuthTokenKey = "authToken"

	// RefreshTokenKey is the credential key holding the refresh token.
	RefreshTokenKey = "refreshToken"

	// MaxInputBuffer is the default number of recent tokens kept by the
	// keypad matcher. It is raised to the longest configured code if needed.
	MaxInputBuffer = 64

	// DefaultIdleReset is how long the keypad may sit idle before the
	// input buffer is discarded.
	DefaultIdleReset = 3 * time.Second

	// DefaultWindowMin and DefaultWindowMax bound the equalized delay
	// applied before either terminal navigation.
	DefaultWindowMin = 300 * time.Millisecond
	DefaultWindowMax = 600 * time.Millisecond

	// DefaultNotifyTimeout caps the fire-and-forget logout call.
	DefaultNotifyTimeout = 5 * time.Second
)

// DefaultCredentialKeys lists the keys wiped on duress when no explicit
// list is configured.
func DefaultCredentialKeys() []string {
	return []string{AuthTokenKey, RefreshTokenKey}
}

const (
	// MaxRequestBodySize bounds JSON bodies on the disguise and backend APIs.
	MaxRequestBodySize = 4 * 1024

	// SessionTTL is how long the backend keeps an issued session.
	SessionTTL = 24 * time.Hour
)
