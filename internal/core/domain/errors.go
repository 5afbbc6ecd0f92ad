package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrCacheMiss indicates the cache holds no live entry for a key
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnknownContentType indicates no directory profile exists for a content type
	ErrUnknownContentType = errors.New("unknown content type")

	// ErrContentStoreUnavailable indicates the content store could not be reached
	ErrContentStoreUnavailable = errors.New("content store unavailable")

	// ErrFlushInProgress indicates another cache flush holds the flush lock
	ErrFlushInProgress = errors.New("cache flush already in progress")
)
