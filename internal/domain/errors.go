package domain

import "errors"

var (
	// ErrReferenceTable is returned when the reference table is missing, unreadable or malformed
	ErrReferenceTable = errors.New("reference table unavailable")

	// ErrMissingColumn is returned when a required reference column is absent
	ErrMissingColumn = errors.New("reference table missing required column")

	// ErrMissingDisplayName is returned when a reference row has no display name
	ErrMissingDisplayName = errors.New("reference row missing display name")

	// ErrInvalidLexicon is returned when a lexicon file cannot be parsed
	ErrInvalidLexicon = errors.New("invalid lexicon")

	// ErrFoodNotFound is returned when a fragment does not resolve to any reference food
	ErrFoodNotFound = errors.New("food not found in reference table")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCatalogNotLoaded is returned when no reference table has been loaded yet
	ErrCatalogNotLoaded = errors.New("reference catalog not loaded")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnauthorized is returned when an admin request lacks a valid token
	ErrUnauthorized = errors.New("admin token required")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
