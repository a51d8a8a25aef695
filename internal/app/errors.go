package service

import "errors"

// Service errors.
var (
	// ErrNoMatchFound is returned when rows exist but none satisfy the request.
	ErrNoMatchFound = errors.New("no match found")

	// ErrEmptyStore is returned by queries when the store holds no rows.
	ErrEmptyStore = errors.New("store is empty")
)
