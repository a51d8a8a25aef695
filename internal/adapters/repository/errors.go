package repository

import "errors"

// Sentinel kinds for assignment store errors.
var (
	ErrStoreNotFound = errors.New("assignment store not found")
	ErrStoreExists   = errors.New("assignment store already exists")
	ErrCorruptStore  = errors.New("assignment store is corrupt")
	ErrExportFailed  = errors.New("structured export failed")
)
