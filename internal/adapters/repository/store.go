// Package repository defines the assignment store interface and its CSV
// implementation.
package repository

import (
	"context"

	"github.com/okian/matchdesk/internal/domain/matching"
	"github.com/okian/matchdesk/internal/domain/model"
)

// Columns of the tabular store, in write order.
const (
	ColProfessionalID   = "professional_id"
	ColProfessionalName = "professional_name"
	ColSubject          = "subject"
	ColDueDate          = "due_date"
	ColDemandID         = "demand_id"
)

// Columns lists the store header in write order.
var Columns = []string{ColProfessionalID, ColProfessionalName, ColSubject, ColDueDate, ColDemandID}

// Store provides read/write access to the assignment table.
//
// The store assumes a single writer. Every mutating call is a full
// read-modify-write of the underlying file.
type Store interface {
	// Exists reports whether a store has been initialized.
	Exists(ctx context.Context) (bool, error)

	// Load returns every row in stored order.
	// Returns ErrStoreNotFound if the store is absent.
	Load(ctx context.Context) ([]model.Assignment, error)

	// Initialize writes entries as a new store.
	// Returns ErrStoreExists if a store is already present.
	Initialize(ctx context.Context, entries []model.Assignment) error

	// Append merges entries into the stored rows by demand id and writes
	// the result back.
	Append(ctx context.Context, entries []model.Assignment) (matching.Stats, error)

	// Remove drops every row for which match returns true and reports how
	// many were removed. Nothing is written when no row matches.
	Remove(ctx context.Context, match func(model.Assignment) bool) (int, error)
}
