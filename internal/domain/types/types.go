// Package types contains common types used across the application
package types

import (
	"encoding/json"

	"github.com/okian/matchdesk/internal/domain/model"
)

// Record is the structured export form of an assignment. A single assignee
// is written as a scalar, several as an array. Integer identifiers are
// written as JSON numbers.
type Record struct {
	ProfessionalID   any    `json:"professional_id"`
	ProfessionalName any    `json:"professional_name"`
	Subject          string `json:"subject"`
	DueDate          string `json:"due_date"`
	DemandID         any    `json:"demand_id"`
}

// FromAssignment converts an assignment to its export record.
func FromAssignment(a model.Assignment) Record {
	r := Record{
		Subject:  a.Subject,
		DueDate:  a.DueDate,
		DemandID: jsonID(a.DemandID),
	}

	if len(a.ProfessionalIDs) == 1 {
		r.ProfessionalID = jsonID(a.ProfessionalIDs[0])
	} else {
		ids := make([]any, len(a.ProfessionalIDs))
		for i, id := range a.ProfessionalIDs {
			ids[i] = jsonID(id)
		}
		r.ProfessionalID = ids
	}

	if len(a.ProfessionalNames) == 1 {
		r.ProfessionalName = a.ProfessionalNames[0]
	} else {
		r.ProfessionalName = append([]string(nil), a.ProfessionalNames...)
	}

	return r
}

// FromAssignments converts a table of assignments, preserving order.
func FromAssignments(entries []model.Assignment) []Record {
	out := make([]Record, len(entries))
	for i, a := range entries {
		out[i] = FromAssignment(a)
	}
	return out
}

// jsonID normalizes integer identifiers to a native JSON number.
func jsonID(id model.ID) any {
	if _, ok := id.Int(); ok {
		return json.Number(id)
	}
	return string(id)
}
