// Package model contains domain models passed between layers.
package model

import "strconv"

// ID identifies a professional or a demand. Identifiers keep the exact text
// they were read with; Int reports whether that text is a canonical integer.
type ID string

func (id ID) String() string { return string(id) }

// Int returns the integer value of id when its text is a canonical base-10
// integer ("42", "-7"). Text such as "007" or "4.0" is not canonical.
func (id ID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatInt(n, 10) != string(id) {
		return 0, false
	}
	return n, true
}

// Professional is a person able to cover demands for one subject.
type Professional struct {
	ID      ID
	Name    string
	Subject string // join key, compared exactly
}

// Demand is a unit of work for a subject with a due date.
type Demand struct {
	ID      ID
	Subject string
	DueDate string // ISO-like, compared lexicographically
}

// Assignment is one row of the assignment store: a demand and the
// professionals covering it. ProfessionalIDs and ProfessionalNames are
// parallel and ordered by assignment time; a single element is the scalar
// case.
type Assignment struct {
	DemandID          ID
	Subject           string
	DueDate           string
	ProfessionalIDs   []ID
	ProfessionalNames []string
}

// NewAssignment creates the single-assignee entry for d covered by p.
func NewAssignment(p Professional, d Demand) Assignment {
	return Assignment{
		DemandID:          d.ID,
		Subject:           d.Subject,
		DueDate:           d.DueDate,
		ProfessionalIDs:   []ID{p.ID},
		ProfessionalNames: []string{p.Name},
	}
}

// Merged reports whether more than one professional covers the demand.
func (a Assignment) Merged() bool { return len(a.ProfessionalIDs) > 1 }

// HasProfessional reports whether id is among the assignees.
func (a Assignment) HasProfessional(id ID) bool {
	for _, v := range a.ProfessionalIDs {
		if v == id {
			return true
		}
	}
	return false
}

// HasProfessionalName reports whether name equals the scalar assignee name or
// is a member of the merged name sequence.
func (a Assignment) HasProfessionalName(name string) bool {
	for _, v := range a.ProfessionalNames {
		if v == name {
			return true
		}
	}
	return false
}

// AddProfessional appends an assignee after the existing ones. It returns
// false and leaves a unchanged when the same id and name are already
// assigned; a reused id under a different name is kept as its own assignee.
func (a *Assignment) AddProfessional(id ID, name string) bool {
	for i, v := range a.ProfessionalIDs {
		if v == id && a.ProfessionalNames[i] == name {
			return false
		}
	}
	a.ProfessionalIDs = append(a.ProfessionalIDs, id)
	a.ProfessionalNames = append(a.ProfessionalNames, name)
	return true
}

// Clone returns a deep copy so callers can mutate assignee slices freely.
func (a Assignment) Clone() Assignment {
	c := a
	c.ProfessionalIDs = append([]ID(nil), a.ProfessionalIDs...)
	c.ProfessionalNames = append([]string(nil), a.ProfessionalNames...)
	return c
}
