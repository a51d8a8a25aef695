// Package selector defines the predicates that pick assignment rows for
// queries and retirement.
package selector

import (
	"fmt"
	"strings"

	"github.com/okian/matchdesk/internal/domain/model"
)

// Kind enumerates the supported selectors, numbered as offered to users.
type Kind int

const (
	KindProfessional Kind = iota + 1
	KindID
	KindDateRange
)

func (k Kind) String() string {
	switch k {
	case KindProfessional:
		return "professional"
	case KindID:
		return "id"
	case KindDateRange:
		return "date_range"
	default:
		return "unknown"
	}
}

// ParseKind maps a menu choice ("1".."3") to a Kind.
func ParseKind(choice string) (Kind, error) {
	switch strings.TrimSpace(choice) {
	case "1":
		return KindProfessional, nil
	case "2":
		return KindID, nil
	case "3":
		return KindDateRange, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelector, choice)
	}
}

// Selector reports whether an assignment row is targeted.
type Selector interface {
	Match(a model.Assignment) bool
	Kind() Kind
	String() string
}

type byProfessional struct{ name string }

// ByProfessional selects rows covered by the named professional, whether the
// row has a single assignee or a merged sequence.
func ByProfessional(name string) Selector { return byProfessional{name: name} }

func (s byProfessional) Match(a model.Assignment) bool { return a.HasProfessionalName(s.name) }
func (s byProfessional) Kind() Kind                    { return KindProfessional }
func (s byProfessional) String() string                { return "professional " + s.name }

type byID struct{ id model.ID }

// ByID selects the row for a demand id.
func ByID(id model.ID) Selector { return byID{id: id} }

func (s byID) Match(a model.Assignment) bool { return a.DemandID == s.id }
func (s byID) Kind() Kind                    { return KindID }
func (s byID) String() string                { return "id " + s.id.String() }

type byDateRange struct{ start, end string }

// ByDateRange selects rows with start <= due_date <= end, compared as
// strings. Bounds must be non-blank and ordered.
func ByDateRange(start, end string) (Selector, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return nil, fmt.Errorf("%w: bounds must not be empty", ErrInvalidRange)
	}
	if start > end {
		return nil, fmt.Errorf("%w: start %q is after end %q", ErrInvalidRange, start, end)
	}
	return byDateRange{start: start, end: end}, nil
}

func (s byDateRange) Match(a model.Assignment) bool {
	return a.DueDate >= s.start && a.DueDate <= s.end
}
func (s byDateRange) Kind() Kind     { return KindDateRange }
func (s byDateRange) String() string { return "due dates " + s.start + " to " + s.end }
