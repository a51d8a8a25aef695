// Package matching joins professionals to demands by subject and folds the
// results into an assignment table.
//
// A demand covered by several professionals is kept as one assignment whose
// assignee sequence grows in traversal order; the table never holds two rows
// for the same demand id.
package matching

import (
	"context"
	"fmt"

	"github.com/okian/matchdesk/internal/domain/model"
)

// Stats summarizes how a batch of matches changed a table.
type Stats struct {
	Pairs     int // professional/demand pairs considered
	Added     int // new assignments appended to the table
	Merged    int // assignments that gained a second or later assignee
	Unchanged int // pairs already present in the table
}

// Match joins professionals to demands with equal subject (exact, case- and
// whitespace-sensitive). Professionals are visited in input order and each
// one's demands in input order; the result lists assignments in the order
// their demand was first matched.
func Match(ctx context.Context, professionals []model.Professional, demands []model.Demand) ([]model.Assignment, Stats, error) {
	bySubject := make(map[string][]int, len(demands))
	for i, d := range demands {
		bySubject[d.Subject] = append(bySubject[d.Subject], i)
	}

	t := newTable(nil)
	var stats Stats
	for _, p := range professionals {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, fmt.Errorf("match cancelled: %w", err)
		}
		for _, i := range bySubject[p.Subject] {
			stats.Pairs++
			t.assign(model.NewAssignment(p, demands[i]), 0, &stats)
		}
	}
	return t.rows, stats, nil
}

// Merge folds incoming assignments into existing ones. An incoming demand
// already present gains the incoming assignees after its current ones;
// unknown demands are appended in incoming order. existing is not modified.
func Merge(existing, incoming []model.Assignment) ([]model.Assignment, Stats) {
	t := newTable(existing)
	var stats Stats
	for _, a := range incoming {
		for i := range a.ProfessionalIDs {
			stats.Pairs++
			t.assign(a, i, &stats)
		}
	}
	return t.rows, stats
}

// table is an ordered assignment list indexed by demand id. Rows loaded with
// duplicate demand ids resolve to the first occurrence.
type table struct {
	rows  []model.Assignment
	index map[model.ID]int
	grown map[int]bool // rows that gained an assignee in this batch
}

func newTable(rows []model.Assignment) *table {
	t := &table{
		rows:  make([]model.Assignment, 0, len(rows)),
		index: make(map[model.ID]int, len(rows)),
		grown: make(map[int]bool),
	}
	for _, r := range rows {
		if _, ok := t.index[r.DemandID]; !ok {
			t.index[r.DemandID] = len(t.rows)
		}
		t.rows = append(t.rows, r.Clone())
	}
	return t
}

// assign records the k-th assignee of a against a's demand.
func (t *table) assign(a model.Assignment, k int, stats *Stats) {
	id, name := a.ProfessionalIDs[k], a.ProfessionalNames[k]

	pos, ok := t.index[a.DemandID]
	if !ok {
		row := a.Clone()
		row.ProfessionalIDs = []model.ID{id}
		row.ProfessionalNames = []string{name}
		t.index[a.DemandID] = len(t.rows)
		t.rows = append(t.rows, row)
		stats.Added++
		return
	}

	if !t.rows[pos].AddProfessional(id, name) {
		stats.Unchanged++
		return
	}
	if !t.grown[pos] {
		t.grown[pos] = true
		stats.Merged++
	}
}
