package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/matchdesk/internal/domain/model"
)

// Multi-valued cells are JSON string arrays. A single value is written as
// is, unless it starts with '[', in which case it is wrapped in a one-element
// array so it cannot be mistaken for a sequence on read.

func encodeCell(values []string) (string, error) {
	if len(values) == 1 && !strings.HasPrefix(values[0], "[") {
		return values[0], nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeCell reverses encodeCell. Arrays may hold numbers or nested arrays
// (older stores nested a third assignee as [[a, b], c]); both are flattened
// to their text in order. Cells written as list literals with single-quoted
// strings, such as ['A', 'B'], are accepted as well.
func decodeCell(cell string) ([]string, error) {
	if !strings.HasPrefix(cell, "[") {
		return []string{cell}, nil
	}

	out, err := decodeJSONCell(cell)
	if err != nil {
		var litErr error
		if out, litErr = decodeListLiteral(cell); litErr != nil {
			return nil, fmt.Errorf("decode %q: %w", cell, err)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("decode %q: empty sequence", cell)
	}
	return out, nil
}

func decodeJSONCell(cell string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(cell))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data")
	}

	out := make([]string, 0, len(raw))
	if err := flatten(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(values []any, out *[]string) error {
	for _, v := range values {
		switch t := v.(type) {
		case string:
			*out = append(*out, t)
		case json.Number:
			*out = append(*out, t.String())
		case []any:
			if err := flatten(t, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported element %v", v)
		}
	}
	return nil
}

func encodeIDs(ids []model.ID) (string, error) {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = string(id)
	}
	return encodeCell(values)
}

func decodeIDs(cell string) ([]model.ID, error) {
	values, err := decodeCell(cell)
	if err != nil {
		return nil, err
	}
	ids := make([]model.ID, len(values))
	for i, v := range values {
		ids[i] = model.ID(v)
	}
	return ids, nil
}

// encodeRow renders an assignment in Columns order.
func encodeRow(a model.Assignment) ([]string, error) {
	ids, err := encodeIDs(a.ProfessionalIDs)
	if err != nil {
		return nil, err
	}
	names, err := encodeCell(a.ProfessionalNames)
	if err != nil {
		return nil, err
	}
	return []string{ids, names, a.Subject, a.DueDate, string(a.DemandID)}, nil
}

// decodeRow parses a stored row using the header index.
func decodeRow(row []string, col map[string]int) (model.Assignment, error) {
	ids, err := decodeIDs(row[col[ColProfessionalID]])
	if err != nil {
		return model.Assignment{}, fmt.Errorf("%s: %w", ColProfessionalID, err)
	}
	names, err := decodeCell(row[col[ColProfessionalName]])
	if err != nil {
		return model.Assignment{}, fmt.Errorf("%s: %w", ColProfessionalName, err)
	}
	if len(ids) != len(names) {
		return model.Assignment{}, fmt.Errorf("%d professional ids but %d names", len(ids), len(names))
	}
	return model.Assignment{
		DemandID:          model.ID(row[col[ColDemandID]]),
		Subject:           row[col[ColSubject]],
		DueDate:           row[col[ColDueDate]],
		ProfessionalIDs:   ids,
		ProfessionalNames: names,
	}, nil
}
