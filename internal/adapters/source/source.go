// Package source reads professional and demand tables from CSV files.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/matchdesk/internal/domain/model"
)

// Required input columns.
const (
	ColProfessionalID = "id_prof"
	ColName           = "name"
	ColSubject        = "subject"
	ColDemandID       = "id_data"
	ColDueDate        = "due_date"
)

const utf8BOM = "\ufeff"

// LoadProfessionals reads a professionals CSV with columns id_prof, name and
// subject. Other columns are ignored.
func LoadProfessionals(ctx context.Context, path string) ([]model.Professional, error) {
	var out []model.Professional
	err := openAndRead(path, func(r io.Reader) (err error) {
		out, err = ReadProfessionals(ctx, r)
		return err
	})
	return out, err
}

// LoadDemands reads a demands CSV with columns id_data, subject and due_date.
// Other columns are ignored.
func LoadDemands(ctx context.Context, path string) ([]model.Demand, error) {
	var out []model.Demand
	err := openAndRead(path, func(r io.Reader) (err error) {
		out, err = ReadDemands(ctx, r)
		return err
	})
	return out, err
}

// ReadProfessionals parses professionals from r.
func ReadProfessionals(ctx context.Context, r io.Reader) ([]model.Professional, error) {
	var out []model.Professional
	err := read(ctx, r, []string{ColProfessionalID, ColName, ColSubject}, func(row []string, col map[string]int) {
		out = append(out, model.Professional{
			ID:      model.ID(strings.TrimSpace(row[col[ColProfessionalID]])),
			Name:    row[col[ColName]],
			Subject: row[col[ColSubject]],
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadDemands parses demands from r.
func ReadDemands(ctx context.Context, r io.Reader) ([]model.Demand, error) {
	var out []model.Demand
	err := read(ctx, r, []string{ColDemandID, ColSubject, ColDueDate}, func(row []string, col map[string]int) {
		out = append(out, model.Demand{
			ID:      model.ID(strings.TrimSpace(row[col[ColDemandID]])),
			Subject: row[col[ColSubject]],
			DueDate: row[col[ColDueDate]],
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func openAndRead(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// read parses a header row, checks required columns, and emits every data
// row with the column index.
func read(ctx context.Context, r io.Reader, required []string, emit func([]string, map[string]int)) error {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s (empty input)", ErrMissingColumn, strings.Join(required, ", "))
	}
	if err != nil {
		return fmt.Errorf("%w: header: %w", ErrSourceUnreadable, err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if _, dup := col[h]; !dup {
			col[h] = i
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
		}
		emit(row, col)
	}
}
