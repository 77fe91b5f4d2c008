// Package output writes scored rows to the CSV table consumed downstream.
package output

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/newspulse/internal/domain/model"
)

// ErrWrite wraps every failure to produce the output table.
var ErrWrite = errors.New("write output table failed")

// CSVWriter writes the whole table to a fixed path, replacing prior contents.
type CSVWriter struct {
	path string
}

// NewCSVWriter creates a writer targeting path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Path returns the destination file.
func (w *CSVWriter) Path() string { return w.path }

// Write renders the header and rows to a temporary file beside the
// destination and renames it into place, so readers never observe a partial
// table and a failed run leaves the previous file untouched.
func (w *CSVWriter) Write(ctx context.Context, rows []model.ScoredRow) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	cw := csv.NewWriter(tmp)
	if err = cw.Write(model.Columns); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	for _, r := range rows {
		if err = cw.Write(r.Record()); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	cw.Flush()
	if err = cw.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err = os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
