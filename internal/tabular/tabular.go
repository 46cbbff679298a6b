// Package tabular reads and writes the delimited files exchanged by the
// pipeline: UTF-8, comma separated, with a header row.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapprice/pkg/core"
)

// DefaultNullTokens are the cell values read as null.
var DefaultNullTokens = []string{
	"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "NULL", "null", "#N/A", "<NA>", "None",
}

// Options controls how cells are read.
type Options struct {
	// NullTokens overrides DefaultNullTokens when non-nil.
	NullTokens []string
}

func (o Options) nullTokens() []string {
	if o.NullTokens != nil {
		return o.NullTokens
	}
	return DefaultNullTokens
}

// ReadCSV loads a table from path.
//
// A column whose non-null cells all parse as floats becomes numeric;
// otherwise every non-null cell of the column stays a string.
func ReadCSV(path string, opts Options) (core.Table, error) {
	f, err := open(path)
	if err != nil {
		return core.Table{}, err
	}
	defer func() { _ = f.Close() }()

	return Read(f, opts)
}

// Read loads a table from r. Numeric cells that parse as NaN in any
// spelling are read as null.
func Read(r io.Reader, opts Options) (core.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.Table{}, fmt.Errorf("csv has no header row")
	}
	if err != nil {
		return core.Table{}, fmt.Errorf("failed to read header: %w", err)
	}
	header = trimBOM(header)
	if err := checkHeader(header); err != nil {
		return core.Table{}, err
	}

	records, err := cr.ReadAll()
	if err != nil {
		return core.Table{}, fmt.Errorf("failed to read records: %w", err)
	}

	nulls := opts.nullTokens()
	numeric := make([]bool, len(header))
	for j := range header {
		numeric[j] = true
		for _, rec := range records {
			if j >= len(rec) || slices.Contains(nulls, rec[j]) {
				continue
			}
			if _, err := strconv.ParseFloat(rec[j], 64); err != nil {
				numeric[j] = false
				break
			}
		}
	}

	t := core.Table{Columns: header, Rows: make([]core.Row, 0, len(records))}
	for i, rec := range records {
		if len(rec) > len(header) {
			return core.Table{}, fmt.Errorf("record %d has %d fields, header has %d", i+2, len(rec), len(header))
		}
		row := make(core.Row, len(header))
		for j, name := range header {
			if j >= len(rec) || slices.Contains(nulls, rec[j]) {
				row[name] = nil
				continue
			}
			if numeric[j] {
				v, _ := strconv.ParseFloat(rec[j], 64)
				if math.IsNaN(v) {
					row[name] = nil
				} else {
					row[name] = v
				}
			} else {
				row[name] = rec[j]
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// ReadHeader returns the column names of a CSV file without loading its rows.
// It is how the training reference schema is read from a prepared file.
func ReadHeader(path string) ([]string, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	header, err := csv.NewReader(f).Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s has no header row", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	header = trimBOM(header)
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	return header, nil
}

// WriteCSV writes t to path. The file is written to a temporary sibling and
// renamed into place, so a failed write never leaves a partial file.
func WriteCSV(path string, t core.Table) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmp.Name(), err)
	}
	if err = Write(tmp, t); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// Write encodes t as CSV.
func Write(w io.Writer, t core.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j, c := range t.Columns {
			rec[j] = FormatValue(row[c])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatValue renders a cell for output. Nulls are written as empty cells.
func FormatValue(v core.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &core.MissingInputFileError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func trimBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}

func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return fmt.Errorf("duplicate column %q in header", h)
		}
		seen[h] = true
	}
	return nil
}
