// Package ingest reads the raw facility source files (CSV and XLSX) and
// normalizes their heterogeneous column naming into the single Facility shape.
// All per-source special-casing lives here so the analysis stays generic.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// Row is one source record keyed by its (trimmed) header name.
type Row map[string]string

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// StreamCSV reads a headered CSV file and sends one Row per record to a
// channel. Caller must consume the returned row channel. Errors are sent on
// the error channel. Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan Row, <-chan error) {
	rowCh := make(chan Row, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		var header []string
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "ingest: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "ingest: read csv row")
				return
			}

			if header == nil {
				header = make([]string, len(record))
				for i, h := range record {
					header[i] = strings.TrimSpace(h)
				}
				continue
			}

			row := make(Row, len(header))
			for i, field := range record {
				if i >= len(header) {
					break
				}
				row[header[i]] = strings.TrimSpace(field)
			}

			select {
			case rowCh <- row:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "ingest: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSV collects all rows of a headered CSV file.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([]Row, error) {
	rowCh, errCh := StreamCSV(ctx, r, opts)
	var rows []Row
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns the first non-empty value among the given alternate column
// names. Source files disagree on header naming; callers list every spelling
// they have seen.
func (r Row) Get(names ...string) string {
	for _, name := range names {
		if v, ok := r[name]; ok && v != "" {
			return v
		}
	}
	return ""
}
