package table

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// ReadCSV decodes a header-first CSV stream. Empty fields become nil; every
// other field is kept as a string.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "table: read csv header")
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	t := New(header...)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "table: read csv line %d", line)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i >= len(rec) || rec[i] == "" {
				row[col] = nil
				continue
			}
			row[col] = rec[i]
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// WriteCSV encodes t with a header line. Null values are written as empty
// fields.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return errors.Wrap(err, "table: write csv header")
	}
	rec := make([]string, len(t.columns))
	for _, r := range t.rows {
		for i, c := range t.columns {
			rec[i] = Format(r[c])
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "table: write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "table: flush csv")
}

func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}
