package table

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Preview renders the first n rows as an aligned text grid with a trailing
// shape line, e.g. "[5 rows x 3 columns]".
func Preview(t *Table, n int) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.columns, "\t"))
	for _, r := range t.Head(n).rows {
		cells := make([]string, len(t.columns))
		for i, c := range t.columns {
			if IsNull(r[c]) {
				cells[i] = "NaN"
				continue
			}
			cells[i] = Format(r[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
	fmt.Fprintf(&b, "[%d rows x %d columns]", len(t.rows), len(t.columns))
	return b.String()
}

func (t *Table) String() string { return Preview(t, 5) }
