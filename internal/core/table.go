package core

// Table is the projected output: final column names over row-major cells.
// Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the first column called name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every name is present.
func (t *Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if t.ColumnIndex(n) < 0 {
			return false
		}
	}
	return true
}

// Project copies the resolved source columns into a new Table whose headers
// are the requested canonical names. names and cols are parallel.
func Project(ds *Dataset, cols []SourceColumn, names []string) *Table {
	t := &Table{
		Columns: append([]string(nil), names...),
		Rows:    make([][]string, ds.Rows),
	}

	for r := 0; r < ds.Rows; r++ {
		row := make([]string, len(cols))
		for c, sc := range cols {
			row[c] = ds.Columns[sc.Index].Values[r]
		}
		t.Rows[r] = row
	}

	return t
}
