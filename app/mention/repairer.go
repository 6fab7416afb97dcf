package mention

// RepairColumns drops leftmost columns while the table is wider than
// maxColumns, at most maxIterations times. It returns the names of the
// dropped columns in drop order. Tables already within maxColumns are left
// untouched.
func RepairColumns(t *Table, maxColumns, maxIterations int) []string {
	var dropped []string
	for i := 0; i < maxIterations; i++ {
		if t.Width() <= maxColumns {
			break
		}
		dropped = append(dropped, t.Header[0])
		t.Header = t.Header[1:]
		for j, row := range t.Rows {
			t.Rows[j] = row[1:]
		}
	}
	return dropped
}
