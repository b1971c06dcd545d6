package bigrow

// Cell is a single value addressed by (column family, qualifier).
type Cell struct {
	Family    string `json:"family"`
	Qualifier string `json:"qualifier"`
	Value     []byte `json:"value"`
}

// Row stores the contents of a single row: its key and its cells.
type Row struct {
	Key   string `json:"row_key"`
	Cells []Cell `json:"cells"`
}

// Value returns the value of the cell at (family, qualifier), or nil if the
// row has no such cell.
func (r *Row) Value(family, qualifier string) []byte {
	for _, c := range r.Cells {
		if c.Family == family && c.Qualifier == qualifier {
			return c.Value
		}
	}
	return nil
}
