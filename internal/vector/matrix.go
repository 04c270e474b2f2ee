package vector

import "fmt"

// Matrix is the term matrix: row i is the weighted vector of corpus term i.
// Column postings are kept alongside the rows so a query only touches the
// rows that share a feature with it.
type Matrix struct {
	cols     int
	rows     []SparseVector
	norms    []float64
	postings [][]posting
}

type posting struct {
	row    int
	weight float64
}

// NewMatrix builds a matrix with cols columns from rows. Every row index must
// be within [0, cols) and strictly increasing.
func NewMatrix(cols int, rows []SparseVector) (*Matrix, error) {
	m := &Matrix{
		cols:     cols,
		rows:     rows,
		norms:    make([]float64, len(rows)),
		postings: make([][]posting, cols),
	}
	for r, row := range rows {
		if len(row.Indices) != len(row.Values) {
			return nil, fmt.Errorf("row %d: %d indices but %d values", r, len(row.Indices), len(row.Values))
		}
		prev := -1
		for k, c := range row.Indices {
			if c < 0 || c >= cols {
				return nil, fmt.Errorf("row %d: column %d out of range [0, %d)", r, c, cols)
			}
			if c <= prev {
				return nil, fmt.Errorf("row %d: columns not strictly increasing at %d", r, c)
			}
			prev = c
			m.postings[c] = append(m.postings[c], posting{row: r, weight: row.Values[k]})
		}
		m.norms[r] = row.Norm()
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	return len(m.rows)
}

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	return m.cols
}

// Row returns row i. The returned vector must not be modified.
func (m *Matrix) Row(i int) SparseVector {
	return m.rows[i]
}

// Scores returns the cosine similarity of query against every row, indexed by row.
// Rows sharing no feature with query, and every row when query is the zero
// vector, score 0.
func (m *Matrix) Scores(query SparseVector) []float64 {
	scores := make([]float64, len(m.rows))
	qNorm := query.Norm()
	if qNorm == 0 {
		return scores
	}
	for k, c := range query.Indices {
		if c < 0 || c >= m.cols {
			continue
		}
		w := query.Values[k]
		for _, p := range m.postings[c] {
			scores[p.row] += w * p.weight
		}
	}
	for r, dot := range scores {
		if dot == 0 || m.norms[r] == 0 {
			scores[r] = 0
			continue
		}
		scores[r] = clamp01(dot / (qNorm * m.norms[r]))
	}
	return scores
}
