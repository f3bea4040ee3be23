package nutrition

// Transpose swaps the rows and columns of a matrix, ragged rows are treated
// as if padded with missing cells which are skipped.
//
// ex. [[a1 b1] [a2 b2] [a3 b3]] becomes [[a1 a2 a3] [b1 b2 b3]].
func Transpose[T any](rows [][]T) [][]T {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	out := make([][]T, width)
	for col := range out {
		out[col] = make([]T, 0, len(rows))
		for _, row := range rows {
			if col < len(row) {
				out[col] = append(out[col], row[col])
			}
		}
	}
	return out
}
