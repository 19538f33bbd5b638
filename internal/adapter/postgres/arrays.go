package postgres

// TextArray returns values ready to bind to a NOT NULL text[] column.
func TextArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
