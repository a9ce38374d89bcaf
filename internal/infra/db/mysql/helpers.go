package mysql

// nullIfEmpty maps "" to SQL NULL for optional foreign keys
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
