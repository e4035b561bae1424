package shared

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Offset returns the SQL offset for the filter's page settings
func (f Filter) Offset() int {
	if f.Page <= 0 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
