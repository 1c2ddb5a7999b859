package shared

// Filter carries the listing options shared by the domain repositories.
// Each repository embeds it in its own filter type and applies the fields
// it supports.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}
