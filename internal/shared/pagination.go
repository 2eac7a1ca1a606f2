package shared

import "math"

// PageRequest is the pagination input injected into handlers that declare a
// pageable binding. Values come from the page/size/sort/order query params.
type PageRequest struct {
	Page  int
	Size  int
	Sort  string
	Order string
}

// Normalize clamps the request to sane defaults.
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 || p.Size > 200 {
		p.Size = 20
	}
	if p.Order != "asc" && p.Order != "desc" {
		p.Order = "asc"
	}
	return p
}

// Offset returns the SQL offset for the normalized request.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Size
}

// OrderBy renders the ORDER BY expression for the request. Only sort keys in
// the whitelist reach the SQL text; anything else, including an empty sort,
// falls back to the given column. The whitelist maps wire names to column
// names, so the request never contributes raw SQL.
func (p PageRequest) OrderBy(sortable map[string]string, fallback string) string {
	n := p.Normalize()
	column, ok := sortable[n.Sort]
	if !ok {
		return fallback
	}
	if n.Order == "desc" {
		return column + " DESC"
	}
	return column + " ASC"
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}
