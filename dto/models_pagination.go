package dto

// Pagination mirrors the list metadata collection endpoints return.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// ValidPage reports whether n is a fetchable page. Page moves outside these
// bounds are no-ops for every accessor.
func (p Pagination) ValidPage(n int) bool {
	return n >= 1 && n <= p.TotalPages
}
