package domain

// PaginationParams holds offset-based pagination parameters for list queries.
// From is the number of rows to skip; Size the page size.
type PaginationParams struct {
	From int
	Size int
}

// Normalize clamps negative offsets and applies the default page size.
func (p PaginationParams) Normalize() PaginationParams {
	if p.From < 0 {
		p.From = 0
	}
	if p.Size < 1 {
		p.Size = 10
	}
	return p
}
