package pgquery

// Pagination defaults.
const (
	DefaultPageSize   = 10
	DefaultPageNumber = 1
)

// PageParams selects one page of results. Page numbers start at 1.
// Non-positive fields fall back to the defaults.
type PageParams struct {
	PageSize   int `json:"page_size"`
	PageNumber int `json:"page_number"`
}

// DefaultPage returns the first page with the default size.
func DefaultPage() PageParams {
	return PageParams{PageSize: DefaultPageSize, PageNumber: DefaultPageNumber}
}

func (p PageParams) size() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

func (p PageParams) number() int {
	if p.PageNumber <= 0 {
		return DefaultPageNumber
	}
	return p.PageNumber
}

// Limit is the page size.
func (p PageParams) Limit() int { return p.size() }

// Offset is the number of rows before the page.
func (p PageParams) Offset() int { return p.size() * (p.number() - 1) }

// ClampPageSize returns p with the page size capped at limit.
func (p PageParams) ClampPageSize(limit int) PageParams {
	if limit > 0 && p.size() > limit {
		p.PageSize = limit
	}
	return p
}

// NumberOfPages returns how many pages hold total rows.
func (p PageParams) NumberOfPages(total int64) int64 {
	if total <= 0 {
		return 0
	}
	size := int64(p.size())
	return (total + size - 1) / size
}

// Page is one page of results and the totals needed to render a pager.
type Page[T any] struct {
	Items         []T   `json:"items"`
	Total         int64 `json:"total"`
	PageSize      int   `json:"page_size"`
	PageNumber    int   `json:"page_number"`
	NumberOfPages int64 `json:"number_of_pages"`
}

// NewPage wraps items fetched with p, given the unpaginated total.
func NewPage[T any](items []T, total int64, p PageParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:         items,
		Total:         total,
		PageSize:      p.size(),
		PageNumber:    p.number(),
		NumberOfPages: p.NumberOfPages(total),
	}
}
