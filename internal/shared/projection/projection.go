package projection

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page selects a window of a listing. Number is zero-based.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return p.Number * p.Size
}

// Paged is one window of a listing plus the total number of matching rows.
type Paged[T any] struct {
	Items []T
	Page  Page
	Total int64
}

// TotalPages reports how many pages of Page.Size cover Total.
func (p Paged[T]) TotalPages() int {
	if p.Page.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Page.Size) - 1) / int64(p.Page.Size))
}

// Window applies page to an already ordered in-memory slice.
func Window[T any](all []T, page Page) Paged[T] {
	page = page.Normalize()
	total := int64(len(all))
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	return Paged[T]{Items: items, Page: page, Total: total}
}
