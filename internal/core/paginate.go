package core

// Page holds one page of a paginated list.
type Page[T any] struct {
	Items      []T
	TotalPages int
}

// Paginate slices items for a 1-indexed page of the given size.
// TotalPages is ceil(len(items)/size). The requested page is not
// clamped: a page beyond the range yields an empty slice, the caller
// is responsible for rendering only in-range links.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		return Page[T]{}
	}
	total := (len(items) + size - 1) / size

	start := (page - 1) * size
	end := start + size
	if start < 0 {
		start = 0
	}
	if start > len(items) {
		start = len(items)
	}
	if end < start {
		end = start
	}
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{Items: items[start:end], TotalPages: total}
}
