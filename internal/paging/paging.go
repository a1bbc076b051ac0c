// Package paging slices list results into display pages.
package paging

// Paginate returns the items of a 1-indexed page: [(page-1)*size,
// page*size) clamped to the list. A page below 1 is page 1; a size of
// zero or less yields nothing.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return nil
	}
	if page < 1 {
		page = 1
	}
	// Compare in page units so huge page numbers cannot overflow start.
	if page-1 >= TotalPages(len(items), size) || len(items) == 0 {
		return nil
	}
	start := (page - 1) * size
	end := len(items)
	if size < end-start {
		end = start + size
	}
	return items[start:end]
}

// TotalPages is ceil(n/size), never less than 1.
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return 1 + (n-1)/size
}

// Page is one page of a list along with its position.
type Page[T any] struct {
	Items  []T
	Number int
	Size   int
	Total  int
	Pages  int
}

// New slices items into page number of the given size.
func New[T any](items []T, number, size int) Page[T] {
	if number < 1 {
		number = 1
	}
	return Page[T]{
		Items:  Paginate(items, number, size),
		Number: number,
		Size:   size,
		Total:  len(items),
		Pages:  TotalPages(len(items), size),
	}
}

func (p Page[T]) HasPrev() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool { return p.Number < p.Pages }

// First is the 1-indexed position of the first item on the page, or 0
// when the page is empty.
func (p Page[T]) First() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Number-1)*p.Size + 1
}

// Last is the 1-indexed position of the last item on the page.
func (p Page[T]) Last() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.First() + len(p.Items) - 1
}
