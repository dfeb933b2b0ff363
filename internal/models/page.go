package models

// Page is the list envelope used by the backend for paginated collections.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 1
	}
	n := (p.Total + p.PageSize - 1) / p.PageSize
	if n == 0 {
		return 1
	}
	return n
}

func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages() }
func (p Page[T]) HasPrev() bool { return p.Page > 1 }
