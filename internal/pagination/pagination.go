package pagination

import (
	"gorm.io/gorm"
)

// DefaultPerPage is the page size used when the client does not send one.
const DefaultPerPage = 15

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// Defaults fills in default values when page or per_page are not provided.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PerPage == 0 {
		p.PerPage = DefaultPerPage
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// Page wraps one page of items with its metadata. Meta is nil for
// unpaginated short lists.
type Page[T any] struct {
	Items []T
	Meta  *Meta
}

// NewPage creates a Page from the given items and total count.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	lastPage := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items: items,
		Meta: &Meta{
			CurrentPage: req.Page,
			LastPage:    lastPage,
			PerPage:     req.PerPage,
			Total:       total,
		},
	}
}

// List wraps an unpaginated list.
func List[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PerPage)
	}
}
