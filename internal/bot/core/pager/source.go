package pager

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrOutOfRange is returned when a requested page lies outside the source's bounds.
	ErrOutOfRange = errors.New("page number out of range")
	// ErrInvalidPerPage is returned when a source is constructed with a page size below 1.
	ErrInvalidPerPage = errors.New("per-page must be at least 1")
)

// PageSource owns an ordered item collection and its page-slicing policy.
// Implementations convert raw page slices into renderable payloads through
// FormatPage; everything else is bookkeeping the view relies on.
type PageSource interface {
	// PrepareOnce runs one-time initialization before the first render of a
	// session. Calling it again has no further effect.
	PrepareOnce(ctx context.Context) error

	// GetPage returns the slice of items for the given page number.
	// Requesting a negative page or one past the end returns ErrOutOfRange.
	// An empty source yields an empty slice for page 0 rather than an error.
	GetPage(pageNumber int) ([]any, error)

	// PageCount returns the total number of pages. The second return is false
	// for sources that cannot determine their length up front.
	PageCount() (int, bool)

	// IsPaginating reports whether navigation controls are worth attaching.
	IsPaginating() bool

	// FormatPage converts a page slice into a renderable payload. It must not
	// mutate any session state; PageInfo carries the read-only bits it may need.
	FormatPage(ctx context.Context, info PageInfo, entries []any) (*RenderedPage, error)
}

// PageInfo is a read-only snapshot of the owning view's state, handed to
// FormatPage so sources can render footers like "Page 2/5" without holding
// a reference into the state machine.
type PageInfo struct {
	CurrentPage int
	PageCount   int
	CountKnown  bool
	Compact     bool
}

// ListSource is an in-memory PageSource base over a fixed item slice.
// Concrete sources embed it and provide FormatPage themselves.
type ListSource struct {
	entries []any
	perPage int

	// Prepare, when set, runs exactly once on the first PrepareOnce call.
	Prepare func(ctx context.Context) error

	prepareOnce sync.Once
	prepareErr  error
}

// NewListSource creates a ListSource over the given entries.
func NewListSource(entries []any, perPage int) (*ListSource, error) {
	if perPage < 1 {
		return nil, ErrInvalidPerPage
	}
	return &ListSource{
		entries: entries,
		perPage: perPage,
	}, nil
}

// PrepareOnce runs the optional Prepare hook on the first call only.
// The hook's result is cached and returned on every subsequent call.
func (s *ListSource) PrepareOnce(ctx context.Context) error {
	s.prepareOnce.Do(func() {
		if s.Prepare != nil {
			s.prepareErr = s.Prepare(ctx)
		}
	})
	return s.prepareErr
}

// GetPage slices out the items belonging to the given page number.
func (s *ListSource) GetPage(pageNumber int) ([]any, error) {
	if pageNumber < 0 {
		return nil, ErrOutOfRange
	}
	if len(s.entries) == 0 {
		return []any{}, nil
	}

	start := pageNumber * s.perPage
	if start >= len(s.entries) {
		return nil, ErrOutOfRange
	}

	end := min(start+s.perPage, len(s.entries))
	return s.entries[start:end], nil
}

// PageCount returns the pre-computed page total. A ListSource always knows
// its length, so the second return is always true.
func (s *ListSource) PageCount() (int, bool) {
	return (len(s.entries) + s.perPage - 1) / s.perPage, true
}

// IsPaginating reports whether the source spans more than one page.
func (s *ListSource) IsPaginating() bool {
	count, _ := s.PageCount()
	return count > 1
}

// PerPage returns the configured page size.
func (s *ListSource) PerPage() int {
	return s.perPage
}

// Len returns the total number of items in the source.
func (s *ListSource) Len() int {
	return len(s.entries)
}
