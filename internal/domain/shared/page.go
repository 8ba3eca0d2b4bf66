package shared

// Page bounds for list queries
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page window over an ordered result set
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number to at least 1 and size to [1, MaxPageSize], using
// DefaultPageSize when size is not positive.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows before the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
