package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name         string
		number, size int
		want         Page
		offset       int
	}{
		{"defaults", 0, 0, Page{1, DefaultPageSize}, 0},
		{"third page", 3, 25, Page{3, 25}, 50},
		{"negative number", -2, 10, Page{1, 10}, 0},
		{"size capped", 2, 1000, Page{2, MaxPageSize}, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.number, tt.size)
			assert.Equal(t, tt.want, p)
			assert.Equal(t, tt.offset, p.Offset())
		})
	}
}
