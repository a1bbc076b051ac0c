package paging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate(t *testing.T) {
	items := seq(25)

	assert.Equal(t, seq(10), Paginate(items, 1, 10))
	assert.Equal(t, []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, Paginate(items, 2, 10))
	assert.Equal(t, []int{20, 21, 22, 23, 24}, Paginate(items, 3, 10))
	assert.Empty(t, Paginate(items, 4, 10))
	assert.Equal(t, seq(10), Paginate(items, 0, 10), "page below 1 is page 1")
	assert.Equal(t, seq(10), Paginate(items, -3, 10))
	assert.Empty(t, Paginate(items, 1, 0))
	assert.Empty(t, Paginate([]int(nil), 1, 10))
}

func TestPaginate_HugeArguments(t *testing.T) {
	items := seq(25)
	tests := []struct {
		name       string
		page, size int
		want       []int
	}{
		{"max page", math.MaxInt, 10, nil},
		{"page times size wraps", math.MaxInt/10 + 2, 10, nil},
		{"max size", 1, math.MaxInt, items},
		{"max size second page", 2, math.MaxInt, nil},
		{"both max", math.MaxInt, math.MaxInt, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			assert.NotPanics(t, func() { got = Paginate(items, tt.page, tt.size) })
			if tt.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{25, 10, 3},
		{20, 10, 2},
		{21, 10, 3},
		{1, 10, 1},
		{0, 10, 1},
		{5, 0, 1},
		{25, math.MaxInt, 1},
		{math.MaxInt, 1, math.MaxInt},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.n, tt.size), "TotalPages(%d, %d)", tt.n, tt.size)
	}
}

func TestPage(t *testing.T) {
	p := New(seq(25), 3, 10)
	assert.Equal(t, []int{20, 21, 22, 23, 24}, p.Items)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 25, p.Total)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
	assert.Equal(t, 21, p.First())
	assert.Equal(t, 25, p.Last())

	p = New(seq(25), 1, 10)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, 1, p.First())
	assert.Equal(t, 10, p.Last())
}

func TestPage_Empty(t *testing.T) {
	p := New([]string{}, 1, 10)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.Pages)
	assert.False(t, p.HasPrev())
	assert.False(t, p.HasNext())
	assert.Equal(t, 0, p.First())
	assert.Equal(t, 0, p.Last())
}

func TestPage_HugeNumber(t *testing.T) {
	var p Page[int]
	assert.NotPanics(t, func() { p = New(seq(25), math.MaxInt, 10) })
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.First())
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
}
