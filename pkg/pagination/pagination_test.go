package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	res := Paginate(items, &PaginationParams{Page: 2, PerPage: 2})
	assert.Equal(t, []int{3, 4}, res.Items)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNext)
	assert.True(t, res.Pagination.HasPrev)

	res = Paginate(items, &PaginationParams{Page: 9, PerPage: 2})
	assert.Empty(t, res.Items)
	assert.False(t, res.Pagination.HasNext)

	res = Paginate(items, nil)
	assert.Len(t, res.Items, 5)
	assert.Equal(t, 1, res.Pagination.TotalPages)
}

func TestValidateClampsParams(t *testing.T) {
	p := &PaginationParams{Page: -1, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.Offset())
}
