package paging

import (
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageRequest_Validates(t *testing.T) {
	_, err := NewPageRequest(-1, 10)
	assert.ErrorIs(t, err, ErrInvalidPageRequest)

	_, err = NewPageRequest(0, 0)
	assert.ErrorIs(t, err, ErrInvalidPageRequest)

	_, err = NewPageRequest(0, 1, MustBy(Ascending("a")), MustBy(Ascending("b")))
	assert.ErrorIs(t, err, ErrInvalidPageRequest)
}

func TestPageRequest_Window(t *testing.T) {
	testCases := []struct {
		page, size    int
		offset, limit int
	}{
		{page: 0, size: 2, offset: 0, limit: 2},
		{page: 2, size: 5, offset: 10, limit: 5},
		{page: 3, size: 1, offset: 3, limit: 1},
	}

	for _, tc := range testCases {
		p := MustPageRequest(tc.page, tc.size)
		assert.Equal(t, tc.offset, p.Offset(), "offset for page %d size %d", tc.page, tc.size)
		assert.Equal(t, tc.limit, p.Limit(), "limit for page %d size %d", tc.page, tc.size)
	}
}

func TestPageRequest_Equal(t *testing.T) {
	sort := MustBy(Descending("firstname"))

	assert.True(t, MustPageRequest(1, 5, sort).Equal(MustPageRequest(1, 5, sort)))
	assert.False(t, MustPageRequest(1, 5, sort).Equal(MustPageRequest(1, 5)))
	assert.False(t, MustPageRequest(1, 5).Equal(MustPageRequest(2, 5)))
	assert.False(t, MustPageRequest(1, 5).Equal(MustPageRequest(1, 6)))
	assert.False(t, MustPageRequest(1, 5).Equal(nil))

	var none *PageRequest
	assert.True(t, none.Equal(nil))
}

func TestPageRequest_NextPrevious(t *testing.T) {
	p := MustPageRequest(0, 3)

	assert.Equal(t, 1, p.Next().Page())
	assert.Same(t, p, p.Previous())
	assert.Equal(t, 0, p.Next().Previous().Page())
}

func TestPage_Derivation(t *testing.T) {
	// total=7, size=3, index=2: last page holds a single element
	page := NewPage([]string{"g"}, MustPageRequest(2, 3), 7)

	assert.Equal(t, 3, page.TotalPages())
	assert.False(t, page.HasNext())
	assert.True(t, page.HasPrevious())
	assert.Equal(t, 1, page.NumberOfElements())
	assert.Equal(t, 2, page.Number())
	assert.Equal(t, 3, page.Size())
	assert.Equal(t, int64(7), page.TotalElements())
}

func TestPage_FirstPage(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, MustPageRequest(0, 3), 7)

	assert.True(t, page.HasNext())
	assert.False(t, page.HasPrevious())
	assert.Equal(t, 3, page.NumberOfElements())
}

func TestPage_Unpaged(t *testing.T) {
	page := Unpaged([]int{1, 2, 3})

	assert.Nil(t, page.Pageable())
	assert.Equal(t, 1, page.TotalPages())
	assert.Equal(t, 3, page.Size())
	assert.False(t, page.HasNext())
	assert.False(t, page.HasPrevious())
	assert.True(t, page.Sort().IsZero())

	empty := Unpaged[int](nil)
	assert.Equal(t, 0, empty.TotalPages())
	assert.NotNil(t, empty.Content())
}

func TestMapPage_KeepsMetadata(t *testing.T) {
	page := NewPage([]int{4, 5}, MustPageRequest(2, 2), 6)

	mapped, err := MapPage(page, func(v int) (string, error) {
		return strconv.Itoa(v), nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"4", "5"}, slices.Collect(mapped.All()))
	assert.True(t, mapped.Pageable().Equal(page.Pageable()))
	assert.Equal(t, int64(6), mapped.TotalElements())
}
