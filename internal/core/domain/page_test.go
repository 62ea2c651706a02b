package domain

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"

	"userapp/internal/core/apperror"
)

func usersOf(n int) []User {
	users := make([]User, n)
	for i := range users {
		users[i] = User{UserName: "user"}
	}

	return users
}

func TestComputePage(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should compute the middle page", func(t *testing.T) {
		page, err := ComputePage(5, 2, 12, usersOf(5))

		Expect(err).To(BeNil())
		Expect(page.TotalPages).To(Equal(3))
		Expect(page.Count).To(Equal(5))
		Expect(page.HasPreviousPage).To(BeTrue())
		Expect(page.HasNextPage).To(BeTrue())
	})

	t.Run("should compute the last partial page", func(t *testing.T) {
		page, err := ComputePage(5, 3, 12, usersOf(2))

		Expect(err).To(BeNil())
		Expect(page.Count).To(Equal(2))
		Expect(page.HasPreviousPage).To(BeTrue())
		Expect(page.HasNextPage).To(BeFalse())
	})

	t.Run("should report no neighbours for a single page", func(t *testing.T) {
		page, err := ComputePage(5, 1, 3, usersOf(3))

		Expect(err).To(BeNil())
		Expect(page.TotalPages).To(Equal(1))
		Expect(page.HasPreviousPage).To(BeFalse())
		Expect(page.HasNextPage).To(BeFalse())
	})

	t.Run("should return an empty page past the end", func(t *testing.T) {
		page, err := ComputePage(5, 4, 12, nil)

		Expect(err).To(BeNil())
		Expect(page.TotalPages).To(Equal(3))
		Expect(page.Count).To(Equal(0))
		Expect(page.Results).To(BeEmpty())
		Expect(page.Results).NotTo(BeNil())
		Expect(page.HasPreviousPage).To(BeFalse())
		Expect(page.HasNextPage).To(BeFalse())
	})

	t.Run("should handle an empty store", func(t *testing.T) {
		page, err := ComputePage(5, 1, 0, nil)

		Expect(err).To(BeNil())
		Expect(page.TotalPages).To(Equal(0))
		Expect(page.Count).To(Equal(0))
		Expect(page.HasPreviousPage).To(BeFalse())
		Expect(page.HasNextPage).To(BeFalse())
	})

	t.Run("should clamp a non-positive page number", func(t *testing.T) {
		page, err := ComputePage(5, 0, 7, usersOf(5))

		Expect(err).To(BeNil())
		Expect(page.PageNumber).To(Equal(1))
		Expect(page.HasNextPage).To(BeTrue())
	})

	t.Run("should reject a non-positive limit", func(t *testing.T) {
		_, err := ComputePage(0, 1, 7, nil)

		assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	})
}

func TestComputePage_Properties(t *testing.T) {
	for limit := 1; limit <= 7; limit++ {
		for total := 0; total <= 30; total++ {
			totalPages := TotalPages(limit, total)

			assert.GreaterOrEqual(t, totalPages*limit, total)
			assert.Less(t, (totalPages-1)*limit, total+boolToInt(total == 0))

			for pageNumber := 1; pageNumber <= totalPages+1; pageNumber++ {
				items := 0
				if pageNumber <= totalPages {
					items = min(limit, total-(pageNumber-1)*limit)
				}

				page, err := ComputePage(limit, pageNumber, total, usersOf(items))

				assert.NoError(t, err)
				assert.Equal(t, pageNumber > 1 && pageNumber <= totalPages, page.HasPreviousPage)
				assert.Equal(t, pageNumber < totalPages, page.HasNextPage)
				assert.LessOrEqual(t, page.Count, limit)
				assert.Equal(t, pageNumber <= totalPages, PageBounds(limit, pageNumber, total))
			}
		}
	}
}

func TestComputePage_HugeLimit(t *testing.T) {
	for _, limit := range []int{math.MaxInt, math.MaxInt - 1, math.MaxInt / 2} {
		assert.Equal(t, 1, TotalPages(limit, 12))
		assert.Equal(t, 1, TotalPages(limit, math.MaxInt/2+1))
		assert.True(t, PageBounds(limit, 1, 12))

		page, err := ComputePage(limit, 1, 12, usersOf(12))

		assert.NoError(t, err)
		assert.Equal(t, 1, page.TotalPages)
		assert.Equal(t, 12, page.Count)
		assert.False(t, page.HasNextPage)
		assert.False(t, page.HasPreviousPage)
	}

	assert.Equal(t, math.MaxInt, TotalPages(1, math.MaxInt))
	assert.Equal(t, 2, TotalPages(math.MaxInt-1, math.MaxInt))
}

func TestPageQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, PageQuery{Limit: 5, PageNumber: 1}.Offset())
	assert.Equal(t, 10, PageQuery{Limit: 5, PageNumber: 3}.Offset())
	assert.Equal(t, 0, PageQuery{Limit: 5, PageNumber: 0}.Offset())
}

func TestParseSortMethod(t *testing.T) {
	method, ok := ParseSortMethod("desc")
	assert.True(t, ok)
	assert.Equal(t, SortDesc, method)

	_, ok = ParseSortMethod("sideways")
	assert.False(t, ok)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
