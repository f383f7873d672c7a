package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingFilterSkip(t *testing.T) {
	assert.EqualValues(t, 0, ListingFilter{Page: 1, Limit: 12}.Skip())
	assert.EqualValues(t, 24, ListingFilter{Page: 3, Limit: 12}.Skip())
	assert.EqualValues(t, 0, ListingFilter{Page: 0, Limit: 12}.Skip())

	// 超大页码按 MaxPage 截断，不会溢出成负数
	huge := ListingFilter{Page: 100000000000000000, Limit: 100}.Skip()
	assert.EqualValues(t, int64(MaxPage-1)*100, huge)
}
