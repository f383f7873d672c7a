// Package memory 是 db.driver=memory 时使用的进程内存储，语义与 Mongo 实现保持一致。
package memory

import (
	"slices"
	"strings"
	"sync"
)

type DB struct {
	Users     *UserRepo
	Listings  *ListingRepo
	Inquiries *InquiryRepo
	Customers *CustomerRepo
}

func New() *DB {
	return &DB{
		Users:     &UserRepo{items: map[string]userRow{}},
		Listings:  &ListingRepo{items: map[string]listingRow{}},
		Inquiries: &InquiryRepo{items: map[string]inquiryRow{}},
		Customers: &CustomerRepo{items: map[string]customerRow{}},
	}
}

type base struct{ mu sync.RWMutex }

// containsFold 等价于 Mongo 端转义后的 $regex + $options:"i"
func containsFold(q string, fields ...string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return slices.Clone(items[offset:end])
}
