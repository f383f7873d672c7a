package domain

import (
	"context"
	"time"
)

const (
	StatusActive  = "active"
	StatusPending = "pending"
	StatusSold    = "sold"
)

func ValidListingStatus(s string) bool {
	switch s {
	case StatusActive, StatusPending, StatusSold:
		return true
	}
	return false
}

type Listing struct {
	ID           string        `json:"_id"`
	Title        string        `json:"title"`
	Address      string        `json:"address"`
	Neighborhood string        `json:"neighborhood"`
	Price        float64       `json:"price"`
	Beds         int           `json:"beds"`
	Baths        float64       `json:"baths"`
	Sqft         float64       `json:"sqft"`
	Description  string        `json:"description"`
	ImageURLs    []string      `json:"imageUrls"`
	Status       string        `json:"status"`
	AgentID      string        `json:"agentId"`
	Agent        *AgentSummary `json:"agent,omitempty"`
	CustomerID   string        `json:"customerId,omitempty"`
	SoldDate     *time.Time    `json:"soldDate,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ListingPatch 部分更新；nil 表示不改
type ListingPatch struct {
	Title        *string
	Address      *string
	Neighborhood *string
	Price        *float64
	Beds         *int
	Baths        *float64
	Sqft         *float64
	Description  *string
	ImageURLs    []string
	Status       *string
	CustomerID   *string
	SoldDate     *time.Time
}

type ListingFilter struct {
	Q            string
	MinPrice     *float64
	MaxPrice     *float64
	MinBeds      *int
	Neighborhood string
	Status       string
	Page         int
	Limit        int
}

// MaxPage 更深的翻页没有意义，也避免 skip 溢出
const MaxPage = 10000

func (f ListingFilter) Skip() int64 {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	return int64(min(f.Page, MaxPage)-1) * int64(f.Limit)
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return p
}

type ListingRepository interface {
	Create(ctx context.Context, l *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	// Search 列表与总数是两次独立查询
	Search(ctx context.Context, f ListingFilter) ([]Listing, int64, error)
	ListByAgent(ctx context.Context, agentID string) ([]Listing, error)
	UpdateOwned(ctx context.Context, id, agentID string, p ListingPatch) (*Listing, error)
	DeleteOwned(ctx context.Context, id, agentID string) error
	Neighborhoods(ctx context.Context) ([]string, error)
	FindByIDs(ctx context.Context, ids []string) ([]Listing, error)
}
