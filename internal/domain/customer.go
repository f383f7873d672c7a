package domain

import (
	"context"
	"time"
)

type ListingSummary struct {
	ID      string  `json:"_id"`
	Title   string  `json:"title"`
	Address string  `json:"address"`
	Price   float64 `json:"price"`
}

type Customer struct {
	ID            string          `json:"_id"`
	AgentID       string          `json:"agentId"`
	ListingID     string          `json:"listingId,omitempty"`
	Listing       *ListingSummary `json:"listing,omitempty"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address,omitempty"`
	PurchaseDate  *time.Time      `json:"purchaseDate,omitempty"`
	PurchasePrice *float64        `json:"purchasePrice,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type CustomerPatch struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Phone         *string
	Address       *string
	PurchaseDate  *time.Time
	PurchasePrice *float64
	Notes         *string
	ListingID     *string
}

// CustomerSearchLimit 搜索结果上限
const CustomerSearchLimit = 50

type CustomerRepository interface {
	Create(ctx context.Context, c *Customer) error
	FindOwned(ctx context.Context, id, agentID string) (*Customer, error)
	// ListByAgent q 为空时返回全部，否则按姓名/邮箱/电话模糊匹配
	ListByAgent(ctx context.Context, agentID, q string) ([]Customer, error)
	UpdateOwned(ctx context.Context, id, agentID string, p CustomerPatch) (*Customer, error)
	DeleteOwned(ctx context.Context, id, agentID string) error
}
