package domain

import (
	"context"
	"time"
)

const (
	EmailQueued = "queued"
	EmailSent   = "sent"
	EmailFailed = "failed"
)

type Inquiry struct {
	ID          string    `json:"_id"`
	ListingID   string    `json:"listingId"`
	AgentID     string    `json:"agentId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message"`
	EmailStatus string    `json:"emailStatus"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type InquiryRepository interface {
	Create(ctx context.Context, in *Inquiry) error
	SetEmailStatus(ctx context.Context, id, status string) error
	ListByAgent(ctx context.Context, agentID string, limit int) ([]Inquiry, error)
}
