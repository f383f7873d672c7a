package domain

import (
	"context"
	"time"
)

const (
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AgentSummary 是挂在房源上的经纪人公开信息
type AgentSummary struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

func (u *User) Summary(withBio bool) *AgentSummary {
	s := &AgentSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, PhotoURL: u.PhotoURL}
	if withBio {
		s.Bio = u.Bio
	}
	return s
}

// ProfileUpdate nil 字段保持不变
type ProfileUpdate struct {
	Name     *string
	Phone    *string
	PhotoURL *string
	Bio      *string
}

type UserFilter struct {
	Q      string
	Offset int
	Limit  int
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	ListAgents(ctx context.Context) ([]User, error)
	List(ctx context.Context, f UserFilter) ([]User, int64, error)
	UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (*User, error)
	Delete(ctx context.Context, id string) error
}
