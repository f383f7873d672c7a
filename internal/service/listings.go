package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"realty-api/internal/core/cache"
	"realty-api/internal/core/events"
	"realty-api/internal/domain"
)

type ListingService struct {
	Listings  domain.ListingRepository
	Users     domain.UserRepository
	Customers domain.CustomerRepository
	Cache     *cache.Cache
	Events    events.Publisher
	Log       *zap.Logger
	Now       func() time.Time
}

func (s *ListingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

type listingEvent struct {
	ID           string `json:"id"`
	AgentID      string `json:"agentId"`
	Status       string `json:"status,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	CustomerID   string `json:"customerId,omitempty"`
}

func eventOf(l *domain.Listing) listingEvent {
	return listingEvent{ID: l.ID, AgentID: l.AgentID, Status: l.Status, Neighborhood: l.Neighborhood, CustomerID: l.CustomerID}
}

// attachAgents 批量回填经纪人摘要，一次查询
func (s *ListingService) attachAgents(ctx context.Context, items []domain.Listing, withBio bool) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, l := range items {
		if !seen[l.AgentID] {
			seen[l.AgentID] = true
			ids = append(ids, l.AgentID)
		}
	}
	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load agents: %w", err)
	}
	byID := make(map[string]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range items {
		if u, ok := byID[items[i].AgentID]; ok {
			items[i].Agent = u.Summary(withBio)
		}
	}
	return nil
}

func (s *ListingService) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, domain.Pagination, error) {
	items, total, err := s.Listings.Search(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("search listings: %w", err)
	}
	if err := s.attachAgents(ctx, items, false); err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(f.Page, f.Limit, total), nil
}

func (s *ListingService) Neighborhoods(ctx context.Context) ([]string, error) {
	return cache.GetOrLoadJSON(s.Cache, ctx, KeyNeighborhoods, directoryTTL, s.Listings.Neighborhoods)
}

func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := s.Listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	one := []domain.Listing{*l}
	if err := s.attachAgents(ctx, one, true); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (s *ListingService) Mine(ctx context.Context, agentID string) ([]domain.Listing, error) {
	return s.Listings.ListByAgent(ctx, agentID)
}

func (s *ListingService) Create(ctx context.Context, agentID string, l *domain.Listing) error {
	l.AgentID = agentID
	if l.Status == "" {
		l.Status = domain.StatusActive
	}
	if l.Status == domain.StatusSold && l.SoldDate == nil {
		t := s.now()
		l.SoldDate = &t
	}
	if err := s.Listings.Create(ctx, l); err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	invalidate(ctx, s.Cache, s.Log, KeyNeighborhoods)
	publish(ctx, s.Events, s.Log, events.ListingCreated, eventOf(l))
	return nil
}

// Update 只改传入的字段；非本人房源返回 ErrNotFound
func (s *ListingService) Update(ctx context.Context, id, agentID string, p domain.ListingPatch) (*domain.Listing, error) {
	if p.Status != nil && *p.Status == domain.StatusSold && p.SoldDate == nil {
		t := s.now()
		p.SoldDate = &t
	}
	l, err := s.Listings.UpdateOwned(ctx, id, agentID, p)
	if err != nil {
		return nil, err
	}
	if p.Neighborhood != nil {
		invalidate(ctx, s.Cache, s.Log, KeyNeighborhoods)
	}
	publish(ctx, s.Events, s.Log, events.ListingUpdated, eventOf(l))
	return l, nil
}

// SetStatus 任意状态之间可直接切换；切到 sold 时记录成交时间
func (s *ListingService) SetStatus(ctx context.Context, id, agentID, status, customerID string) (*domain.Listing, error) {
	if !domain.ValidListingStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, domain.ErrInvalidStatus)
	}
	p := domain.ListingPatch{Status: &status}
	if status == domain.StatusSold {
		t := s.now()
		p.SoldDate = &t
	}
	if customerID != "" {
		// 只能关联自己名下的客户
		if _, err := s.Customers.FindOwned(ctx, customerID, agentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("customer %s: %w", customerID, domain.ErrCustomerNotOwned)
			}
			return nil, err
		}
		p.CustomerID = &customerID
	}
	l, err := s.Listings.UpdateOwned(ctx, id, agentID, p)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, s.Log, events.ListingStatusChanged, eventOf(l))
	return l, nil
}

func (s *ListingService) Delete(ctx context.Context, id, agentID string) error {
	if err := s.Listings.DeleteOwned(ctx, id, agentID); err != nil {
		return err
	}
	invalidate(ctx, s.Cache, s.Log, KeyNeighborhoods)
	publish(ctx, s.Events, s.Log, events.ListingDeleted, listingEvent{ID: id, AgentID: agentID})
	return nil
}
