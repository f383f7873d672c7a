package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"realty-api/internal/core/events"
	"realty-api/internal/domain"
)

type CustomerService struct {
	Customers domain.CustomerRepository
	Listings  domain.ListingRepository
	Events    events.Publisher
	Log       *zap.Logger
}

func (s *CustomerService) attachListings(ctx context.Context, items []domain.Customer) error {
	ids := []string{}
	for _, c := range items {
		if c.ListingID != "" {
			ids = append(ids, c.ListingID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	listings, err := s.Listings.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load listings: %w", err)
	}
	byID := make(map[string]domain.ListingSummary, len(listings))
	for _, l := range listings {
		byID[l.ID] = domain.ListingSummary{ID: l.ID, Title: l.Title, Address: l.Address, Price: l.Price}
	}
	for i := range items {
		if sum, ok := byID[items[i].ListingID]; ok {
			items[i].Listing = &sum
		}
	}
	return nil
}

// List q 非空时做模糊搜索，最多返回 domain.CustomerSearchLimit 条
func (s *CustomerService) List(ctx context.Context, agentID, q string) ([]domain.Customer, error) {
	items, err := s.Customers.ListByAgent(ctx, agentID, q)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if err := s.attachListings(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CustomerService) Create(ctx context.Context, agentID string, c *domain.Customer) error {
	c.AgentID = agentID
	c.Email = normalizeEmail(c.Email)
	if err := s.Customers.Create(ctx, c); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	publish(ctx, s.Events, s.Log, events.CustomerCreated, map[string]string{"id": c.ID, "agentId": agentID})
	if c.ListingID != "" {
		s.markSold(ctx, agentID, c.ID, c.ListingID)
	}
	return nil
}

func (s *CustomerService) Update(ctx context.Context, id, agentID string, p domain.CustomerPatch) (*domain.Customer, error) {
	if p.Email != nil {
		e := normalizeEmail(*p.Email)
		p.Email = &e
	}
	var before *domain.Customer
	if p.ListingID != nil {
		b, err := s.Customers.FindOwned(ctx, id, agentID)
		if err != nil {
			return nil, err
		}
		before = b
	}
	c, err := s.Customers.UpdateOwned(ctx, id, agentID, p)
	if err != nil {
		return nil, err
	}
	if before != nil && before.ListingID != c.ListingID {
		s.markSold(ctx, agentID, c.ID, c.ListingID)
	}
	return c, nil
}

// Link 把客户挂到房源上并把房源标记为已售
func (s *CustomerService) Link(ctx context.Context, id, agentID, listingID string) (*domain.Customer, error) {
	c, err := s.Customers.UpdateOwned(ctx, id, agentID, domain.CustomerPatch{ListingID: &listingID})
	if err != nil {
		return nil, err
	}
	s.markSold(ctx, agentID, c.ID, listingID)
	one := []domain.Customer{*c}
	if err := s.attachListings(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (s *CustomerService) Delete(ctx context.Context, id, agentID string) error {
	return s.Customers.DeleteOwned(ctx, id, agentID)
}

// markSold 尽力而为：失败只记日志，不回滚客户记录
func (s *CustomerService) markSold(ctx context.Context, agentID, customerID, listingID string) {
	status, now := domain.StatusSold, time.Now().UTC()
	_, err := s.Listings.UpdateOwned(ctx, listingID, agentID, domain.ListingPatch{
		Status:     &status,
		SoldDate:   &now,
		CustomerID: &customerID,
	})
	if err != nil {
		s.Log.Warn("link customer to listing failed",
			zap.String("customer", customerID), zap.String("listing", listingID), zap.Error(err))
		return
	}
	publish(ctx, s.Events, s.Log, events.CustomerLinked, map[string]string{
		"customerId": customerID, "listingId": listingID, "agentId": agentID,
	})
}
