package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"realty-api/internal/domain"
	"realty-api/pkg/utils"
)

type customerRow = domain.Customer

type CustomerRepo struct {
	base
	items map[string]customerRow
}

func cloneCustomer(c customerRow) domain.Customer {
	c.Listing = nil
	if c.PurchaseDate != nil {
		t := *c.PurchaseDate
		c.PurchaseDate = &t
	}
	if c.PurchasePrice != nil {
		p := *c.PurchasePrice
		c.PurchasePrice = &p
	}
	return c
}

func (r *CustomerRepo) Create(_ context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	c.ID = utils.NewID()
	c.CreatedAt, c.UpdatedAt = now, now
	r.items[c.ID] = cloneCustomer(*c)
	return nil
}

func (r *CustomerRepo) FindOwned(_ context.Context, id, agentID string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok || c.AgentID != agentID {
		return nil, domain.ErrNotFound
	}
	out := cloneCustomer(c)
	return &out, nil
}

// purchaseDate 降序且空值排最后，与 Mongo 降序时 null 最小的行为一致
func byPurchaseThenCreated(a, b domain.Customer) int {
	switch {
	case a.PurchaseDate != nil && b.PurchaseDate == nil:
		return -1
	case a.PurchaseDate == nil && b.PurchaseDate != nil:
		return 1
	case a.PurchaseDate != nil && b.PurchaseDate != nil:
		if c := b.PurchaseDate.Compare(*a.PurchaseDate); c != 0 {
			return c
		}
	}
	return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
}

func (r *CustomerRepo) ListByAgent(_ context.Context, agentID, q string) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Customer{}
	for _, c := range r.items {
		if c.AgentID != agentID {
			continue
		}
		if q != "" && !containsFold(q, c.FirstName, c.LastName, c.Email, c.Phone) {
			continue
		}
		out = append(out, cloneCustomer(c))
	}
	slices.SortFunc(out, byPurchaseThenCreated)
	if q != "" {
		return page(out, 0, domain.CustomerSearchLimit), nil
	}
	return out, nil
}

func (r *CustomerRepo) UpdateOwned(_ context.Context, id, agentID string, p domain.CustomerPatch) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.AgentID != agentID {
		return nil, domain.ErrNotFound
	}
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.PurchaseDate != nil {
		t := *p.PurchaseDate
		c.PurchaseDate = &t
	}
	if p.PurchasePrice != nil {
		v := *p.PurchasePrice
		c.PurchasePrice = &v
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.ListingID != nil {
		c.ListingID = *p.ListingID
	}
	c.UpdatedAt = time.Now().UTC()
	r.items[id] = c
	out := cloneCustomer(c)
	return &out, nil
}

func (r *CustomerRepo) DeleteOwned(_ context.Context, id, agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.AgentID != agentID {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
