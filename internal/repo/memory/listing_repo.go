package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"realty-api/internal/domain"
	"realty-api/pkg/utils"
)

type listingRow = domain.Listing

type ListingRepo struct {
	base
	items map[string]listingRow
}

func cloneListing(l listingRow) domain.Listing {
	l.ImageURLs = slices.Clone(l.ImageURLs)
	l.Agent = nil
	if l.SoldDate != nil {
		t := *l.SoldDate
		l.SoldDate = &t
	}
	return l
}

func newestFirst(a, b domain.Listing) int {
	return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
}

func (r *ListingRepo) Create(_ context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	l.ID = utils.NewID()
	l.CreatedAt, l.UpdatedAt = now, now
	r.items[l.ID] = cloneListing(*l)
	return nil
}

func (r *ListingRepo) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneListing(l)
	return &out, nil
}

func (r *ListingRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Listing{}
	for _, id := range ids {
		if l, ok := r.items[id]; ok {
			out = append(out, cloneListing(l))
		}
	}
	return out, nil
}

func matches(l domain.Listing, f domain.ListingFilter) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Q != "" && !containsFold(f.Q, l.Title, l.Address, l.Description) {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.MinBeds != nil && l.Beds < *f.MinBeds {
		return false
	}
	if f.Neighborhood != "" && l.Neighborhood != f.Neighborhood {
		return false
	}
	return true
}

func (r *ListingRepo) Search(_ context.Context, f domain.ListingFilter) ([]domain.Listing, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := []domain.Listing{}
	for _, l := range r.items {
		if matches(l, f) {
			all = append(all, cloneListing(l))
		}
	}
	slices.SortFunc(all, newestFirst)
	return page(all, int(f.Skip()), f.Limit), int64(len(all)), nil
}

func (r *ListingRepo) ListByAgent(_ context.Context, agentID string) ([]domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Listing{}
	for _, l := range r.items {
		if l.AgentID == agentID {
			out = append(out, cloneListing(l))
		}
	}
	slices.SortFunc(out, newestFirst)
	return out, nil
}

func (r *ListingRepo) UpdateOwned(_ context.Context, id, agentID string, p domain.ListingPatch) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok || l.AgentID != agentID {
		return nil, domain.ErrNotFound
	}
	applyListingPatch(&l, p)
	l.UpdatedAt = time.Now().UTC()
	r.items[id] = cloneListing(l)
	out := cloneListing(l)
	return &out, nil
}

func applyListingPatch(l *domain.Listing, p domain.ListingPatch) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Address != nil {
		l.Address = *p.Address
	}
	if p.Neighborhood != nil {
		l.Neighborhood = *p.Neighborhood
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Beds != nil {
		l.Beds = *p.Beds
	}
	if p.Baths != nil {
		l.Baths = *p.Baths
	}
	if p.Sqft != nil {
		l.Sqft = *p.Sqft
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.ImageURLs != nil {
		l.ImageURLs = slices.Clone(p.ImageURLs)
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.CustomerID != nil {
		l.CustomerID = *p.CustomerID
	}
	if p.SoldDate != nil {
		t := *p.SoldDate
		l.SoldDate = &t
	}
}

func (r *ListingRepo) DeleteOwned(_ context.Context, id, agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok || l.AgentID != agentID {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ListingRepo) Neighborhoods(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, l := range r.items {
		if _, ok := seen[l.Neighborhood]; !ok {
			seen[l.Neighborhood] = struct{}{}
			out = append(out, l.Neighborhood)
		}
	}
	slices.Sort(out)
	return out, nil
}
