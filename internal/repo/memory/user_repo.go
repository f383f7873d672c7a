package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"realty-api/internal/domain"
	"realty-api/pkg/utils"
)

type userRow = domain.User

type UserRepo struct {
	base
	items map[string]userRow
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.items {
		if strings.EqualFold(x.Email, u.Email) {
			return domain.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	u.ID = utils.NewID()
	u.CreatedAt, u.UpdatedAt = now, now
	r.items[u.ID] = *u
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepo) FindByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.User{}
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepo) ListAgents(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.User{}
	for _, u := range r.items {
		if u.Role == domain.RoleAgent {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b domain.User) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *UserRepo) List(_ context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := []domain.User{}
	for _, u := range r.items {
		if f.Q == "" || containsFold(f.Q, u.Email, u.Name) {
			all = append(all, u)
		}
	}
	slices.SortFunc(all, func(a, b domain.User) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return page(all, f.Offset, f.Limit), int64(len(all)), nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, id string, p domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.PhotoURL != nil {
		u.PhotoURL = *p.PhotoURL
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u
	return &u, nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
