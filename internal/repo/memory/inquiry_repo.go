package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"realty-api/internal/domain"
	"realty-api/pkg/utils"
)

type inquiryRow = domain.Inquiry

type InquiryRepo struct {
	base
	items map[string]inquiryRow
}

func (r *InquiryRepo) Create(_ context.Context, in *domain.Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	in.ID = utils.NewID()
	in.CreatedAt, in.UpdatedAt = now, now
	r.items[in.ID] = *in
	return nil
}

func (r *InquiryRepo) SetEmailStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	in.EmailStatus = status
	in.UpdatedAt = time.Now().UTC()
	r.items[id] = in
	return nil
}

func (r *InquiryRepo) ListByAgent(_ context.Context, agentID string, limit int) ([]domain.Inquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Inquiry{}
	for _, in := range r.items {
		if in.AgentID == agentID {
			out = append(out, in)
		}
	}
	slices.SortFunc(out, func(a, b domain.Inquiry) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return page(out, 0, limit), nil
}

// Get 仅供测试查看落库状态
func (r *InquiryRepo) Get(id string) (domain.Inquiry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.items[id]
	return in, ok
}

func (r *InquiryRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
