package service

import (
	"context"

	"realty-api/internal/core/cache"
	"realty-api/internal/domain"
)

type AgentService struct {
	Users domain.UserRepository
	Cache *cache.Cache
}

// Directory 公开经纪人名录，按姓名排序
func (s *AgentService) Directory(ctx context.Context) ([]domain.AgentSummary, error) {
	return cache.GetOrLoadJSON(s.Cache, ctx, KeyAgents, directoryTTL, func(ctx context.Context) ([]domain.AgentSummary, error) {
		users, err := s.Users.ListAgents(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.AgentSummary, 0, len(users))
		for i := range users {
			out = append(out, *users[i].Summary(true))
		}
		return out, nil
	})
}
