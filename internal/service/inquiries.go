package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"realty-api/internal/core/events"
	"realty-api/internal/domain"
	"realty-api/internal/mailer"
)

const agentInquiryLimit = 100

type NewInquiry struct {
	ListingID string
	Name      string
	Email     string
	Phone     string
	Message   string
}

type InquiryService struct {
	Listings    domain.ListingRepository
	Users       domain.UserRepository
	Inquiries   domain.InquiryRepository
	Mailer      mailer.Mailer
	Events      events.Publisher
	Log         *zap.Logger
	SendTimeout time.Duration
}

// Submit 先校验房源在售再落库，邮件同步发送一次，结果只写入 emailStatus
func (s *InquiryService) Submit(ctx context.Context, in NewInquiry) (*domain.Inquiry, error) {
	listing, err := s.Listings.FindByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.StatusActive {
		return nil, domain.ErrListingInactive
	}
	agent, err := s.Users.FindByID(ctx, listing.AgentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("listing %s: %w", listing.ID, domain.ErrAgentMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("load agent: %w", err)
	}

	inq := &domain.Inquiry{
		ListingID:   listing.ID,
		AgentID:     agent.ID,
		Name:        in.Name,
		Email:       normalizeEmail(in.Email),
		Phone:       in.Phone,
		Message:     in.Message,
		EmailStatus: domain.EmailQueued,
	}
	if err := s.Inquiries.Create(ctx, inq); err != nil {
		return nil, fmt.Errorf("save inquiry: %w", err)
	}

	// 客户端断开不应让已落库的询盘被标记为失败
	bg := context.WithoutCancel(ctx)
	inq.EmailStatus = s.notify(bg, mailer.Inquiry{Inquiry: *inq, Listing: *listing, Agent: *agent})
	if err := s.Inquiries.SetEmailStatus(bg, inq.ID, inq.EmailStatus); err != nil {
		s.Log.Error("update inquiry email status failed", zap.String("inquiry", inq.ID), zap.Error(err))
	}
	inquiryEmails.WithLabelValues(inq.EmailStatus).Inc()
	publish(ctx, s.Events, s.Log, events.InquiryCreated, map[string]string{
		"id": inq.ID, "listingId": inq.ListingID, "agentId": inq.AgentID, "emailStatus": inq.EmailStatus,
	})
	return inq, nil
}

func (s *InquiryService) notify(ctx context.Context, n mailer.Inquiry) string {
	timeout := s.SendTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Mailer.SendInquiry(ctx, n); err != nil {
		s.Log.Error("failed to send inquiry email",
			zap.String("inquiry", n.Inquiry.ID), zap.String("agent", n.Agent.Email), zap.Error(err))
		return domain.EmailFailed
	}
	return domain.EmailSent
}

func (s *InquiryService) ForAgent(ctx context.Context, agentID string) ([]domain.Inquiry, error) {
	return s.Inquiries.ListByAgent(ctx, agentID, agentInquiryLimit)
}
