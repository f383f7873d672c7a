package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"realty-api/internal/core/config"
)

// 外发限速：多数 SMTP 服务商按秒限流
const (
	sendEvery = 200 * time.Millisecond
	sendBurst = 5
)

type SMTP struct {
	from     string
	renderer Renderer
	log      *zap.Logger
	throttle *rate.Limiter
	send     func(m *gomail.Message) error
}

// NewSMTP 465 端口走隐式 TLS，其余端口由 gomail 自动 STARTTLS
func NewSMTP(c config.Mail, r Renderer, l *zap.Logger) *SMTP {
	d := gomail.NewDialer(c.Host, c.Port, c.Username, c.Password)
	if c.Port == 465 {
		d.SSL = true
	}
	d.TLSConfig = &tls.Config{ServerName: c.Host, MinVersion: tls.VersionTLS12}
	return &SMTP{
		from:     c.From,
		renderer: r,
		log:      l,
		throttle: rate.NewLimiter(rate.Every(sendEvery), sendBurst),
		send:     func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

func (s *SMTP) SendInquiry(ctx context.Context, n Inquiry) error {
	msg, err := s.renderer.Inquiry(n)
	if err != nil {
		return err
	}
	if err := s.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("send inquiry email: throttled: %w", err)
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Reply-To", msg.ReplyTo)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	done := make(chan error, 1)
	go func() { done <- s.send(m) }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("send inquiry email: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send inquiry email: %w", err)
		}
	}
	s.log.Info("inquiry email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// Disabled mail.disabled=true 时使用，只记录日志
type Disabled struct{ Log *zap.Logger }

func (d Disabled) SendInquiry(_ context.Context, n Inquiry) error {
	d.Log.Info("email skipped (mail.disabled)", zap.String("to", n.Agent.Email), zap.String("inquiry", n.Inquiry.ID))
	return nil
}

func New(c config.Mail, r Renderer, l *zap.Logger) Mailer {
	if c.Disabled {
		l.Warn("email disabled via mail.disabled=true")
		return Disabled{Log: l}
	}
	return NewSMTP(c, r, l)
}
