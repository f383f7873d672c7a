package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	ListingCreated       = "listing.created"
	ListingUpdated       = "listing.updated"
	ListingStatusChanged = "listing.status_changed"
	ListingDeleted       = "listing.deleted"
	InquiryCreated       = "inquiry.created"
	CustomerCreated      = "customer.created"
	CustomerLinked       = "customer.linked"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATS(url, prefix string, l *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("realty-api"),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (p *NATSPublisher) Subject(s string) string {
	if p.prefix == "" {
		return s
	}
	return p.prefix + "." + s
}

func (p *NATSPublisher) Publish(_ context.Context, subject string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.Subject(subject), b)
}

func (p *NATSPublisher) Close() { _ = p.conn.Drain() }

// Nop 未配置 NATS 时使用
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close()                                     {}
