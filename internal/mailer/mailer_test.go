package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"realty-api/internal/core/config"
	"realty-api/internal/domain"
)

func sample() Inquiry {
	return Inquiry{
		Inquiry: domain.Inquiry{ID: "inq1", Name: "<b>Pat</b>", Email: "pat@example.com", Phone: "718 555 0100",
			Message: "Is it still <script>alert(1)</script> available?"},
		Listing: domain.Listing{ID: "65f000000000000000000001", Title: "Colonial near the ferry", Address: "1 Bay St",
			Neighborhood: "St. George", Price: 1250000, Beds: 4, Baths: 2.5},
		Agent: domain.User{Name: "Amy", Email: "amy@realty.test"},
	}
}

func TestRenderInquiry(t *testing.T) {
	msg, err := Renderer{ClientOrigin: "https://realty.example.com/"}.Inquiry(sample())
	require.NoError(t, err)

	assert.Equal(t, "amy@realty.test", msg.To)
	assert.Equal(t, "pat@example.com", msg.ReplyTo)
	assert.Equal(t, "New Inquiry: Colonial near the ferry", msg.Subject)
	assert.Contains(t, msg.HTML, "https://realty.example.com/listings/65f000000000000000000001")
	assert.Contains(t, msg.HTML, "https://realty.example.com/dashboard")
	assert.Contains(t, msg.HTML, "$1,250,000")
	assert.Contains(t, msg.HTML, "tel:718")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.NotContains(t, msg.HTML, "<b>Pat</b>")
	assert.Contains(t, msg.HTML, "&lt;b&gt;Pat&lt;/b&gt;")
}

func TestRenderOmitsEmptyPhone(t *testing.T) {
	n := sample()
	n.Inquiry.Phone = ""
	msg, err := Renderer{ClientOrigin: "http://localhost:5173"}.Inquiry(n)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "tel:")
}

func TestSMTPSendInquiry(t *testing.T) {
	s := NewSMTP(config.Mail{Host: "smtp.example.com", Port: 465, From: "noreply@realty.test"},
		Renderer{ClientOrigin: "http://localhost:5173"}, zap.NewNop())

	var sent *gomail.Message
	s.send = func(m *gomail.Message) error { sent = m; return nil }

	require.NoError(t, s.SendInquiry(context.Background(), sample()))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"amy@realty.test"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"pat@example.com"}, sent.GetHeader("Reply-To"))
	assert.Equal(t, []string{"noreply@realty.test"}, sent.GetHeader("From"))

	var raw bytes.Buffer
	_, err := sent.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "text/html")
}

func TestSMTPSendFailureAndTimeout(t *testing.T) {
	s := NewSMTP(config.Mail{Host: "smtp.example.com", Port: 587}, Renderer{}, zap.NewNop())
	boom := errors.New("535 auth failed")
	s.send = func(*gomail.Message) error { return boom }
	assert.ErrorIs(t, s.SendInquiry(context.Background(), sample()), boom)

	s.send = func(*gomail.Message) error { time.Sleep(200 * time.Millisecond); return nil }
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.SendInquiry(ctx, sample()), context.DeadlineExceeded)
}

func TestSMTPThrottleHonoursDeadline(t *testing.T) {
	s := NewSMTP(config.Mail{Host: "smtp.example.com", Port: 587}, Renderer{}, zap.NewNop())
	s.throttle = rate.NewLimiter(rate.Every(time.Hour), 1)
	sent := 0
	s.send = func(*gomail.Message) error { sent++; return nil }

	require.NoError(t, s.SendInquiry(context.Background(), sample()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, s.SendInquiry(ctx, sample()))
	assert.Equal(t, 1, sent)
}

func TestNewPicksDisabled(t *testing.T) {
	m := New(config.Mail{Disabled: true}, Renderer{}, zap.NewNop())
	_, ok := m.(Disabled)
	require.True(t, ok)
	assert.NoError(t, m.SendInquiry(context.Background(), sample()))
}
