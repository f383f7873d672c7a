// Package mailer 发送询盘通知邮件
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"realty-api/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	amounts = message.NewPrinter(language.AmericanEnglish)
	tmpl    = template.Must(template.New("").Funcs(template.FuncMap{
		"price": func(v float64) string { return amounts.Sprintf("%.0f", v) },
	}).ParseFS(templateFS, "templates/*.html"))
)

// Inquiry 是一封通知邮件需要的全部上下文
type Inquiry struct {
	Inquiry domain.Inquiry
	Listing domain.Listing
	Agent   domain.User
}

type Mailer interface {
	SendInquiry(ctx context.Context, n Inquiry) error
}

// Message 渲染后的邮件
type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

type Renderer struct {
	ClientOrigin string
	Brand        string
}

func (r Renderer) Inquiry(n Inquiry) (Message, error) {
	origin := strings.TrimRight(r.ClientOrigin, "/")
	brand := r.Brand
	if brand == "" {
		brand = "Top Choice Realty"
	}
	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "inquiry.html", map[string]any{
		"Brand":        brand,
		"Agent":        n.Agent,
		"Listing":      n.Listing,
		"Inquiry":      n.Inquiry,
		"ListingURL":   origin + "/listings/" + n.Listing.ID,
		"DashboardURL": origin + "/dashboard",
		"SiteURL":      origin,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render inquiry email: %w", err)
	}
	return Message{
		To:      n.Agent.Email,
		ReplyTo: n.Inquiry.Email,
		Subject: "New Inquiry: " + n.Listing.Title,
		HTML:    buf.String(),
	}, nil
}
