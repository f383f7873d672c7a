package service

import "github.com/prometheus/client_golang/prometheus"

var inquiryEmails = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "inquiry_emails_total", Help: "Inquiry notification emails by outcome"},
	[]string{"status"},
)

func init() { prometheus.MustRegister(inquiryEmails) }
