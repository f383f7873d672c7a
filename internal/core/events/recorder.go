package events

import (
	"context"
	"sync"
)

type Event struct {
	Subject string
	Payload any
}

// Recorder 把事件留在内存里，供测试断言
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, subject string, payload any) error {
	r.mu.Lock()
	r.events = append(r.events, Event{Subject: subject, Payload: payload})
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() {}

func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Subject
	}
	return out
}
