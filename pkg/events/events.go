// Package events names the subjects domain services publish on. Payloads are
// bare ids; subscribers load whatever else they need.
package events

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/Alijeyrad/mindcare_backend/pkg/constants"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

const (
	kindCrisisRaised = "crisis.raised"
	kindCrisisStatus = "crisis.status"
	kindMessageNew   = "message.new"
)

// CrisisRaised is published to the psychologist who owns the crisis.
func CrisisRaised(psychologistID string) string { return subject(kindCrisisRaised, psychologistID) }

// CrisisStatus is published per crisis after its status changes.
func CrisisStatus(crisisID string) string { return subject(kindCrisisStatus, crisisID) }

// MessageNew is published to a message's recipient.
func MessageNew(recipientID string) string { return subject(kindMessageNew, recipientID) }

// Wildcards for subscribers.
var (
	AllCrisisRaised = subject(kindCrisisRaised, "*")
	AllCrisisStatus = subject(kindCrisisStatus, "*")
	AllMessageNew   = subject(kindMessageNew, "*")
)

func subject(kind, target string) string {
	return constants.EventSubjectRoot + "." + kind + "." + target
}

// Target returns the last token of a subject, the id it was addressed to.
func Target(subject string) string {
	i := strings.LastIndexByte(subject, '.')
	if i < 0 {
		return ""
	}
	return subject[i+1:]
}

// Emit publishes and logs a failure. Events are advisory; the record that
// triggered them is already stored.
func Emit(p Publisher, subject, payload string) {
	if p == nil {
		return
	}
	if err := p.Publish(subject, []byte(payload)); err != nil {
		slog.Warn("events: publish failed", "subject", subject, "error", err)
	}
}

// NopPublisher drops everything. Used when nats.enabled is false.
type NopPublisher struct{}

func (NopPublisher) Publish(string, []byte) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

type Event struct {
	Subject string
	Data    string
}

func (r *Recorder) Publish(subject string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Event{Subject: subject, Data: string(data)})
	return nil
}

// Subjects returns the subjects seen so far in publish order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Subject
	}
	return out
}
