package store

import (
	"encoding/json"

	"github.com/nats-io/nats.go"

	"schoolpay_backend/internal/logger"
)

// ChangeKind enumerates row-change event kinds.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent is a row-level change notification emitted after a successful
// mutation. Delivery is best-effort: consumers needing consistency re-fetch
// authoritative state instead of relying on the event stream.
type ChangeEvent struct {
	Collection string          `json:"collection"`
	Kind       ChangeKind      `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// SubjectPrefix is the NATS subject root for row-change events; one subject
// per collection below it.
const SubjectPrefix = "schoolpay.changes"

// ChangeSubject returns the NATS subject for a collection's change events.
func ChangeSubject(collection string) string {
	return SubjectPrefix + "." + collection
}

// Publisher fans a change event out to interested consumers.
type Publisher interface {
	Publish(event ChangeEvent)
}

// NatsPublisher publishes change events onto NATS subjects. Publish failures
// are logged, never propagated: a lost event must not fail the mutation.
type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

func (p *NatsPublisher) Publish(event ChangeEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to marshal change event", "collection", event.Collection, "error", err)
		return
	}
	if err := p.nc.Publish(ChangeSubject(event.Collection), data); err != nil {
		logger.Warn("failed to publish change event", "collection", event.Collection, "error", err)
	}
}

// NopPublisher discards events. Used when no event bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ChangeEvent) {}
