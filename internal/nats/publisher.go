package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed publishing of pipeline events to JetStream.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishUtteranceEvent publishes one processed-utterance event.
func (p *Publisher) PublishUtteranceEvent(ctx context.Context, event UtteranceEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if _, err := p.js.Publish(ctx, SubjectUtteranceEvent, payload); err != nil {
		return fmt.Errorf("publishing to %s: %w", SubjectUtteranceEvent, err)
	}
	return nil
}
