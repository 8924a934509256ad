package policies

import (
	"context"

	"carrental/internal/domain/shared/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, evts []events.DomainEvent) error
}
