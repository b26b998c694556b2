package events

import (
	"context"

	"storefront/internal/checkout"
)

// Multi forwards each event to every notifier in order
type Multi []checkout.Notifier

func (m Multi) Notify(ctx context.Context, e checkout.Event) {
	for _, n := range m {
		n.Notify(ctx, e)
	}
}

// Nop drops events; used when no sink is configured
type Nop struct{}

func (Nop) Notify(context.Context, checkout.Event) {}
