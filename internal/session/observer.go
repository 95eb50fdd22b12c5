package session

import (
	"context"
	"log/slog"
)

// Observer watches authentication events and drives each session's cart
// store through bind and unbind transitions. It suppresses redundant
// sign-in events for a user the store is already bound to, so token
// refreshes do not re-run the merge protocol.
type Observer struct {
	registry *Registry
	logger   *slog.Logger
	stop     func()
}

// NewObserver subscribes to the hub and starts observing. Call Stop to
// tear the subscription down.
func NewObserver(hub *Hub, registry *Registry, logger *slog.Logger) *Observer {
	o := &Observer{registry: registry, logger: logger}
	o.stop = hub.Subscribe(o.handle)
	return o
}

// Stop unsubscribes the observer from the hub. Events published after
// Stop returns are not handled.
func (o *Observer) Stop() {
	o.stop()
}

func (o *Observer) handle(ev Event) {
	store := o.registry.GetOrCreate(ev.SessionID)

	switch ev.Kind {
	case SignedIn:
		if bound, ok := store.BoundUser(); ok && bound == ev.UserID {
			return
		}
		bound := store.BindToUser(context.Background(), ev.UserID)
		o.logger.Info("session bound",
			slog.String("session_id", ev.SessionID),
			slog.String("user_id", ev.UserID),
			slog.Int("items", bound.ItemCount()),
		)

	case SignedOut:
		store.Unbind()
		o.logger.Info("session unbound",
			slog.String("session_id", ev.SessionID),
		)
	}
}
