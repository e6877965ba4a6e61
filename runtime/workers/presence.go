package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"log/slog"
	"time"
)

// Ensure *PresenceWorker implements the contract.Worker interface at compile time.
// This prevents "type mismatch" errors from appearing late in other packages
// and acts as a static assertion of our architectural rules.
var _ contract.Worker = (*PresenceWorker)(nil)

// presence is the Joined-state record of one connection. A connection is
// either absent from the map (Idle) or holds both a room and a username,
// never one without the other.
type presence struct {
	Room     domain.RoomID
	Username string
}

// PresenceWorker is the event-handling core of the relay. It consumes the
// ordered command queue alone, so every command is processed to completion
// (membership mutation plus fan-out) before the next one starts. That is
// the only thing serializing "add member" against "delete empty room".
type PresenceWorker struct {
	registry    contract.IRegistry
	commands    chan domain.Command
	tracked     map[string]presence
	sinkTimeout time.Duration
	log         *slog.Logger
}

func NewPresenceWorker(
	registry contract.IRegistry,
	commands chan domain.Command,
	sinkTimeout time.Duration,
	log *slog.Logger) *PresenceWorker {
	return &PresenceWorker{
		registry:    registry,
		commands:    commands,
		tracked:     make(map[string]presence),
		sinkTimeout: sinkTimeout,
		log:         log,
	}
}

func (w *PresenceWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.Handle(cmd)
		}
	}
}

// Handle processes a single command to completion. Exported so tests can
// drive the state machine without going through the queue.
func (w *PresenceWorker) Handle(cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.JoinCommand:
		w.handleJoin(c)
	case domain.PostMessageCommand:
		w.handleMessage(c)
	case domain.LeaveCommand:
		w.handleLeave(c.Conn)
	case domain.DisconnectCommand:
		w.handleLeave(c.Conn)
		w.registry.Disconnect(c.Conn)
	default:
		w.log.Debug("Unknown command", "command", cmd)
	}
}

func (w *PresenceWorker) handleJoin(c domain.JoinCommand) {
	if err := validateJoin(c); err != nil {
		// Rejected without mutating state and without broadcasting.
		// The transport already validated; this guard keeps the state
		// machine safe regardless of the caller.
		w.log.Debug("Rejecting join", "conn", c.Conn, "error", err)
		return
	}
	if !w.registry.HasSession(c.Conn) {
		// The connection closed while this command was in flight.
		// Cleanup has already run and wins; joining now would strand a
		// membership with no way to deliver or remove it.
		w.log.Debug("Dropping join from closed connection", "conn", c.Conn)
		return
	}

	// A connection is never a member of two rooms at once: fully vacate
	// the previous room, including its Leave broadcast, before joining.
	w.handleLeave(c.Conn)

	w.tracked[c.Conn] = presence{Room: c.Room, Username: c.Username}
	w.registry.Subscribe(c.Conn, c.Room, c.Username)

	// The joiner is already a member here, so it receives its own Join:
	// every client renders "X has joined" including its own action.
	w.broadcast(c.Room, event.UserJoined{
		Room:     c.Room,
		Username: c.Username,
		At:       time.Now().UTC(),
	})
	w.log.Info("Joined", "conn", c.Conn, "room", c.Room, "username", c.Username)
}

func (w *PresenceWorker) handleMessage(c domain.PostMessageCommand) {
	if _, ok := w.tracked[c.Conn]; !ok {
		// Idle connection: nothing to act on.
		return
	}
	if c.Username == "" || c.Room == "" {
		return
	}

	// Policy spot: the payload username and room are trusted as-is and
	// are not cross-checked against the tracked presence entry. Change
	// the two fields below to w.tracked[c.Conn] values to switch the
	// relay to connection-tracked identity.
	w.broadcast(c.Room, event.MessagePosted{
		Room:    c.Room,
		Author:  c.Username,
		Content: c.Content,
		At:      time.Now().UTC(),
	})
}

// handleLeave vacates the connection's current room, if any. Membership
// is removed first, so the Leave broadcast reaches exactly the remaining
// members; the tracked room/user pair is cleared only afterwards because
// the broadcast is built from it.
func (w *PresenceWorker) handleLeave(connID string) {
	p, ok := w.tracked[connID]
	if !ok {
		return
	}

	w.registry.Unsubscribe(connID, p.Room)
	w.broadcast(p.Room, event.UserLeft{
		Room:     p.Room,
		Username: p.Username,
		At:       time.Now().UTC(),
	})
	delete(w.tracked, connID)
	w.log.Info("Left", "conn", connID, "room", p.Room, "username", p.Username)
}

// broadcast fans an event out to the room's membership as it stands right
// now. Delivery per recipient is independent and best-effort: a full or
// dead sink is logged and skipped, never retried, and never aborts
// delivery to the other recipients.
func (w *PresenceWorker) broadcast(roomID domain.RoomID, evt event.DomainEvent) {
	for _, sink := range w.registry.SinksFor(roomID) {
		ctx, cancel := context.WithTimeout(context.Background(), w.sinkTimeout)
		if err := sink.Consume(ctx, evt); err != nil {
			w.log.Warn("Dropping event for unreachable recipient",
				"room", roomID, "error", err)
		}
		cancel()
	}
}

func validateJoin(c domain.JoinCommand) error {
	if c.Username == "" {
		return errors.ErrMissingUsername
	}
	if c.Room == "" {
		return errors.ErrMissingRoom
	}
	return nil
}
